// Package vault defines the career vault domain model: categories, quality
// tiers, evidence signals, items and the per-user vault record.
package vault

import (
	"database/sql/driver"
	"fmt"
)

// Category is one of the ten fixed semantic buckets a vault item belongs to.
type Category int

const (
	PowerPhrase Category = iota
	TransferableSkill
	HiddenCompetency
	SoftSkill
	LeadershipPhilosophy
	ExecutivePresence
	PersonalityTrait
	WorkStyle
	ValueMotivation
	BehavioralIndicator

	numCategories
)

// NumCategories is the number of known categories.
const NumCategories = int(numCategories)

// CategorySpec describes how a category is stored and shaped.
//
// Fields:
//   - Slug: stable external name used on the wire and in the database.
//   - CountColumn: denormalized counter column on the vaults table.
//   - ContentKeys: field names that may carry the item text in extracted payloads,
//     checked in order by Normalize.
//   - AnswerAttributes: default attributes attached to items built from free-text answers.
type CategorySpec struct {
	Slug             string
	Title            string
	CountColumn      string
	ContentKeys      []string
	AnswerAttributes map[string]string
}

// categorySpecs is indexed by Category; its length is fixed by numCategories,
// so adding a category without filling in its descriptor fails
// TestCategorySpecs_AreCompleteAndUnique.
var categorySpecs = [numCategories]CategorySpec{
	PowerPhrase: {
		Slug:             "power-phrase",
		Title:            "Power phrases",
		CountColumn:      "power_phrases_count",
		ContentKeys:      []string{"content", "power_phrase", "phrase"},
		AnswerAttributes: map[string]string{"kind": "achievement"},
	},
	TransferableSkill: {
		Slug:             "transferable-skill",
		Title:            "Transferable skills",
		CountColumn:      "transferable_skills_count",
		ContentKeys:      []string{"content", "stated_skill", "skill"},
		AnswerAttributes: map[string]string{"proficiency": "unrated"},
	},
	HiddenCompetency: {
		Slug:             "hidden-competency",
		Title:            "Hidden competencies",
		CountColumn:      "hidden_competencies_count",
		ContentKeys:      []string{"content", "competency_area", "inferred_capability"},
		AnswerAttributes: map[string]string{"kind": "capability"},
	},
	SoftSkill: {
		Slug:             "soft-skill",
		Title:            "Soft skills",
		CountColumn:      "soft_skills_count",
		ContentKeys:      []string{"content", "skill_name", "skill"},
		AnswerAttributes: map[string]string{"proficiency": "unrated"},
	},
	LeadershipPhilosophy: {
		Slug:             "leadership-philosophy",
		Title:            "Leadership philosophy",
		CountColumn:      "leadership_philosophy_count",
		ContentKeys:      []string{"content", "philosophy_statement", "leadership_style"},
		AnswerAttributes: map[string]string{"kind": "statement"},
	},
	ExecutivePresence: {
		Slug:             "executive-presence",
		Title:            "Executive presence",
		CountColumn:      "executive_presence_count",
		ContentKeys:      []string{"content", "presence_indicator", "indicator"},
		AnswerAttributes: map[string]string{"kind": "indicator"},
	},
	PersonalityTrait: {
		Slug:             "personality-trait",
		Title:            "Personality traits",
		CountColumn:      "personality_traits_count",
		ContentKeys:      []string{"content", "trait_name", "trait"},
		AnswerAttributes: map[string]string{"kind": "trait"},
	},
	WorkStyle: {
		Slug:             "work-style",
		Title:            "Work style",
		CountColumn:      "work_style_count",
		ContentKeys:      []string{"content", "preference_area", "preference"},
		AnswerAttributes: map[string]string{"kind": "preference"},
	},
	ValueMotivation: {
		Slug:             "value-motivation",
		Title:            "Values and motivations",
		CountColumn:      "values_motivations_count",
		ContentKeys:      []string{"content", "value_name", "value"},
		AnswerAttributes: map[string]string{"kind": "value"},
	},
	BehavioralIndicator: {
		Slug:             "behavioral-indicator",
		Title:            "Behavioral indicators",
		CountColumn:      "behavioral_indicators_count",
		ContentKeys:      []string{"content", "specific_behavior", "indicator_type"},
		AnswerAttributes: map[string]string{"kind": "behavior"},
	},
}

// Categories returns all categories in declaration order.
func Categories() []Category {
	out := make([]Category, 0, NumCategories)
	for c := Category(0); c < numCategories; c++ {
		out = append(out, c)
	}
	return out
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c >= 0 && c < numCategories
}

// Spec returns the descriptor of c. It panics on an unknown category, which
// can only be produced by converting an arbitrary int.
func (c Category) Spec() CategorySpec {
	if !c.Valid() {
		panic(fmt.Sprintf("vault: unknown category %d", int(c)))
	}
	return categorySpecs[c]
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categorySpecs[c].Slug
}

// ParseCategory resolves a slug into a Category.
func ParseCategory(s string) (Category, bool) {
	for c := Category(0); c < numCategories; c++ {
		if categorySpecs[c].Slug == s {
			return c, true
		}
	}
	return 0, false
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(categorySpecs[c].Slug), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, ok := ParseCategory(string(b))
	if !ok {
		return fmt.Errorf("unknown category %q", string(b))
	}
	*c = parsed
	return nil
}

// Value stores the category as its slug.
func (c Category) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return categorySpecs[c].Slug, nil
}

// Scan reads a slug written by Value.
func (c *Category) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return c.UnmarshalText([]byte(v))
	case []byte:
		return c.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Category", src)
	}
}
