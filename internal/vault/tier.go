package vault

// Tier is the trust classification of an item.
type Tier string

const (
	TierGold    Tier = "gold"
	TierSilver  Tier = "silver"
	TierBronze  Tier = "bronze"
	TierAssumed Tier = "assumed"
)

// Valid reports whether t is one of the four recorded tiers. The empty tier
// means "not classified yet".
func (t Tier) Valid() bool {
	switch t {
	case TierGold, TierSilver, TierBronze, TierAssumed:
		return true
	}
	return false
}

// Priority orders tiers for ranking: gold 4, silver 3, bronze 2, assumed 1.
// Unclassified items rank with assumed.
func (t Tier) Priority() int {
	switch t {
	case TierGold:
		return 4
	case TierSilver:
		return 3
	case TierBronze:
		return 2
	default:
		return 1
	}
}

// Weight is the tier multiplier used by strength scoring.
func (t Tier) Weight() float64 {
	switch t {
	case TierGold:
		return 1.0
	case TierSilver:
		return 0.8
	case TierBronze:
		return 0.6
	default:
		return 0.4
	}
}

// Tiers lists the recorded tiers from strongest to weakest.
func Tiers() []Tier {
	return []Tier{TierGold, TierSilver, TierBronze, TierAssumed}
}

// VerificationStatus records whether a human or quiz confirmed an item.
type VerificationStatus string

const (
	Unverified VerificationStatus = "unverified"
	Verified   VerificationStatus = "verified"
)
