package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	serverFlags := []string{"-a", "-d", "-l", "-v", "-k"}
	configFlags := []string{"-c", "-config"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "config path separated from server flags",
			args:    []string{"-c", "server.json", "-a", ":50051", "-l", "zap"},
			allowed: configFlags,
			want:    []string{"-c", "server.json"},
		},
		{
			name:    "server flags without config path",
			args:    []string{"-c", "server.json", "-a", ":50051", "-l", "zap"},
			allowed: serverFlags,
			want:    []string{"-a", ":50051", "-l", "zap"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=alt.json", "-d=postgres://db/vault"},
			allowed: serverFlags,
			want:    []string{"-d=postgres://db/vault"},
		},
		{
			name:    "boolean flag does not swallow the next flag",
			args:    []string{"-v", "-k", "secret"},
			allowed: serverFlags,
			want:    []string{"-v", "-k", "secret"},
		},
		{
			name:    "trailing flag without value kept",
			args:    []string{"-a", ":1", "-d"},
			allowed: serverFlags,
			want:    []string{"-a", ":1", "-d"},
		},
		{
			name:    "foreign flags and positionals dropped",
			args:    []string{"-t", "token", "--y=2", "positional"},
			allowed: serverFlags,
			want:    []string{},
		},
		{
			name:    "value may itself contain dashes in equals form",
			args:    []string{"-config=--weird.json"},
			allowed: configFlags,
			want:    []string{"-config=--weird.json"},
		},
		{
			name:    "repeated flag preserved in order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: configFlags,
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "nil args",
			allowed: serverFlags,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "vault.json", ConfigPath([]string{"-a", ":9000", "-c", "vault.json"}))
	assert.Equal(t, "x.json", ConfigPath([]string{"-config=x.json", "-l", "zap"}))
	assert.Empty(t, ConfigPath(nil))
}

func TestEnv(t *testing.T) {
	t.Setenv("CAREERVAULT_TEST_EMPTY", "")
	t.Setenv("CAREERVAULT_TEST_SET", "value")

	v, ok := Env("CAREERVAULT_TEST_MISSING", "CAREERVAULT_TEST_EMPTY", "CAREERVAULT_TEST_SET")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	_, ok = Env("CAREERVAULT_TEST_MISSING")
	assert.False(t, ok)
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", JsonConfigFlags())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.json"}
		assert.Equal(t, "/path/long.json", JsonConfigFlags())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1", "-y", "2"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", JsonConfigFlags())
	})
}
