package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()
	assert.Equal(t, []string{"**"}, cfg.Input.Include)
	assert.Equal(t, DefaultSkipDirs, cfg.Input.SkipDirs)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Full(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
[input]
include = ["src/**/*.js", "src/**/*.ts"]
exclude = ["**/*.test.js"]
languages = ["javascript", "typescript"]

[output]
db = "docs.db"
format = "yaml"
keep_builds = 5

[tags.aliases]
field = "member"
attr = "property"

[filter]
expr = 'doc["visibility"] == "public"'

[server]
addr = ":9000"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/**/*.js", "src/**/*.ts"}, cfg.Input.Include)
	assert.Equal(t, []string{"**/*.test.js"}, cfg.Input.Exclude)
	assert.Equal(t, []string{"javascript", "typescript"}, cfg.Input.Languages)
	assert.Equal(t, DefaultSkipDirs, cfg.Input.SkipDirs)
	assert.Equal(t, "docs.db", cfg.Output.DB)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 5, cfg.Output.KeepBuilds)
	assert.Equal(t, map[string]string{"field": "member", "attr": "property"}, cfg.Tags.Aliases)
	assert.Equal(t, `doc["visibility"] == "public"`, cfg.Filter.Expr)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad format", "[output]\nformat = \"xml\"\n", "output.format: failed oneof"},
		{"bad language", "[input]\nlanguages = [\"ruby\"]\n", "input.languages[0]: failed oneof"},
		{"negative keep", "[output]\nkeep_builds = -1\n", "output.keep_builds: failed gte"},
		{"bad addr", "[server]\naddr = \"nope\"\n", "server.addr: failed hostname_port"},
		{"bad glob", "[input]\nexclude = [\"[a\"]\n", `input pattern "[a"`},
		{"empty pattern", "[input]\ninclude = [\"\"]\n", "input.include[0]: failed required"},
		{"bad toml", "[input\n", "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	t.Parallel()
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadOrDefault(writeConfig(t, "[output]\nformat = \"json\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
}
