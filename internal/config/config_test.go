package config

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://timetreeapis.com", cfg.BaseURL)
	assert.Equal(t, "application/vnd.timetree.v1+json", cfg.Accept)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Empty(t, cfg.Token)

	assert.Error(t, cfg.Validate(), "default config has no token")
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
token: from-file
timezone: Europe/Berlin
timeout: 5s
max_retries: 0
logging:
  level: debug
  format: json
`)
	envFile := writeFile(t, ".env", "")

	cfg, err := Load(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Token)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "https://timetreeapis.com", cfg.BaseURL, "unset keys keep defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "token: from-file\n")
	envFile := writeFile(t, ".env", "")
	t.Setenv(EnvToken, "from-env")
	t.Setenv(EnvMaxRetries, "5")

	cfg, err := Load(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := writeFile(t, "test.env", "TIMETREE_TIMEZONE=America/New_York\n")
	// register for cleanup; godotenv sets the variable for the process
	t.Setenv(EnvTimezone, "")
	require.NoError(t, os.Unsetenv(EnvTimezone))

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", cfg.Timezone)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "timeout: [not a duration\n")
	_, err = Load(bad, writeFile(t, ".env", ""))
	assert.Error(t, err)

	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err, "an explicitly named env file must exist")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		EnvToken:     "tok",
		EnvBaseURL:   "http://localhost:8080",
		EnvTimeout:   "10s",
		EnvLogLevel:  "warn",
		EnvLogFormat: "color",
		EnvTimezone:  "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "color", cfg.Logging.Format)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone, "empty values are ignored")

	assert.Error(t, cfg.ApplyEnv(lookupFrom(map[string]string{EnvMaxRetries: "many"})))
	assert.Error(t, cfg.ApplyEnv(lookupFrom(map[string]string{EnvTimeout: "soon"})))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.Token = "tok"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"blank token", func(c *Config) { c.Token = "  " }},
		{"relative base url", func(c *Config) { c.BaseURL = "timetreeapis.com" }},
		{"unknown timezone", func(c *Config) { c.Timezone = "Nowhere/Atlantis" }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTransportConfig(t *testing.T) {
	cfg := Default()
	cfg.Token = "tok"

	tc := cfg.TransportConfig()
	assert.Equal(t, "tok", tc.Token)
	assert.Equal(t, cfg.BaseURL, tc.BaseURL)
	assert.Equal(t, cfg.MaxRetries, tc.MaxRetries)
}

func TestExportedTypesDocumented(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "config.go", nil, parser.ParseComments)
	require.NoError(t, err)

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			if !ts.Name.IsExported() {
				continue
			}
			doc := ts.Doc
			if doc == nil {
				doc = gen.Doc
			}
			assert.NotNil(t, doc, "type %s has no doc comment", ts.Name.Name)
		}
	}
}
