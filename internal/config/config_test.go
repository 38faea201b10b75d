package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Provider != ProviderGoogle {
		t.Errorf("Provider = %q, want google", cfg.Provider)
	}
	if len(cfg.Line.BotNames) == 0 {
		t.Error("default bot names missing")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".linecap.yml")
	content := `port: 9000
provider: openai
model: gpt-4o-mini
line:
  channel_secret: sec
  channel_token: tok
  bot_names: ["アシスタント"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.Line.ChannelSecret != "sec" || cfg.Line.ChannelToken != "tok" {
		t.Errorf("Line = %+v", cfg.Line)
	}
	if len(cfg.Line.BotNames) != 1 || cfg.Line.BotNames[0] != "アシスタント" {
		t.Errorf("BotNames = %v", cfg.Line.BotNames)
	}
	// Unset keys keep their defaults.
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want default", cfg.DataDir)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LINECAP_PORT", "7000")
	t.Setenv("LINECAP_LINE__CHANNEL_SECRET", "env-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("Port = %d, want env override 7000", cfg.Port)
	}
	if cfg.Line.ChannelSecret != "env-secret" {
		t.Errorf("ChannelSecret = %q, want env override", cfg.Line.ChannelSecret)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".linecap.yml")

	cfg := DefaultConfig()
	cfg.Provider = ProviderOllama
	cfg.Model = "llama3"
	cfg.Line.ChannelToken = "tok"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Provider != ProviderOllama || loaded.Model != "llama3" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Line.ChannelToken != "tok" {
		t.Errorf("ChannelToken = %q", loaded.Line.ChannelToken)
	}
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Line.ChannelToken = "tok"
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cases := []func(*Config){
		func(c *Config) { c.Port = 0 },
		func(c *Config) { c.Port = 70000 },
		func(c *Config) { c.DataDir = "" },
		func(c *Config) { c.Provider = "anthropic" },
		func(c *Config) { c.Model = "" },
		func(c *Config) { c.RateLimitRPM = -1 },
		func(c *Config) { c.Line.ChannelToken = "" },
	}
	for i, mutate := range cases {
		cfg := DefaultConfig()
		cfg.Line.ChannelToken = "tok"
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: invalid config accepted", i)
		}
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("openai = %q", got)
	}
	if got := APIKeyEnvVar(ProviderGoogle); got != "GOOGLE_API_KEY" {
		t.Errorf("google = %q", got)
	}
	if got := APIKeyEnvVar(ProviderOllama); got != "" {
		t.Errorf("ollama = %q, want empty", got)
	}
}
