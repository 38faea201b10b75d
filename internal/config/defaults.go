package config

// defaultModels maps each provider to its default extraction model.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI: "gpt-4o-mini",
	ProviderGoogle: "gemini-2.0-flash",
	ProviderOllama: "llama3",
}

// DefaultConfig returns a Config with sensible defaults. LINE channel
// credentials have no default and must be configured.
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		DataDir:      "data",
		Provider:     ProviderGoogle,
		Model:        defaultModels[ProviderGoogle],
		RateLimitRPM: 30,
		Line: LineConfig{
			BotNames: []string{"秘書", "ボット"},
		},
	}
}

// DefaultModel returns the default model for a provider.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderGoogle]
}
