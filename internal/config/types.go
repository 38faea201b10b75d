package config

// ProviderType identifies an LLM provider for field extraction.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGoogle ProviderType = "google"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level linecap configuration, corresponding to
// .linecap.yml.
type Config struct {
	Port    int    `yaml:"port" koanf:"port"`
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	Provider     ProviderType `yaml:"provider" koanf:"provider"`
	Model        string       `yaml:"model" koanf:"model"`
	RateLimitRPM int          `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`

	Line LineConfig `yaml:"line" koanf:"line"`

	// AllowAllOrigins opens CORS for the API (dev mode).
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LineConfig holds the LINE Messaging API channel settings.
type LineConfig struct {
	ChannelSecret string `yaml:"channel_secret" koanf:"channel_secret"`
	ChannelToken  string `yaml:"channel_token" koanf:"channel_token"`

	// BotNames are the substrings that count as addressing the bot
	// when a message carries no structured mention metadata.
	BotNames []string `yaml:"bot_names" koanf:"bot_names"`
}
