package config

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the
// result to .linecap.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to linecap! Let's configure your bot.")
	fmt.Println()

	cfg := DefaultConfig()

	providerPrompt := promptui.Select{
		Label: "Select LLM provider for field extraction",
		Items: []string{"google", "openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: DefaultModel(cfg.Provider),
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model input: %w", err)
	}

	secretPrompt := promptui.Prompt{
		Label: "LINE channel secret",
		Mask:  '*',
	}
	if cfg.Line.ChannelSecret, err = secretPrompt.Run(); err != nil {
		return nil, fmt.Errorf("channel secret input: %w", err)
	}

	tokenPrompt := promptui.Prompt{
		Label: "LINE channel access token",
		Mask:  '*',
	}
	if cfg.Line.ChannelToken, err = tokenPrompt.Run(); err != nil {
		return nil, fmt.Errorf("channel token input: %w", err)
	}

	namePrompt := promptui.Prompt{
		Label:   "Bot display name (used for @-mention fallback matching)",
		Default: cfg.Line.BotNames[0],
	}
	name, err := namePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("bot name input: %w", err)
	}
	if name != "" && name != cfg.Line.BotNames[0] {
		cfg.Line.BotNames = append([]string{name}, cfg.Line.BotNames...)
	}

	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: %s is not set. Set it before running `linecap serve`.\n", envVar)
	}

	if err := cfg.Save(".linecap.yml"); err != nil {
		return nil, err
	}
	fmt.Println("\nSaved .linecap.yml")
	return cfg, nil
}
