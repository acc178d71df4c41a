package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neutrobox/automaker/pkg/contextlog"
	"github.com/neutrobox/automaker/pkg/engine"
	"github.com/neutrobox/automaker/pkg/feature"
	"github.com/neutrobox/automaker/pkg/llm/openai"
	"github.com/neutrobox/automaker/pkg/logging"
)

const version = "0.1.0"

// rootFlags holds the flags shared by all subcommands.
type rootFlags struct {
	projectDir string
	configFile string
	model      string
	baseURL    string
	apiKey     string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:     "automaker",
		Short:   "Autonomous feature execution engine",
		Long:    "automaker works through a project's feature list one feature at a time, running an agent session through plan, act, and verify for each.",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.projectDir, "project-dir", "p", "", "project directory (default: current directory or config value)")
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVarP(&flags.model, "model", "m", "", "LLM model to use")
	cmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	cmd.PersistentFlags().StringVar(&flags.apiKey, "api-key", "", "API key (default: OPENAI_API_KEY)")

	cmd.AddCommand(newRunCommand(flags))
	cmd.AddCommand(newListCommand(flags))
	cmd.AddCommand(newCommitCommand(flags))

	return cmd
}

// loadEngineConfig builds the engine config from the config file, then
// applies CLI flag overrides.
func loadEngineConfig(flags *rootFlags) (*engine.Config, error) {
	cfg := engine.DefaultConfig()
	if flags.configFile != "" {
		loaded, err := engine.LoadConfig(flags.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.projectDir != "" {
		cfg.ProjectDir = flags.projectDir
	}
	if flags.model != "" {
		cfg.Model = flags.model
	}
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}

	return cfg, nil
}

// buildController wires the store, context log, provider, and controller
// for one command invocation.
func buildController(flags *rootFlags) (*engine.Controller, *engine.Config, error) {
	cfg, err := loadEngineConfig(flags)
	if err != nil {
		return nil, nil, err
	}

	providerOpts := []openai.ProviderOption{}
	if cfg.Model != "" {
		providerOpts = append(providerOpts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(cfg.BaseURL))
	}

	provider, err := openai.NewProvider(flags.apiKey, providerOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	logger, err := logging.NewLogger("cli")
	if err != nil {
		logger.Warnf("cli logger fell back to stderr: %v", err)
	}

	store := feature.NewStore(cfg.ProjectDir)
	ctxLog := contextlog.New(cfg.ProjectDir)
	opener := engine.NewSessionOpener(provider, logger)

	return engine.NewController(store, ctxLog, opener, cfg), cfg, nil
}
