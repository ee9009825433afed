// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperboi CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperboi/internal/secrets"
	"github.com/pdiddy/paperboi/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the paperboi CLI.
var rootCmd = &cobra.Command{
	Use:   "paperboi",
	Short: "Fetch research papers and summarize them with an assistant",
	Long: `paperboi downloads a research paper from a URL, extracts its text,
chunks it, and feeds the chunks to a pre-provisioned summarization
assistant. Summaries, source PDFs, and crash-safe metadata records are
kept on disk; processed URLs are never fetched twice.

Each operation is a subcommand: summarize, list, and search.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env first so secrets and viper env lookups can see it.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperboi.yaml or ~/.config/paperboi/config.yaml)")
	rootCmd.PersistentFlags().String("base-dir", "", "base directory for stored papers, summaries, and metadata")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperboi")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperboi"))
		}
	}

	viper.SetEnvPrefix("PAPERBOI")
	viper.AutomaticEnv()

	viper.SetDefault("storage.base_dir", ".")
	viper.SetDefault("http.timeout", 60*time.Second)
	viper.SetDefault("http.user_agent", "paperboi/0.1")
	viper.SetDefault("chunk.max_size", 7500)
	viper.SetDefault("assistant.poll_interval", time.Second)
	viper.SetDefault("assistant.upload_retries", 1)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the pipeline configuration from viper, flags,
// and loaded secrets. Secrets files win over environment variables for
// credentials; the --base-dir flag wins over config for storage.
func buildConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.PipelineConfig{
		HTTP: types.HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: viper.GetString("http.user_agent"),
		},
		Storage: types.StorageConfig{
			BaseDir: viper.GetString("storage.base_dir"),
		},
		Assistant: types.AssistantConfig{
			APIKey:        secrets.Get(loadedSecrets, "openai-api-key", "OPENAI_API_KEY"),
			AssistantID:   secrets.Get(loadedSecrets, "openai-assistant-id", "OPENAI_ASSISTANT_ID"),
			BaseURL:       secrets.Get(loadedSecrets, "openai-base-url", "OPENAI_BASE_URL"),
			PollInterval:  viper.GetDuration("assistant.poll_interval"),
			UploadRetries: viper.GetInt("assistant.upload_retries"),
		},
		Chunk: types.ChunkConfig{
			MaxSize: viper.GetInt("chunk.max_size"),
		},
	}

	if baseDir, _ := cmd.Flags().GetString("base-dir"); baseDir != "" {
		cfg.Storage.BaseDir = baseDir
	}
	return cfg
}

// ensureDirs creates the fixed storage layout if absent.
func ensureDirs(cfg types.StorageConfig) error {
	for _, dir := range cfg.Dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
