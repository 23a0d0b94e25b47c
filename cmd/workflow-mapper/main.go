// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the workflow-mapper CLI: it maps
// documents into current-state workflows through Gemini and tracks the
// five-step workflow checklist.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/workflow-mapper/internal/secrets"
	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Set

// rootCmd is the base command for the workflow-mapper CLI.
var rootCmd = &cobra.Command{
	Use:   "workflow-mapper",
	Short: "Map documents into current-state workflows and track workflow progress",
	Long: `workflow-mapper sends the text of your documents to Gemini with a fixed
workflow-mapping prompt and saves the returned markdown. It also tracks the
five steps of the augmented workflow in a local SQLite database.

Use map to process documents, files to preview a selection, progress to
work the checklist, and serve to run the same tools behind a local web page.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Names())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./workflow-mapper.yaml or ~/.config/workflow-mapper/workflow-mapper.yaml)")
	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("workflow-mapper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "workflow-mapper"))
		}
	}

	viper.SetEnvPrefix("WORKFLOW_MAPPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key with its default so that
// environment variables resolve even without a config file.
func setDefaults() {
	d := types.DefaultConfig()

	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.endpoint", d.Gemini.Endpoint)
	viper.SetDefault("gemini.base_url", d.Gemini.BaseURL)
	viper.SetDefault("gemini.model", d.Gemini.Model)
	viper.SetDefault("gemini.backend", string(d.Gemini.Backend))
	viper.SetDefault("gemini.temperature", d.Gemini.Temperature)
	viper.SetDefault("gemini.max_output_tokens", d.Gemini.MaxOutputTokens)
	viper.SetDefault("gemini.timeout", d.Gemini.Timeout)
	viper.SetDefault("gemini.user_agent", d.Gemini.UserAgent)

	viper.SetDefault("intake.max_file_size", d.Intake.MaxFileSize)
	viper.SetDefault("intake.convert", d.Intake.Convert)

	viper.SetDefault("output.dir", d.Output.Dir)
	viper.SetDefault("output.file", d.Output.File)

	viper.SetDefault("progress.db", d.Progress.DBPath)
	viper.SetDefault("progress.key", d.Progress.Key)
	viper.SetDefault("progress.steps_file", d.Progress.StepsFile)

	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.body_limit", d.Server.BodyLimit)
	viper.SetDefault("server.session_timeout", d.Server.SessionTimeout)
	viper.SetDefault("server.request_logging", d.Server.RequestLogging)
}

// appConfig assembles the effective configuration. The API key comes from
// --api-key or gemini.api_key, then GEMINI_API_KEY, then
// .secrets/gemini-api-key; a missing key stays empty.
func appConfig() types.AppConfig {
	var cfg types.AppConfig

	cfg.Gemini = types.GeminiConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("gemini.timeout"),
			UserAgent: viper.GetString("gemini.user_agent"),
		},
		APIKey: secrets.FirstNonEmpty(
			viper.GetString("gemini.api_key"),
			os.Getenv(secrets.EnvGeminiAPIKey),
			loadedSecrets[secrets.GeminiAPIKey],
		),
		Endpoint:        viper.GetString("gemini.endpoint"),
		BaseURL:         viper.GetString("gemini.base_url"),
		Model:           viper.GetString("gemini.model"),
		Backend:         types.GeminiBackend(viper.GetString("gemini.backend")),
		Temperature:     viper.GetFloat64("gemini.temperature"),
		MaxOutputTokens: viper.GetInt("gemini.max_output_tokens"),
	}
	cfg.Intake = types.IntakeConfig{
		MaxFileSize: viper.GetInt64("intake.max_file_size"),
		Convert:     viper.GetBool("intake.convert"),
	}
	cfg.Output = types.OutputConfig{
		Dir:  viper.GetString("output.dir"),
		File: viper.GetString("output.file"),
	}
	cfg.Progress = types.ProgressConfig{
		DBPath:    viper.GetString("progress.db"),
		Key:       viper.GetString("progress.key"),
		StepsFile: viper.GetString("progress.steps_file"),
	}
	cfg.Server = types.ServerConfig{
		Addr:           viper.GetString("server.addr"),
		BodyLimit:      viper.GetString("server.body_limit"),
		SessionTimeout: viper.GetDuration("server.session_timeout"),
		RequestLogging: viper.GetBool("server.request_logging"),
	}
	return cfg
}

// bindFlags ties command flags to viper keys, so a set flag wins over env
// and the config file. Viper keeps one flag per key, so commands bind in
// PreRunE rather than init.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s to %s: %w", flag, key, err)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
