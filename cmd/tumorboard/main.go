// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tumorboard CLI.
// Implements: prd001-scoring, prd002-notes, prd003-analysis,
//
//	prd004-history, prd005-server (CLI surface).
//
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tumorboard/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "tumorboard/0.1"

// rootCmd is the base command for the tumorboard CLI.
var rootCmd = &cobra.Command{
	Use:   "tumorboard",
	Short: "Case-notes-driven literature review for molecular tumor boards",
	Long: `tumorboard turns free-text patient case notes into a ranked reading list.
Remote services extract the primary disease and actionable events from the
notes and analyze candidate articles; tumorboard scores every analyzed
article with a deterministic local rubric, ranks the results, and keeps a
searchable history of past reviews.

Each stage is a subcommand: extract, review, history, and serve.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Service URLs and keys commonly live in a local .env file.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./tumorboard.yaml or ~/.config/tumorboard/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tumorboard")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tumorboard"))
		}
	}

	viper.SetDefault("notes.timeout", 60*time.Second)
	viper.SetDefault("notes.max_retries", 3)
	viper.SetDefault("retrieval.max_wait", 10*time.Minute)
	viper.SetDefault("retrieval.max_retries", 3)
	viper.SetDefault("store.reviews_dir", "reviews")
	viper.SetDefault("store.max_results", 20)
	viper.SetDefault("server.addr", ":8086")
	viper.SetDefault("server.shutdown_grace", 30*time.Second)

	viper.SetEnvPrefix("TUMORBOARD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the stage configurations from viper.
func pipelineConfig() types.PipelineConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("notes.timeout"),
		UserAgent: defaultUserAgent,
	}
	return types.PipelineConfig{
		Notes: types.NotesConfig{
			HTTPConfig: httpCfg,
			DiseaseURL: viper.GetString("notes.disease_url"),
			EventsURL:  viper.GetString("notes.events_url"),
			MaxRetries: viper.GetInt("notes.max_retries"),
		},
		Retrieval: types.RetrievalConfig{
			HTTPConfig: httpCfg,
			AnalyzeURL: viper.GetString("retrieval.analyze_url"),
			MaxWait:    viper.GetDuration("retrieval.max_wait"),
			MaxRetries: viper.GetInt("retrieval.max_retries"),
		},
		Store: types.StoreConfig{
			ReviewsDir: viper.GetString("store.reviews_dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
		Server: types.ServerConfig{
			Addr:          viper.GetString("server.addr"),
			ShutdownGrace: viper.GetDuration("server.shutdown_grace"),
		},
	}
}

// newLogger builds the CLI logger, honoring --verbose.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
