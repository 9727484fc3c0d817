// Package cmd is the command-line interface of the sections service.
//
// Configuration is read from, in increasing order of precedence:
//
//	.sections.yml in the working directory (or the file named by
//	SECTIONS_CONFIG_FILE or --config)
//	SECTIONS_<SECTION>_<OPTION> environment variables
//	command-line flags
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ucf/section/internal/config"
	"github.com/ucf/section/internal/di"
	"github.com/ucf/section/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sections",
	Short: "Serve reusable content sections",
	Long: `sections stores reusable blocks of content and renders them into pages
wherever a [ucf-section] shortcode references them, together with the
stylesheet and script each section carries.

Quick Start:
  sections serve                 Serve pages from ./content
  sections list                  List the stored sections
  sections render home           Render a page to stdout
  sections import --db site.db   Copy ./content into SQLite`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .sections.yml, can also use SECTIONS_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SECTIONS_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sections")
	}

	viper.SetEnvPrefix("SECTIONS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := config.BindEnv(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	// A missing config file is fine; defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadContainer loads the configuration and builds the service graph
// rooted at the working directory.
func loadContainer(ctx context.Context) (*di.Container, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.LoggerConfig())
	container, err := di.New(ctx, cfg, afero.NewOsFs(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return container, logger, nil
}
