package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/eventstream/config"
)

const serviceName = "eventstream"

var (
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:           serviceName,
	Short:         "Server-Sent Events delivery service",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: search ./cmd/eventstream/config.yml, ./config.yml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", ".env file loaded before environment binding")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file, .env and EVENTSTREAM_* variables.
// Defaults and validation are applied later by bootstrap.NewApp.
func loadConfig() (*AppConfig, error) {
	var cfg AppConfig
	opts := []config.LoaderOption{config.WithEnvPrefix("EVENTSTREAM")}
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	return &cfg, nil
}
