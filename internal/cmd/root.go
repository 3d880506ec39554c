// Package cmd wires the formsink CLI.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/formsink/formsink/internal/config"
	"github.com/formsink/formsink/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// Version info set by the main package.
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package to set version information.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "formsink",
	Short: "Form submission ingestion service",
	Long: `formsink accepts third-party HTML form submissions, filters bot
traffic with per-form honeypot fields, rate-limits per form, stores accepted
and rejected submissions durably, and notifies form owners best-effort.

Use the subcommands to perform specific operations.`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./formsink.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads the config file and FORMSINK_* environment variables.
func initConfig() {
	observability.InitCLILogger(verbose)

	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("formsink")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/formsink")
	}

	viper.SetEnvPrefix("FORMSINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			observability.CLILogger.Warn("config file could not be read: " + err.Error())
		}
	}
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}
