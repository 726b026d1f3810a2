// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cocowh/simpletcp/core/config"
	"github.com/cocowh/simpletcp/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	delimiter  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simpletcp",
	Short: "simpletcp exchanges delimiter framed messages over TCP",
	Long: `simpletcp runs a message relay server or an interactive client.
Every message on the wire is terminated by a delimiter, "<|EOL|>" unless
configured otherwise.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of simpletcp",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "simpletcp version %s\n", rootCmd.Version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dialCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a JSON, YAML or TOML configuration file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "set log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVarP(&delimiter, "delimiter", "d", "", `message delimiter, \n \r \t escapes allowed`)
}

var escapes = strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t", `\\`, `\`)

// loadConfig layers the file, the environment and the command line, then
// installs the configured logger.
func loadConfig(section string, flags map[string]any) (*config.Config, error) {
	overrides := map[string]any{
		"logger.level": logLevel,
	}
	if delimiter != "" {
		overrides[section+".input_delimiter"] = escapes.Replace(delimiter)
	}
	for k, v := range flags {
		overrides[section+"."+k] = v
	}

	cfg, err := config.Load(
		config.WithFile(configPath),
		config.WithEnv(config.EnvPrefix),
		config.WithOverrides(overrides),
	)
	if err != nil {
		return nil, err
	}
	if err := logger.InitDefaultLogger(cfg.Logger.ToLogger()); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, nil
}

func main() {
	defer logger.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Close()
		os.Exit(1)
	}
}
