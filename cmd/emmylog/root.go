/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package emmylog

import (
	"fmt"
	"os"
	"strings"

	"github.com/dburkart/emmylog/cmd/emmylog/client"
	"github.com/dburkart/emmylog/cmd/emmylog/dashboard"
	"github.com/dburkart/emmylog/cmd/emmylog/events"
	"github.com/dburkart/emmylog/cmd/emmylog/server"
	"github.com/dburkart/emmylog/cmd/emmylog/test"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version        = "develop"
	CommitHash     = "n/a"
	BuildTimestamp = "n/a"

	rootCmd = &cobra.Command{
		Use:   "emmylog",
		Short: "emmylog records feeding and sleep events of a small child",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loadDotEnv()
			initLogging()
			initLogLevel()
			initConfig(cmd.Root().PersistentFlags().Lookup("config").Value.String())
			initLogging()
			initLogLevel()
			traceConfig()
			return initLocation()
		},
		SilenceUsage: true,
		Version:      Version,
	}
)

func init() {
	// Configure the root binary options
	rootCmd.PersistentFlags().CountP("verbose", "v", "-v for debug logs (-vv for trace)")
	rootCmd.PersistentFlags().Bool("local", true, "Configures the logger to print readable logs")
	rootCmd.PersistentFlags().StringP("host", "H", "./data", "Store to talk to, a local store path or an http(s):// endpoint")
	rootCmd.PersistentFlags().String("timezone", "Europe/Berlin", "Zone timestamps are entered and displayed in")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of the terminal")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the emmylog config file (default ./config.toml)")

	// Bind viper config to the root flags
	viper.BindPFlag("emmylog.local", rootCmd.PersistentFlags().Lookup("local"))
	viper.BindPFlag("emmylog.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("emmylog.host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("emmylog.timezone", rootCmd.PersistentFlags().Lookup("timezone"))
	viper.BindPFlag("emmylog.log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.SetVersionTemplate(fmt.Sprintf("emmylog version: %s git_commit: %s build_time: %s\n", Version, CommitHash, BuildTimestamp))

	// Bind viper keys to ENV variables, emmylog.prom-port is EMMYLOG_PROM_PORT
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Register commands on the root binary command
	for _, c := range []*cobra.Command{server.Command, client.Command, dashboard.Command, test.Command} {
		c.Version = rootCmd.Version
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(events.ListCommand, events.AddCommand)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("root command failed")
		os.Exit(1)
	}
}
