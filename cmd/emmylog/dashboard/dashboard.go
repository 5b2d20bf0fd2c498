/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package dashboard

import (
	"time"

	emmylog "github.com/dburkart/emmylog/api"
	"github.com/dburkart/emmylog/pkg/app"
	tui "github.com/dburkart/emmylog/pkg/dashboard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "dashboard",
	Short: "Full screen event log with one key per event",

	RunE: func(cmd *cobra.Command, args []string) error {
		// The terminal belongs to the dashboard, only log when a file was given
		log := zerolog.Nop()
		if viper.GetString("emmylog.log-file") != "" {
			log = viper.Get("logger").(zerolog.Logger)
		}
		loc := viper.Get("location").(*time.Location)

		host := viper.GetString("emmylog.host")
		client, err := emmylog.NewClient(host, emmylog.Options{Log: log, Location: loc})
		if err != nil {
			return err
		}
		defer client.Close()

		return tui.Run(tui.Options{
			State:    app.New(client, log),
			Location: loc,
			Log:      log,
			Interval: viper.GetDuration("emmylog.interval"),
		})
	},
}

func init() {
	// Flags for this command
	Command.Flags().Duration("interval", tui.DefaultInterval, "How often the history is refreshed")

	// Bind flags to viper
	viper.BindPFlag("emmylog.interval", Command.Flags().Lookup("interval"))
}
