/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dburkart/emmylog/pkg/database"
	"github.com/dburkart/emmylog/pkg/server"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "server",
	Short: "Serve an event store over HTTP",

	RunE: func(cmd *cobra.Command, args []string) error {
		logger := viper.Get("logger").(zerolog.Logger)
		loc := viper.Get("location").(*time.Location)

		dsn := viper.GetString("emmylog.store")
		store, err := database.Open(dsn, logger)
		if err != nil {
			logger.Error().Err(err).Str("store", dsn).Msg("unable to open store")
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stats, err := store.Stats(ctx)
		if err == nil {
			e := logger.Info().
				Str("backend", stats.Backend).
				Str("events", humanize.Comma(int64(stats.Events))).
				Str("size", humanize.Bytes(stats.SizeBytes))
			if !stats.LastEvent.IsZero() {
				e = e.Str("last-event", humanize.Time(stats.LastEvent))
			}
			e.Msg("store opened")
		}

		srv := server.New(logger, store, server.Config{
			Port:        viper.GetInt("emmylog.port"),
			MetricsPort: viper.GetInt("emmylog.prom-port"),
			Options: server.Options{
				ListLimit: viper.GetInt("emmylog.list-limit"),
				Location:  loc,
			},
		})

		return srv.Run(ctx)
	},
}

func init() {
	// Flags for this command
	Command.Flags().IntP("port", "p", 8080, "Port the query endpoint listens on")
	Command.Flags().Int("prom-port", 2112, "Set the port for /metrics")
	Command.Flags().StringP("store", "s", "./data", "Store to serve (path, sqlite://, postgres://, redis://)")
	Command.Flags().Int("list-limit", database.DefaultListLimit, "Number of events a list returns")

	// Bind flags to viper
	viper.BindPFlag("emmylog.port", Command.Flags().Lookup("port"))
	viper.BindPFlag("emmylog.prom-port", Command.Flags().Lookup("prom-port"))
	viper.BindPFlag("emmylog.store", Command.Flags().Lookup("store"))
	viper.BindPFlag("emmylog.list-limit", Command.Flags().Lookup("list-limit"))
}
