/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package test

import (
	"context"
	"time"

	emmylog "github.com/dburkart/emmylog/api"
	"github.com/dburkart/emmylog/pkg/event"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "test",
	Short: "Record a series of test events and time the round trips",

	RunE: func(cmd *cobra.Command, args []string) error {
		log := viper.Get("logger").(zerolog.Logger)
		loc := viper.Get("location").(*time.Location)

		host := viper.GetString("emmylog.host")
		client, err := emmylog.NewClient(host, emmylog.Options{Log: log, Location: loc})
		if err != nil {
			log.Error().Err(err).Str("host", host).Msg("unable to connect to store")
			return err
		}
		defer client.Close()

		return timeIt(log, "RecordTestEvents", client, recordTestEvents)
	},
}

func init() {
	// Flags for this command
	Command.Flags().Int("count", 10, "Number of test events to record")

	// Bind flags to viper
	viper.BindPFlag("emmylog.count", Command.Flags().Lookup("count"))
}

func timeIt(log zerolog.Logger, name string, client emmylog.Client, f func(emmylog.Client) error) error {
	t := time.Now()
	defer func() {
		log.Info().Str("dur", time.Since(t).String()).Str("name", name).Send()
	}()
	return f(client)
}

// recordTestEvents adds count test events followed by a list, the same
// sequence a button press on the dashboard produces.
func recordTestEvents(client emmylog.Client) error {
	ctx := context.Background()
	count := viper.GetInt("emmylog.count")
	for i := 0; i < count; i++ {
		if err := client.Add(ctx, event.Test, ""); err != nil {
			return err
		}
		if _, err := client.List(ctx); err != nil {
			return err
		}
	}
	return nil
}
