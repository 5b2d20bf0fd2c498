/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package events

import (
	"context"
	"os"
	"slices"
	"strings"
	"time"

	emmylog "github.com/dburkart/emmylog/api"
	"github.com/dburkart/emmylog/pkg/event"
	"github.com/dburkart/emmylog/pkg/history"
	"github.com/dburkart/emmylog/pkg/repl"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ListCommand = &cobra.Command{
	Use:   "list",
	Short: "Print the event history",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client emmylog.Client, loc *time.Location) error {
			events, err := client.List(ctx)
			if err != nil {
				return err
			}
			return printHistory(events, loc)
		})
	},
}

var AddCommand = &cobra.Command{
	Use:   "add <kind> [YYYY-MM-DD HH:MM:SS]",
	Short: "Record a single event",
	Long:  "Record a single event. Kinds: " + kindList() + ". Without a timestamp the event is recorded now.",
	Args:  cobra.RangeArgs(1, 3),

	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := event.ParseKind(args[0])
		if err != nil {
			if s := repl.Suggest(args[0]); s != "" {
				return errors.Wrapf(err, "did you mean %q?", s)
			}
			return err
		}
		ts := strings.Join(args[1:], " ")

		return withClient(func(ctx context.Context, client emmylog.Client, loc *time.Location) error {
			if err := client.Add(ctx, kind, ts); err != nil {
				return err
			}
			events, err := client.List(ctx)
			if err != nil {
				return err
			}
			return printHistory(events, loc)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{ListCommand, AddCommand} {
		c.Flags().StringP("output", "o", "text", "Output format of results [csv, json, text]")
		c.Flags().Duration("timeout", 30*time.Second, "Timeout for each request")
		c.PreRun = bindFlags
	}
}

// bindFlags binds the flags of the command that is running, both commands
// share the same viper keys.
func bindFlags(cmd *cobra.Command, _ []string) {
	viper.BindPFlag("emmylog.output", cmd.Flags().Lookup("output"))
	viper.BindPFlag("emmylog.timeout", cmd.Flags().Lookup("timeout"))
}

func kindList() string {
	names := make([]string, len(event.Kinds))
	for i, k := range event.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

type clientFunc func(ctx context.Context, client emmylog.Client, loc *time.Location) error

func withClient(f clientFunc) error {
	log := viper.Get("logger").(zerolog.Logger)
	loc := viper.Get("location").(*time.Location)
	host := viper.GetString("emmylog.host")

	timeout := viper.GetDuration("emmylog.timeout")
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client, err := emmylog.NewClient(host, emmylog.Options{Log: log, Location: loc, Timeout: timeout})
	if err != nil {
		log.Error().Err(err).Str("host", host).Msg("unable to connect to store")
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return f(ctx, client, loc)
}

func printHistory(events []event.Event, loc *time.Location) error {
	output := viper.GetString("emmylog.output")
	if !slices.Contains(repl.Formats, output) {
		return errors.Errorf("unsupported output format %q", output)
	}

	rows, err := history.Render(events, time.Now(), loc)
	if err != nil {
		return err
	}
	return repl.NewOutputWriter(os.Stdout, output).Write(repl.HistoryTable(rows))
}
