/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2022-2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package client

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/chzyer/readline"
	emmylog "github.com/dburkart/emmylog/api"
	"github.com/dburkart/emmylog/pkg/app"
	"github.com/dburkart/emmylog/pkg/event"
	"github.com/dburkart/emmylog/pkg/repl"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "client",
	Short: "Interactive terminal for recording and listing events",

	RunE: func(cmd *cobra.Command, args []string) error {
		log := viper.Get("logger").(zerolog.Logger)
		loc := viper.Get("location").(*time.Location)

		output := viper.GetString("emmylog.output")
		if !slices.Contains(repl.Formats, output) {
			return errors.Errorf("unsupported output format %q", output)
		}

		host := viper.GetString("emmylog.host")
		client, err := emmylog.NewClient(host, emmylog.Options{Log: log, Location: loc})
		if err != nil {
			log.Error().Err(err).Str("host", host).Msg("unable to connect to store")
			return err
		}
		defer client.Close()

		state := app.New(client, log)
		return readlinePrompt(state, loc, output, log)
	},
}

func init() {
	// Flags for this command
	Command.Flags().StringP("output", "o", "text", "Output format of results [csv, json, text]")

	// Bind flags to viper
	viper.BindPFlag("emmylog.output", Command.Flags().Lookup("output"))
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func newCompleter() *readline.PrefixCompleter {
	kinds := make([]readline.PrefixCompleterInterface, 0, len(event.Kinds))
	for _, k := range event.Kinds {
		kinds = append(kinds, readline.PcItem(string(k)))
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem("help"),
		readline.PcItem("list"),
		readline.PcItem("add", kinds...),
		readline.PcItem("exit"),
	}
	for _, t := range event.Triggers {
		items = append(items, readline.PcItem(t.ID()))
	}

	return readline.NewPrefixCompleter(items...)
}

func readlinePrompt(state *app.State, loc *time.Location, output string, log zerolog.Logger) error {
	completer := newCompleter()

	// Setup the readline executor
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31m>\033[0m ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	// Configure output writer
	writer := repl.NewOutputWriter(os.Stdout, output)
	show := func() {
		rows, err := state.Rows(time.Now(), loc)
		if err != nil {
			log.Error().Err(err).Msg("unable to render history")
			return
		}
		if err := writer.Write(repl.HistoryTable(rows)); err != nil {
			log.Error().Err(err).Send()
		}
	}

	// Handle input
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err != nil {
			break
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		c, err := repl.ParseREPLCommand(line)
		if err != nil {
			log.Error().Err(err).Send()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		switch c.Type {
		case repl.CommandHelp:
			fmt.Println("usage:")
			fmt.Println(completer.Tree("    "))
		case repl.CommandExit:
			cancel()
			return nil
		case repl.CommandList:
			if err := state.Refresh(ctx); err == nil {
				show()
			}
		case repl.CommandAdd:
			trigger, _ := event.TriggerForKind(c.Kind)
			var refreshErr *app.RefreshError
			err := state.Record(ctx, trigger, c.Timestamp)
			if errors.As(err, &refreshErr) {
				fmt.Println("recorded, showing the last known history")
			}
			if err == nil || refreshErr != nil {
				show()
			}
		}
		cancel()
		fmt.Println()
	}
	rl.Clean()

	return nil
}
