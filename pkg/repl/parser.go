/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package repl

import (
	"fmt"
	"strings"

	"github.com/dburkart/emmylog/pkg/event"
	"github.com/pkg/errors"
	"github.com/sahilm/fuzzy"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingKind    = errors.New("missing event kind")
)

type CommandType int

const (
	CommandList CommandType = iota
	CommandAdd
	CommandHelp
	CommandExit
)

// Command is a parsed line of REPL input. Kind and Timestamp are only set
// for CommandAdd.
type Command struct {
	Type      CommandType
	Kind      event.Kind
	Timestamp string
}

// ParseREPLCommand parses a single line of input. Accepted forms:
//
//	list
//	add <kind> [YYYY-MM-DD HH:MM:SS]
//	<trigger id> [YYYY-MM-DD HH:MM:SS]
//	help
//	exit
func ParseREPLCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, ErrEmptyCommand
	}

	// the timestamp contains a space, so only split off the command word
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "list":
		return Command{Type: CommandList}, nil
	case "help":
		return Command{Type: CommandHelp}, nil
	case "exit", "quit":
		return Command{Type: CommandExit}, nil
	case "add":
		if rest == "" {
			return Command{}, ErrMissingKind
		}
		name, ts, _ := strings.Cut(rest, " ")
		kind, err := event.ParseKind(name)
		if err != nil {
			if s := Suggest(name); s != "" {
				return Command{}, fmt.Errorf("%w, did you mean %q?", err, s)
			}
			return Command{}, err
		}
		return Command{Type: CommandAdd, Kind: kind, Timestamp: strings.TrimSpace(ts)}, nil
	}

	if trigger, err := event.ParseTrigger(cmd); err == nil {
		return Command{Type: CommandAdd, Kind: trigger.Kind(), Timestamp: rest}, nil
	}

	return Command{}, errors.Wrapf(ErrUnknownCommand, "%q", cmd)
}

// Suggest returns the event kind closest to input, or "" when nothing
// resembles it.
func Suggest(input string) string {
	names := make([]string, len(event.Kinds))
	for i, k := range event.Kinds {
		names[i] = string(k)
	}

	matches := fuzzy.Find(strings.ToLower(input), names)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
