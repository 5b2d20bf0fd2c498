/*
 * Copyright (c) 2022, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	emmylog "github.com/dburkart/emmylog/api"
	"github.com/dburkart/emmylog/pkg/app"
	"github.com/dburkart/emmylog/pkg/event"
	"github.com/rs/zerolog"
)

/*
 * Hammers a store server with overlapping button presses from several
 * dashboards at once. Every dashboard records a test event and refreshes,
 * and at the end each one must hold a history at least as new as its own
 * last event.
 */

func main() {
	host := "emmylog://localhost:8080"
	if len(os.Args) > 1 {
		host = os.Args[1]
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			client, err := emmylog.NewClient(host, emmylog.Options{Log: log})
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			defer client.Close()

			state := app.New(client, log.With().Int("dashboard", i).Logger())
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			var inner sync.WaitGroup
			for j := 0; j < 10; j++ {
				inner.Add(1)
				go func() {
					defer inner.Done()
					if err := state.Record(ctx, event.TriggerTest, ""); err != nil {
						fmt.Println(err)
					}
				}()
			}
			inner.Wait()

			events := state.Events()
			if len(events) == 0 || events[len(events)-1].Kind != event.Test {
				fmt.Printf("dashboard %d ended with a stale history\n", i)
				os.Exit(1)
			}
		}(i)
	}
	wg.Wait()
}
