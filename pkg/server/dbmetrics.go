/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"time"

	"github.com/dburkart/emmylog/pkg/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type storeStatsCollector struct {
	store database.Store
	log   zerolog.Logger

	events    *prometheus.Desc
	lastEvent *prometheus.Desc
}

func NewStoreStatsCollector(store database.Store, log zerolog.Logger) prometheus.Collector {
	return &storeStatsCollector{
		store: store,
		log:   log,
		events: prometheus.NewDesc(
			"emmylog_store_events",
			"Number of events in the store.",
			[]string{"backend"}, nil,
		),
		lastEvent: prometheus.NewDesc(
			"emmylog_store_last_event_timestamp_seconds",
			"Unix time of the newest event in the store.",
			[]string{"backend"}, nil,
		),
	}
}

// Describe implements Collector.
func (c *storeStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.events
	ch <- c.lastEvent
}

// Collect implements Collector.
func (c *storeStatsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stats, err := c.store.Stats(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("unable to collect store stats")
		return
	}
	ch <- prometheus.MustNewConstMetric(c.events, prometheus.GaugeValue, float64(stats.Events), stats.Backend)
	if !stats.LastEvent.IsZero() {
		ch <- prometheus.MustNewConstMetric(c.lastEvent, prometheus.GaugeValue, float64(stats.LastEvent.Unix()), stats.Backend)
	}
}
