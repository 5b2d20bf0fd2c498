/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsStore interface {
	Registry() *prometheus.Registry
	RegisterCollector(c prometheus.Collector)
	Handler() http.Handler

	// Collection
	IncRequests(action, code string)
	IncEventsAdded(kind string)
	ObserveResponseNS(action string, t int64)
}

type metricsStore struct {
	registry    *prometheus.Registry
	Requests    *prometheus.CounterVec
	EventsAdded *prometheus.CounterVec
	ResponseNS  *prometheus.HistogramVec
}

var (
	ActionLabel = "action"
	CodeLabel   = "errcode"
	EventLabel  = "event"
)

func NewMetricsStore() MetricsStore {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.MetricsAll),
		),
	)

	buckets := []float64{}
	for i := 1; i < 20; i++ {
		buckets = append(buckets, float64(2*i*int(time.Millisecond)))
	}

	factory := promauto.With(reg)
	return &metricsStore{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "emmylog_requests",
			Help: "Request counts per action and resulting errcode",
		}, []string{ActionLabel, CodeLabel}),
		EventsAdded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "emmylog_events_added",
			Help: "Events appended to the store per event kind",
		}, []string{EventLabel}),
		ResponseNS: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "emmylog_response_ns",
			Help:    "Response times of actions against the store",
			Buckets: buckets,
		}, []string{ActionLabel}),
	}
}

func (ms *metricsStore) Registry() *prometheus.Registry {
	return ms.registry
}

func (ms *metricsStore) RegisterCollector(c prometheus.Collector) {
	ms.registry.MustRegister(c)
}

func (ms *metricsStore) Handler() http.Handler {
	return promhttp.HandlerFor(ms.Registry(), promhttp.HandlerOpts{Registry: ms.Registry()})
}

func (ms *metricsStore) IncRequests(action, code string) {
	ms.Requests.With(prometheus.Labels{ActionLabel: action, CodeLabel: code}).Inc()
}

func (ms *metricsStore) IncEventsAdded(kind string) {
	ms.EventsAdded.With(prometheus.Labels{EventLabel: kind}).Inc()
}

func (ms *metricsStore) ObserveResponseNS(action string, t int64) {
	ms.ResponseNS.
		With(prometheus.Labels{ActionLabel: action}).
		Observe(float64(t))
}
