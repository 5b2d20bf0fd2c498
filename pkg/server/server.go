/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dburkart/emmylog/pkg/database"
	"github.com/dburkart/emmylog/pkg/proto"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// maxRequestBytes bounds the size of a request envelope
const maxRequestBytes = 64 << 10

type Config struct {
	Port        int
	MetricsPort int
	Options     Options
}

type Server struct {
	log     zerolog.Logger
	metrics MetricsStore

	store  database.Store
	mux    ActionMux
	config Config
}

func New(log zerolog.Logger, store database.Store, config Config) *Server {
	metrics := NewMetricsStore()
	metrics.RegisterCollector(NewStoreStatsCollector(store, log))

	return &Server{
		log:     log,
		metrics: metrics,
		store:   store,
		mux:     NewActionMux(store, config.Options),
		config:  config,
	}
}

// Handler returns the router serving the query endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/query", s.handleQuery)
	r.Post("/query.py", s.handleQuery)

	return r
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rw := proto.NewResponseWriter(w)

	var req proto.Request
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err == nil {
		err = req.Unmarshal(body)
	}
	if err != nil {
		s.log.Debug().Err(err).Msg("unable to decode request")
		s.metrics.IncRequests("", proto.CodeInvalidJSON)
		rw.WriteMessage(proto.NewErrResponse(proto.CodeInvalidJSON, "Cannot read input data"))
		return
	}

	resp := s.mux.Dispatch(r.Context(), req, RequestMeta{SourceIP: sourceIP(r)})

	action := string(req.Action)
	s.metrics.IncRequests(action, resp.Code)
	s.metrics.ObserveResponseNS(action, time.Since(start).Nanoseconds())
	if req.Action == proto.ActionAdd && resp.Success {
		s.metrics.IncEventsAdded(req.Event)
	}
	if !resp.Success {
		s.log.Warn().Object("request", req).Str("errcode", resp.Code).Str("errtext", resp.Text).Msg("request rejected")
	}

	_, err = rw.WriteMessage(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("unable to write response")
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Str("request-id", chimw.GetReqID(r.Context())).
			Dur("took", time.Since(start)).
			Msg("handled request")
	})
}

// Run serves the query endpoint and the metrics endpoint until ctx is
// cancelled or either listener fails.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	servers := []*http.Server{
		newHTTPServer(fmt.Sprintf(":%d", s.config.Port), s.Handler()),
		newHTTPServer(fmt.Sprintf(":%d", s.config.MetricsPort), s.metricsHandler()),
	}
	s.log.Info().Int("port", s.config.Port).Msg("listening for client requests")
	s.log.Info().Int("port", s.config.MetricsPort).Msg("/metrics endpoint started")

	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			err := srv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.log.Error().Err(err).Str("addr", srv.Addr).Msg("error shutting down listener")
			}
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func sourceIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
