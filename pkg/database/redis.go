/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisKey is the sorted set holding the events, scored by event time.
const RedisKey = "emmylog:events"

// Members sharing a score are ordered lexicographically by redis, so each
// member leads with its zero-padded creation time.
const memberSep = "|"

func encodeMember(r Record) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, "encode record")
	}
	return fmt.Sprintf("%020d%s%s", r.Created.UnixNano(), memberSep, body), nil
}

func decodeMember(m string) (Record, error) {
	var r Record
	if _, body, ok := strings.Cut(m, memberSep); ok && !strings.HasPrefix(m, "{") {
		m = body
	}
	err := json.Unmarshal([]byte(m), &r)
	return r, errors.Wrap(err, "decode record")
}

type RedisStore struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisStore connects to the redis server named by a redis:// url.
func NewRedisStore(dsn string, log zerolog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis URL")
	}
	opts.DialTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}

	return &RedisStore{client: client, log: log.With().Str("store", "redis").Logger()}, nil
}

func (s *RedisStore) Append(ctx context.Context, r Record) error {
	member, err := encodeMember(r)
	if err != nil {
		return err
	}

	err = s.client.ZAdd(ctx, RedisKey, redis.Z{
		Score:  float64(r.Time.Unix()),
		Member: member,
	}).Err()
	return errors.Wrap(err, "zadd event")
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	members, err := s.client.ZRevRange(ctx, RedisKey, 0, stop).Result()
	if err != nil {
		return nil, errors.Wrap(err, "zrevrange events")
	}

	records := make([]Record, 0, len(members))
	for _, m := range members {
		r, err := decodeMember(m)
		if err != nil {
			s.log.Warn().Err(err).Msg("skipping undecodable event")
			continue
		}
		records = append(records, r)
	}

	reverse(records)
	return records, nil
}

func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	count, err := s.client.ZCard(ctx, RedisKey).Result()
	if err != nil {
		return Stats{}, errors.Wrap(err, "zcard events")
	}

	stats := Stats{Backend: "redis", Events: int(count)}
	if count > 0 {
		last, err := s.List(ctx, 1)
		if err != nil {
			return Stats{}, err
		}
		if len(last) == 1 {
			stats.LastEvent = last[0].Time
		}
	}
	return stats, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
