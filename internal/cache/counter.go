// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// counter.go provides a Valkey-backed fixed-window request counter. Every
// instance of the server shares the same counters, so a client's budget
// holds across the whole deployment.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// counterKeyPrefix is the Valkey key prefix for request counters.
	counterKeyPrefix = "ratelimit:"

	// DefaultWindow is the counting window when none is given.
	DefaultWindow = time.Minute
)

// WindowCounter allows at most limit hits per key in each fixed window.
type WindowCounter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewWindowCounter creates a counter backed by the given Valkey client.
func NewWindowCounter(client *redis.Client, limit int, window time.Duration) *WindowCounter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &WindowCounter{client: client, limit: int64(limit), window: window, now: time.Now}
}

// Allow records a hit for key and reports whether it is within the limit.
// The counter key expires with its window.
func (wc *WindowCounter) Allow(ctx context.Context, key string) (bool, error) {
	k := wc.key(key)

	var incr *redis.IntCmd
	_, err := wc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, wc.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("count request: %w", err)
	}
	return incr.Val() <= wc.limit, nil
}

// key buckets the client key by window start.
func (wc *WindowCounter) key(key string) string {
	slot := wc.now().UnixNano() / int64(wc.window)
	return counterKeyPrefix + key + ":" + strconv.FormatInt(slot, 10)
}
