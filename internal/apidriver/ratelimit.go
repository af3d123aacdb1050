// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apidriver

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// minRPS is the floor enforced on the configured per-locale rate, per
// spec.md §4.9 ("floor enforced at 3").
const minRPS = 3

// localeLimiters lazily creates one token-bucket limiter per locale, the
// same per-key-map-with-lazy-create shape as a per-IP HTTP rate limiter,
// keyed here by locale instead of remote address.
type localeLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      int
}

func newLocaleLimiters(rps int) *localeLimiters {
	if rps < minRPS {
		rps = minRPS
	}
	return &localeLimiters{limiters: make(map[string]*rate.Limiter), rps: rps}
}

func (l *localeLimiters) wait(ctx context.Context, locale string) error {
	l.mu.Lock()
	limiter, ok := l.limiters[locale]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), l.rps)
		l.limiters[locale] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}
