// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"context"
	"sync"
)

// Orchestrator runs a set of providers and publishes their results on a GeoBus.
type Orchestrator struct {
	bus       *GeoBus
	providers []Provider
}

// Track starts all providers for the given key and blocks until ctx is done.
func (o *Orchestrator) Track(ctx context.Context, key string) {
	var wg sync.WaitGroup
	for _, p := range o.providers {
		wg.Go(func() {
			o.trackProvider(ctx, p, key)
		})
	}
	<-ctx.Done()
	wg.Wait()
}

// trackProvider keeps a provider's stream alive, restarting it with an exponential backoff
// whenever it ends or fails to start.
func (o *Orchestrator) trackProvider(ctx context.Context, p Provider, key string) {
	backoff := initialBackoff
	for ctx.Err() == nil {
		stream := o.safeLookup(ctx, p, key)
		if stream != nil {
			for r := range stream {
				o.bus.Publish(r)
				backoff = initialBackoff
			}
		}
		if !sleepOrDone(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

// safeLookup invokes the provider's LookupStream and recovers from a panicking provider.
func (o *Orchestrator) safeLookup(ctx context.Context, p Provider, key string) (ch <-chan Result) {
	defer func() {
		if r := recover(); r != nil {
			o.bus.logger.Error("geolocation provider panicked", "provider", p.Name(), "panic", r)
			ch = nil
		}
	}()
	return p.LookupStream(ctx, key)
}
