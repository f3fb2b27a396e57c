// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

/*
Package cache provides a generic in-memory TTL cache.

Entries expire individually. Reads of an expired entry count as misses
and remove it; a background janitor sweeps the rest until Close.

Usage:

	decisions := cache.New[bool](time.Minute,
	    cache.WithSizeObserver(func(n int) { gauge.Set(float64(n)) }),
	)
	defer decisions.Close()

	key := cache.Key(role, object, action)
	if allowed, ok := decisions.Get(key); ok {
	    return allowed
	}

Thread Safety:

All methods are safe for concurrent use.
*/
package cache
