// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stringutils

import (
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
)

// Scan snapshots repeat the same titles and names for minutes at a time, so
// cached transforms stay warm across consecutive requests.
const defaultNormalizerTTL = 5 * time.Minute

// TransformFunc maps a key to its normalized form.
type TransformFunc[K, V any] func(K) V

// Normalizer memoizes an expensive transform behind a TTL cache. Transforms
// should intern their results so that cache entries for different keys can
// still share identical output strings.
type Normalizer[K comparable, V any] struct {
	cache     *ttlcache.Cache[K, V]
	transform TransformFunc[K, V]
}

// NewNormalizer returns a Normalizer that calls transform at most once per
// unique key until the TTL expires.
func NewNormalizer[K comparable, V any](ttl time.Duration, transform TransformFunc[K, V]) *Normalizer[K, V] {
	cache := ttlcache.New(ttlcache.Options[K, V]{}.
		SetDefaultTTL(ttl))
	return &Normalizer[K, V]{
		cache:     cache,
		transform: transform,
	}
}

// Normalize returns the cached transform of key, computing it on a miss.
func (n *Normalizer[K, V]) Normalize(key K) V {
	if cached, ok := n.cache.Get(key); ok {
		return cached
	}

	transformed := n.transform(key)
	n.cache.Set(key, transformed, ttlcache.DefaultTTL)
	return transformed
}
