//
// Tencent is pleased to support the open source community by making trpc-scenario-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-scenario-go is licensed under the Apache License Version 2.0.
//
//

package scenario

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize bounds the compile cache when no capacity is configured.
const defaultCacheSize = 128

// CompileCache holds compiled graphs keyed by the content hash of their
// normalized node/edge set, so repeated runs against the same graph reuse one
// compiled form. The cache is bounded with LRU eviction and safe for
// concurrent lookup-or-compile; two callers compiling the same graph
// concurrently both succeed and one entry wins, which is fine because
// compilation is pure and deterministic for a given key.
type CompileCache struct {
	entries *lru.Cache[string, *compiledGraph]
}

// NewCompileCache creates a cache bounded at size entries. Sizes below one
// fall back to the default capacity.
func NewCompileCache(size int) *CompileCache {
	if size < 1 {
		size = defaultCacheSize
	}
	// lru.New only fails for a non-positive size, which is ruled out above.
	entries, _ := lru.New[string, *compiledGraph](size)
	return &CompileCache{entries: entries}
}

// GetOrCompile returns the compiled form of g, compiling and caching it on a
// miss.
func (c *CompileCache) GetOrCompile(g *Graph) *compiledGraph {
	key := g.contentHash()
	if cg, ok := c.entries.Get(key); ok {
		return cg
	}
	cg := compile(g)
	c.entries.Add(key, cg)
	return cg
}

// Len reports the number of cached compiled graphs.
func (c *CompileCache) Len() int {
	return c.entries.Len()
}
