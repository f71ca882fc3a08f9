// Package glob matches page URLs against the wait-for-URL patterns used by
// the suite, e.g. "**/search?**". "**" crosses '/', "*" and "?" do not.
package glob

import (
	"fmt"
	"sync"

	gobwas "github.com/gobwas/glob"
)

var cache sync.Map // pattern -> gobwas.Glob

func Compile(pattern string) (gobwas.Glob, error) {
	if g, ok := cache.Load(pattern); ok {
		return g.(gobwas.Glob), nil
	}
	g, err := gobwas.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("compile url pattern %q: %w", pattern, err)
	}
	cache.Store(pattern, g)
	return g, nil
}

// Match reports whether url matches pattern. An invalid pattern never
// matches.
func Match(pattern, url string) bool {
	g, err := Compile(pattern)
	if err != nil {
		return false
	}
	return g.Match(url)
}
