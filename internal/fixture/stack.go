package fixture

import (
	"fmt"
	"sync"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
)

// Stack releases acquired resources in reverse order of acquisition.
type Stack struct {
	mu      sync.Mutex
	entries []stackEntry

	once sync.Once
	err  error
}

type stackEntry struct {
	name    string
	release func() error
}

// Push registers release to run when the stack unwinds.
func (s *Stack) Push(name string, release func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, stackEntry{name: name, release: release})
}

func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Unwind runs every release, newest first, even after one fails. It returns
// the first error; all of them are logged. Later calls return the result of
// the first.
func (s *Stack) Unwind(log output.LoggerPort) error {
	s.once.Do(func() {
		s.mu.Lock()
		entries := s.entries
		s.entries = nil
		s.mu.Unlock()

		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			if err := release(e); err != nil {
				log.Warn("Release failed", "resource", e.name, "error", err)
				if s.err == nil {
					s.err = fmt.Errorf("release %s: %w", e.name, err)
				}
				continue
			}
			log.Debug("Released", "resource", e.name)
		}
	})
	return s.err
}

// release turns a panicking release into an error so the rest still run.
func release(e stackEntry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.release()
}
