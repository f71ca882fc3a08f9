// Package scenario holds the suite's end-to-end scenarios. Each one drives
// a single page through a user journey and returns an error describing the
// first expectation that did not hold.
package scenario

import (
	"context"
	"fmt"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
	"github.com/jacqt4/PlaywrightTutorial/internal/expect"
)

var _ output.ScenarioPort = (*Scenario)(nil)

type Scenario struct {
	name        string
	description string
	run         func(ctx context.Context, env output.ScenarioEnv) error
}

func (s *Scenario) Name() string        { return s.name }
func (s *Scenario) Description() string { return s.description }

func (s *Scenario) Run(ctx context.Context, env output.ScenarioEnv) error {
	return s.run(ctx, env)
}

// All returns every scenario, bound to targets.
func All(t Targets) []output.ScenarioPort {
	return []output.ScenarioPort{
		GoogleTitle(t),
		GoogleSearch(t),
		BingSearch(t),
		BingFirstResult(t),
		BingPageObject(t),
		BingFirstResultText(t),
		SearchInputValue(t),
		DocsHomepage(t),
		DocsSearch(t),
		DocsAssertions(t),
		BingReachable(t),
	}
}

// Register adds All(t) to registry.
func Register(registry output.ScenarioRegistry, t Targets) {
	for _, s := range All(t) {
		registry.Register(s)
	}
}

// check turns a failed condition into an assertion error.
func check(ok bool, subject, expected string, actual any) error {
	if ok {
		return nil
	}
	return &expect.MismatchError{Subject: subject, Expected: expected, Actual: fmt.Sprintf("%v", actual)}
}
