package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
)

type namedScenario string

func (n namedScenario) Name() string        { return string(n) }
func (n namedScenario) Description() string { return "" }
func (n namedScenario) Run(context.Context, output.ScenarioEnv) error {
	return nil
}

func TestScenarioRegistry(t *testing.T) {
	r := NewScenarioRegistry()
	r.Register(namedScenario("docs-search"))
	r.Register(namedScenario("bing-search"))
	r.Register(namedScenario("bing-search"))

	assert.Equal(t, []string{"bing-search", "docs-search"}, r.Names())
	assert.Len(t, r.All(), 2)

	s, ok := r.Get("docs-search")
	assert.True(t, ok)
	assert.Equal(t, "docs-search", s.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}
