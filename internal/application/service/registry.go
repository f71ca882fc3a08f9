package service

import (
	"sort"
	"sync"

	"github.com/jacqt4/PlaywrightTutorial/internal/application/port/output"
)

var _ output.ScenarioRegistry = (*ScenarioRegistryImpl)(nil)

type ScenarioRegistryImpl struct {
	mu        sync.RWMutex
	scenarios map[string]output.ScenarioPort
}

func NewScenarioRegistry() *ScenarioRegistryImpl {
	return &ScenarioRegistryImpl{
		scenarios: make(map[string]output.ScenarioPort),
	}
}

// Register adds scenario, replacing any earlier one with the same name.
func (r *ScenarioRegistryImpl) Register(scenario output.ScenarioPort) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenarios[scenario.Name()] = scenario
}

func (r *ScenarioRegistryImpl) Get(name string) (output.ScenarioPort, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	scenario, ok := r.scenarios[name]
	return scenario, ok
}

// All returns the scenarios sorted by name.
func (r *ScenarioRegistryImpl) All() []output.ScenarioPort {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]output.ScenarioPort, 0, len(r.scenarios))
	for _, scenario := range r.scenarios {
		result = append(result, scenario)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

func (r *ScenarioRegistryImpl) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name()
	}
	return names
}
