package entity

import "time"

type ScenarioStatus string

const (
	ScenarioPassed ScenarioStatus = "passed"
	ScenarioFailed ScenarioStatus = "failed"
	// ScenarioBroken means the fixture could not be set up, so the scenario
	// body never ran.
	ScenarioBroken ScenarioStatus = "broken"
)

type ScenarioResult struct {
	RunID     string
	Name      string
	Status    ScenarioStatus
	Err       error
	Duration  time.Duration
	Artifacts []string
}

func (r *ScenarioResult) Passed() bool {
	return r.Status == ScenarioPassed
}
