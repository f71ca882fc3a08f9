package input

import (
	"context"

	"github.com/jacqt4/PlaywrightTutorial/internal/domain/entity"
)

type ScenarioRunner interface {
	// Run executes one registered scenario in its own fixture. The error is
	// reserved for problems outside the scenario, such as an unknown name;
	// scenario failures are reported through the result.
	Run(ctx context.Context, name string) (*entity.ScenarioResult, error)
	RunAll(ctx context.Context, names []string) ([]*entity.ScenarioResult, error)
}
