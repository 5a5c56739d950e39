package ports

import (
	"context"

	"ecothread/domain/run"
)

// RunRepository persists run manifests and their test results.
// Persistence is optional; callers hold a nil repository when no database is
// configured and skip the save entirely.
type RunRepository interface {
	SaveRun(ctx context.Context, res *run.Result) error
}
