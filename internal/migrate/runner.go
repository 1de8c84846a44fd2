package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/roach88/tabular/internal/storage"
)

// Runner drives an externally supplied, unordered set of migration
// definitions against a SchemaBuilder.
type Runner struct {
	migrations []Migration
	log        *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger for skip warnings and progress logs.
func WithLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = log
	}
}

// NewRunner validates the definitions and creates a runner.
//
// A malformed definition (non-positive version, empty name, or missing
// producer) is excluded with a warning; the remaining valid set still
// runs. A version appearing twice among the valid definitions is a fatal
// configuration error.
func NewRunner(defs []Migration, opts ...RunnerOption) (*Runner, error) {
	r := &Runner{log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}

	seen := make(map[int64]string)
	for _, def := range defs {
		if !def.wellFormed() {
			r.log.Warn("skipping malformed migration definition",
				"version", def.Version,
				"name", def.Name)
			continue
		}
		if prev, dup := seen[def.Version]; dup {
			return nil, storage.NewConfiguration(
				"duplicate migration version %d (%q and %q)", def.Version, prev, def.Name)
		}
		seen[def.Version] = def.Name
		r.migrations = append(r.migrations, def)
	}
	return r, nil
}

// Migrations returns the runnable set in its loaded order.
func (r *Runner) Migrations() []Migration {
	out := make([]Migration, len(r.migrations))
	copy(out, r.migrations)
	return out
}

// ApplyResult reports what an apply run visited.
type ApplyResult struct {
	// RunID correlates this run's log lines.
	RunID string `json:"run_id"`

	// Applied lists the migrations applied, in ascending version order.
	Applied []Applied `json:"applied"`

	// CurrentVersion is the last applied version, 0 if none applied.
	CurrentVersion int64 `json:"current_version"`
}

// Apply runs Up producers in ascending version order, re-sorting the full
// set first regardless of input order. With target > 0 it stops before the
// first version exceeding target; otherwise it applies everything.
//
// Each producer completes fully before the next starts. On producer
// failure the result of the migrations already applied is returned
// alongside the error.
func (r *Runner) Apply(ctx context.Context, sb SchemaBuilder, target int64) (*ApplyResult, error) {
	result := &ApplyResult{
		RunID:   uuid.NewString(),
		Applied: []Applied{},
	}

	for _, m := range r.sortedAsc() {
		if target > 0 && m.Version > target {
			break
		}
		r.log.Info("applying migration",
			"run_id", result.RunID,
			"version", m.Version,
			"name", m.Name)
		if err := m.Up(ctx, sb); err != nil {
			return result, fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		result.Applied = append(result.Applied, Applied{Version: m.Version, Name: m.Name})
		result.CurrentVersion = m.Version
	}
	return result, nil
}

// RollbackOptions selects the rollback window. All takes precedence over
// Steps; with neither set, one migration is rolled back.
type RollbackOptions struct {
	All   bool
	Steps int
}

// RollbackResult reports what a rollback run visited.
type RollbackResult struct {
	RunID string `json:"run_id"`

	// RolledBack lists the migrations rolled back, in descending version
	// order.
	RolledBack []Applied `json:"rolled_back"`

	// CurrentVersion is the highest version below the rolled-back window,
	// 0 when the window covers the entire set.
	CurrentVersion int64 `json:"current_version"`
}

// Rollback runs Down producers over the top of the version ordering:
// the first Steps entries descending (or all of them). The runner tracks
// no applied-versions ledger, so the window is computed from the full set
// each invocation.
func (r *Runner) Rollback(ctx context.Context, sb SchemaBuilder, opts RollbackOptions) (*RollbackResult, error) {
	desc := r.sortedDesc()

	window := 1
	switch {
	case opts.All:
		window = len(desc)
	case opts.Steps > 0:
		window = opts.Steps
	}
	if window > len(desc) {
		window = len(desc)
	}

	result := &RollbackResult{
		RunID:      uuid.NewString(),
		RolledBack: []Applied{},
	}
	if window < len(desc) {
		result.CurrentVersion = desc[window].Version
	}

	for _, m := range desc[:window] {
		r.log.Info("rolling back migration",
			"run_id", result.RunID,
			"version", m.Version,
			"name", m.Name)
		if err := m.Down(ctx, sb); err != nil {
			return result, fmt.Errorf("roll back migration %d (%s): %w", m.Version, m.Name, err)
		}
		result.RolledBack = append(result.RolledBack, Applied{Version: m.Version, Name: m.Name})
	}
	return result, nil
}

func (r *Runner) sortedAsc() []Migration {
	out := make([]Migration, len(r.migrations))
	copy(out, r.migrations)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

func (r *Runner) sortedDesc() []Migration {
	out := make([]Migration, len(r.migrations))
	copy(out, r.migrations)
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out
}
