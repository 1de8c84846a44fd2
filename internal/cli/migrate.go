package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tabular/internal/migrate"
	"github.com/roach88/tabular/internal/schema"
	"github.com/roach88/tabular/internal/storage"
	"github.com/roach88/tabular/internal/store"
)

// MigrateOptions holds the flags shared by the migrate subcommands.
type MigrateOptions struct {
	SchemaPath    string
	MigrationsDir string
	DBPath        string
	DryRun        bool
}

// NewMigrateCommand creates the migrate command group.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
		Long: `Apply or roll back schema migrations loaded from a directory of
YAML definitions. With --dry-run the operations are only recorded and
printed; otherwise they mutate the SQLite database at --db.`,
	}

	cmd.PersistentFlags().StringVar(&opts.SchemaPath, "schema", "", "CUE schema definition file (required)")
	cmd.PersistentFlags().StringVar(&opts.MigrationsDir, "migrations", "", "directory of migration YAML files (required)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path (required unless --dry-run)")
	cmd.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "record and print operations without applying them")
	cmd.MarkPersistentFlagRequired("schema")
	cmd.MarkPersistentFlagRequired("migrations")

	cmd.AddCommand(newMigrateUpCommand(rootOpts, opts))
	cmd.AddCommand(newMigrateDownCommand(rootOpts, opts))
	return cmd
}

func newMigrateUpCommand(rootOpts *RootOptions, opts *MigrateOptions) *cobra.Command {
	var target int64

	cmd := &cobra.Command{
		Use:           "up",
		Short:         "Apply migrations in ascending version order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setupMigrateEnv(rootOpts, opts, cmd)
			if err != nil {
				return err
			}
			defer env.close()

			result, err := env.runner.Apply(cmd.Context(), env.builder, target)
			if err != nil {
				env.formatter.Error(err.Error())
				return WrapExitError(ExitFailure, "migration apply failed", err)
			}

			var b strings.Builder
			for _, a := range result.Applied {
				fmt.Fprintf(&b, "applied %d %s\n", a.Version, a.Name)
			}
			fmt.Fprintf(&b, "current version: %d\n", result.CurrentVersion)
			b.WriteString(env.planSuffix())
			return env.formatter.SuccessText(b.String(), result)
		},
	}

	cmd.Flags().Int64Var(&target, "target", 0, "apply up to and including this version (0 = all)")
	return cmd
}

func newMigrateDownCommand(rootOpts *RootOptions, opts *MigrateOptions) *cobra.Command {
	var steps int
	var all bool

	cmd := &cobra.Command{
		Use:           "down",
		Short:         "Roll back migrations in descending version order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setupMigrateEnv(rootOpts, opts, cmd)
			if err != nil {
				return err
			}
			defer env.close()

			result, err := env.runner.Rollback(cmd.Context(), env.builder, migrate.RollbackOptions{
				All:   all,
				Steps: steps,
			})
			if err != nil {
				env.formatter.Error(err.Error())
				return WrapExitError(ExitFailure, "migration rollback failed", err)
			}

			var b strings.Builder
			for _, a := range result.RolledBack {
				fmt.Fprintf(&b, "rolled back %d %s\n", a.Version, a.Name)
			}
			fmt.Fprintf(&b, "current version: %d\n", result.CurrentVersion)
			b.WriteString(env.planSuffix())
			return env.formatter.SuccessText(b.String(), result)
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back (default 1)")
	cmd.Flags().BoolVar(&all, "all", false, "roll back every migration")
	return cmd
}

// migrateEnv bundles everything a migrate run needs.
type migrateEnv struct {
	formatter *OutputFormatter
	runner    *migrate.Runner
	builder   migrate.SchemaBuilder
	recorder  *migrate.Recorder // set in dry-run mode
	store     *store.Store      // set in real mode
}

func (e *migrateEnv) close() {
	if e.store != nil {
		e.store.Close()
	}
}

// planSuffix renders the recorded plan after a dry run.
func (e *migrateEnv) planSuffix() string {
	if e.recorder == nil {
		return ""
	}
	plan := e.recorder.Render()
	if plan == "" {
		return "plan: no operations\n"
	}
	return "plan:\n" + plan
}

// setupMigrateEnv loads the schema and migration set and picks the
// SchemaBuilder: a recorder for dry runs, a live applier over SQLite
// adapters otherwise.
func setupMigrateEnv(rootOpts *RootOptions, opts *MigrateOptions, cmd *cobra.Command) (*migrateEnv, error) {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	logLevel := slog.LevelWarn
	if rootOpts.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))

	s, err := schema.Load(opts.SchemaPath)
	if err != nil {
		formatter.Error(err.Error())
		return nil, WrapExitError(ExitCommandError, "failed to load schema", err)
	}

	defs, err := migrate.LoadDir(opts.MigrationsDir, log)
	if err != nil {
		formatter.Error(err.Error())
		return nil, WrapExitError(ExitCommandError, "failed to load migrations", err)
	}
	formatter.VerboseLog("Loaded %d migration(s) from %s", len(defs), opts.MigrationsDir)

	runner, err := migrate.NewRunner(defs, migrate.WithLogger(log))
	if err != nil {
		formatter.Error(err.Error())
		return nil, WrapExitError(ExitFailure, "invalid migration set", err)
	}

	env := &migrateEnv{formatter: formatter, runner: runner}

	if opts.DryRun {
		env.recorder = migrate.NewRecorder(log)
		env.builder = env.recorder
		return env, nil
	}

	if opts.DBPath == "" {
		err := fmt.Errorf("--db is required unless --dry-run is set")
		formatter.Error(err.Error())
		return nil, WrapExitError(ExitCommandError, "missing database path", err)
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		formatter.Error(err.Error())
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	adapters := make(map[string]storage.Adapter)
	for _, name := range s.TableNames() {
		t, err := s.Table(name)
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to resolve table", err)
		}
		adapter, err := st.Adapter(t.Name, t.Physical(), storage.IDSequential)
		if err != nil {
			st.Close()
			formatter.Error(err.Error())
			return nil, WrapExitError(ExitCommandError, "failed to bind adapter", err)
		}
		adapters[name] = adapter
	}

	env.store = st
	env.builder = migrate.NewApplier(s, adapters, log)
	return env, nil
}
