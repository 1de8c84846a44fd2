package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tabular/internal/schema"
)

// ValidationResult holds schema validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Tables []string `json:"tables,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-file>",
		Short: "Validate a CUE schema definition",
		Long: `Validate a CUE schema definition without opening any storage.

Checks that every table declares a non-empty, duplicate-free column list
and reports the declared tables.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := schema.Load(path)
	if err != nil {
		formatter.Error(err.Error())
		return WrapExitError(ExitFailure, "schema validation failed", err)
	}

	names := s.TableNames()
	formatter.VerboseLog("Loaded %d table(s) from %s", len(names), path)

	text := fmt.Sprintf("Schema OK: %d table(s): %s\n", len(names), strings.Join(names, ", "))
	return formatter.SuccessText(text, ValidationResult{Valid: true, Tables: names})
}
