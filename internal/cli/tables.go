package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tabular/internal/schema"
)

// TableInfo describes one declared table for output.
type TableInfo struct {
	Name        string   `json:"name"`
	Columns     []string `json:"columns"`
	StorageName string   `json:"storage_name,omitempty"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tables <schema-file>",
		Short:         "List the tables a schema declares",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runTables(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := schema.Load(path)
	if err != nil {
		formatter.Error(err.Error())
		return WrapExitError(ExitCommandError, "failed to load schema", err)
	}

	var infos []TableInfo
	var b strings.Builder
	for _, name := range s.TableNames() {
		t, err := s.Table(name)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to resolve table", err)
		}
		infos = append(infos, TableInfo{
			Name:        t.Name,
			Columns:     t.Columns,
			StorageName: t.StorageName,
		})
		fmt.Fprintf(&b, "%s (%s)", t.Name, strings.Join(t.Columns, ", "))
		if t.StorageName != "" {
			fmt.Fprintf(&b, " -> %s", t.StorageName)
		}
		b.WriteByte('\n')
	}

	return formatter.SuccessText(b.String(), infos)
}
