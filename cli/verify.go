package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/frcbot/buttonmap"
	"go.viam.com/frcbot/operation"
	"go.viam.com/frcbot/tasks"
)

// VerifyAction checks the button map file given as the first argument. Every conflict is
// reported, not only the first.
func VerifyAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("verify needs a button map file")
	}
	// tasks are never run here, but every macro in the file needs one
	macros := map[operation.MacroOperation]tasks.Factory{}
	for _, op := range operation.AllMacroOperations() {
		macros[op] = func() tasks.Task { return tasks.NewSequentialTask() }
	}
	schema, err := buttonmap.ReadSchemaFile(path, macros)
	if err != nil {
		return err
	}

	mapping, verifyErr := buttonmap.Build(schema, buttonmap.VerifyOptions{Logger: newLogger(c, "verify")})
	if mapping != nil {
		if c.Bool(flagPrint) {
			if err := mapping.Print(c.App.Writer); err != nil {
				return err
			}
		}
		if c.Bool(flagTable) {
			printf(c.App.Writer, "%s", mappingTable(mapping))
		}
	}
	if verifyErr != nil {
		banner := color.New(color.FgRed, color.Bold)
		//nolint:errcheck
		banner.Fprintf(c.App.ErrWriter, "CONFLICTS in %s\n", path)
		for _, conflict := range multierr.Errors(verifyErr) {
			printf(c.App.ErrWriter, "  %s", conflict)
		}
		return errors.Wrapf(buttonmap.ErrConflict, "%s", path)
	}
	//nolint:errcheck
	color.New(color.FgGreen, color.Bold).Fprintf(c.App.Writer, "OK %s: %d bindings\n", path, len(mapping.Rows()))
	return nil
}

func mappingTable(mapping *buttonmap.Mapping) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Control", "Shifts", "Kind", "Operation", "Range"})
	for i, row := range mapping.Rows() {
		rangeString := ""
		if row.Range != nil {
			rangeString = row.Range.String()
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%d", i+1),
			row.Combination.String(),
			row.Shifts.String(),
			row.Kind.String(),
			row.Name,
			rangeString,
		})
	}
	return t.Render()
}
