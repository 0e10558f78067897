package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var groupOrder = []string{dossier.GroupDossier, dossier.GroupUser, dossier.GroupChamps}

func ColumnsCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "columns [procedure id or path]",
		Short: "List the columns a listing or an export can show",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, release, err := open()
			if err != nil {
				return err
			}
			defer release()

			ctx := cmd.Context()
			var procedureID *string
			if len(args) == 1 {
				procedure, err := findProcedure(ctx, env.Repository, args[0])
				if err != nil {
					return err
				}
				procedureID = &procedure.ID
			}

			cols, err := env.Repository.Preference.Columns(ctx, procedureID)
			if err != nil {
				return err
			}
			return printColumns(cmd.OutOrStdout(), cols)
		},
	}
}

func printColumns(w io.Writer, cols dossier.Columns) error {
	groupColor := color.New(color.FgHiBlue, color.Bold)

	for _, group := range groupOrder {
		defs, ok := cols[group]
		if !ok {
			continue
		}
		fmt.Fprintln(w, groupColor.Sprint(group))

		keys := make([]string, 0, len(defs))
		for k := range defs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, k := range keys {
			def := defs[k]
			sortable := ""
			if def.Sortable {
				sortable = "sortable"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", k, def.Label, sortable)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
