package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SeakMengs/DossierFlow/internal/exporter"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func ExportCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [procedure id or path]",
		Short: "Export the dossiers of a procedure to csv or xlsx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatFlag, _ := cmd.Flags().GetString("format")
			dir, _ := cmd.Flags().GetString("dir")
			archive, _ := cmd.Flags().GetBool("archive")

			format, err := dossier.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			env, release, err := open()
			if err != nil {
				return err
			}
			defer release()

			ctx := cmd.Context()
			procedure, err := findProcedure(ctx, env.Repository, args[0])
			if err != nil {
				return err
			}

			cfg := env.Config.Export
			cfg.ArchiveToS3 = archive
			ex := exporter.New(env.Repository, env.S3, env.Config.Minio.BUCKET, cfg, env.Logger)
			out, err := ex.Export(ctx, procedure, format)
			if err != nil {
				return fmt.Errorf("failed to export procedure %s: %w", procedure.ID, err)
			}

			target := filepath.Join(dir, out.FileName)
			if err := os.WriteFile(target, out.Body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s (%d dossiers)\n", color.New(color.FgHiGreen).Sprint("✓ Exported"), target, out.Rows)
			if out.ArchivedAs != "" {
				fmt.Fprintf(w, "  Archived as %s\n", color.New(color.FgCyan).Sprint(out.ArchivedAs))
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", string(dossier.FormatCSV), "export format (csv or xlsx)")
	cmd.Flags().StringP("dir", "d", ".", "directory the file is written to")
	cmd.Flags().Bool("archive", false, "also store the export in the bucket")
	return cmd
}
