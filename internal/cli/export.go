// Package cli provides artifact export commands.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/synthlab/synthlink/internal/export"
)

// newExportCmd creates the 'export' command for re-exporting a saved JSON
// artifact in another format.
func newExportCmd() *cobra.Command {
	var (
		outputPath string
		formatName string
	)

	cmd := &cobra.Command{
		Use:   "export <artifact.json>",
		Short: "Re-export a saved generation artifact",
		Long: `Convert a JSON artifact written by 'synthlink run -o' into another format.

Example:
  synthlink export result.json --format csv -o result.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			artifact, err := export.LoadArtifact(args[0])
			if err != nil {
				return err
			}

			out := outputPath
			if out == "" {
				out = strings.TrimSuffix(args[0], ".json") + "." + formatName
			}

			if err := export.WriteArtifact(artifact, out, format); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%d records)\n", out, len(artifact.SyntheticData))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: input name with new extension)")
	cmd.Flags().StringVar(&formatName, "format", "csv", "Output format: json or csv")

	return cmd
}
