// Package cli provides dataset operation commands.
package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/synthlab/synthlink/internal/progress"
)

// newDatasetCmd creates the 'dataset' command group.
func newDatasetCmd() *cobra.Command {
	datasetCmd := &cobra.Command{
		Use:   "dataset",
		Short: "Dataset operations (upload)",
		Long:  `Commands for managing datasets on the synthesis service.`,
	}

	datasetCmd.AddCommand(newDatasetUploadCmd())

	return datasetCmd
}

// newDatasetUploadCmd creates the 'dataset upload' command.
func newDatasetUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a tabular dataset",
		Long: `Upload a CSV dataset to the synthesis service. The returned dataset ID
is what 'synthlink run --dataset' expects.

Example:
  synthlink dataset upload customers.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			filePath := args[0]

			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}

			ctx := GetContext()

			logger.Info().Str("file", filepath.Base(filePath)).Msg("Uploading dataset")

			reporter := progress.NewCLIReporter()
			ds, err := apiClient.UploadDataset(ctx, filePath, func(r io.Reader, size int64) io.Reader {
				reporter.Start(size, "Uploading "+filepath.Base(filePath))
				return progress.NewReader(r, reporter)
			})
			reporter.Finish()
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			fmt.Printf("Uploaded: dataset %s (%d rows, %d columns)\n", ds.DatasetID, ds.Rows, ds.Columns)
			return nil
		},
	}

	return cmd
}
