// Package cli provides the run command driving the generation pipeline.
package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/synthlab/synthlink/internal/api"
	"github.com/synthlab/synthlink/internal/catalog"
	"github.com/synthlab/synthlink/internal/constants"
	"github.com/synthlab/synthlink/internal/events"
	"github.com/synthlab/synthlink/internal/export"
	"github.com/synthlab/synthlink/internal/models"
	"github.com/synthlab/synthlink/internal/pipeline"
	"github.com/synthlab/synthlink/internal/progress"
)

// newRunCmd creates the 'run' command.
func newRunCmd() *cobra.Command {
	var (
		modelName  string
		datasetID  string
		filePath   string
		samples    int
		epochs     int
		batchSize  int
		outputPath string
		formatName string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full generation pipeline",
		Long: `Run the four-phase generation pipeline against an uploaded dataset:
preprocessing, training, generation and validation.

Example:
  # Train a CTGAN on dataset d-42 and generate 5000 rows
  synthlink run --model ctgan --dataset d-42 --samples 5000

  # Upload a CSV and run in one step
  synthlink run --model ctgan --file customers.csv --samples 5000

  # Export the result straight to CSV
  synthlink run --model tvae --dataset d-42 --samples 1000 -o out.csv --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			if (datasetID == "") == (filePath == "") {
				return fmt.Errorf("exactly one of --dataset or --file is required")
			}
			if err := catalog.ValidateParams(modelName, epochs, batchSize); err != nil {
				return err
			}
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			if samples <= 0 {
				return fmt.Errorf("--samples must be positive, got %d", samples)
			}
			if samples > constants.MaxSampleCount {
				logger.Warn().Int("requested", samples).Int("cap", constants.MaxSampleCount).
					Msg("sample count exceeds cap, capping")
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := api.NewClient(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create API client: %w", err)
			}

			ctx := GetContext()

			if err := client.Health(ctx); err != nil {
				return fmt.Errorf("service not reachable at %s: %w", cfg.ServiceURL, err)
			}

			if filePath != "" {
				reporter := progress.NewCLIReporter()
				ds, err := client.UploadDataset(ctx, filePath, func(r io.Reader, size int64) io.Reader {
					reporter.Start(size, "Uploading "+filepath.Base(filePath))
					return progress.NewReader(r, reporter)
				})
				reporter.Finish()
				if err != nil {
					return fmt.Errorf("upload failed: %w", err)
				}
				logger.Info().Str("dataset", ds.DatasetID).Int("rows", ds.Rows).Msg("dataset uploaded")
				datasetID = ds.DatasetID
			}

			bus := events.NewEventBus(0)
			driver := pipeline.NewDriver(cfg, client, bus, logger)

			view := progress.NewRunView()
			sub := bus.SubscribeAll()
			viewDone := make(chan struct{})
			go func() {
				defer close(viewDone)
				for ev := range sub {
					switch e := ev.(type) {
					case *events.PhaseChangeEvent:
						view.SetPhase(e.Phase, e.NewStatus, e.Progress)
						view.SetOverall(e.Overall)
						if !view.IsTerminal() {
							logger.Info().Str("phase", string(e.Phase)).
								Str("status", string(e.NewStatus)).Int("overall", e.Overall).Msg("phase")
						}
					case *events.TickEvent:
						view.SetPhase(e.Phase, models.StatusRunning, e.Percent)
						view.SetOverall(e.Overall)
						if !view.IsTerminal() {
							logger.Info().Str("phase", string(e.Phase)).
								Int("percent", e.Percent).Int("overall", e.Overall).Msg("tick")
						}
					case *events.RunCompleteEvent:
						view.SetOverall(100)
					}
				}
			}()

			go func() {
				<-ctx.Done()
				driver.Abort()
			}()

			artifact, runErr := driver.Run(ctx, models.RunParams{
				ModelName: modelName,
				DatasetID: datasetID,
				Samples:   samples,
				Epochs:    epochs,
				BatchSize: batchSize,
			})

			bus.Close()
			<-viewDone
			view.Wait()

			if runErr != nil {
				// Surface the retained diagnostic lines, most recent first
				entries := driver.DebugLog()
				if len(entries) > 0 {
					fmt.Println("\nRun log:")
					for _, e := range entries {
						fmt.Printf("  %s [%s] %s\n", e.Time.Format("15:04:05"), e.Level, e.Message)
					}
				}
				return runErr
			}
			if artifact == nil {
				fmt.Println("Run cancelled")
				return nil
			}

			fmt.Printf("\nGenerated %d synthetic record(s) (job %s)\n",
				len(artifact.SyntheticData), artifact.JobID)

			if outputPath != "" {
				if err := export.WriteArtifact(artifact, outputPath, format); err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelName, "model", "m", "ctgan", "Synthesizer model (see 'synthlink models list')")
	cmd.Flags().StringVarP(&datasetID, "dataset", "d", "", "Dataset ID from 'synthlink dataset upload'")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Upload this CSV first and run against it")
	cmd.Flags().IntVarP(&samples, "samples", "n", 1000, "Number of synthetic records to generate")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "Training epochs (0 = model default)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Training batch size (0 = model default)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the generated records to this file")
	cmd.Flags().StringVar(&formatName, "format", "json", "Output format: json or csv")

	return cmd
}
