// Package cli provides job operation commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synthlab/synthlink/internal/models"
	"github.com/synthlab/synthlink/internal/poller"
)

// newJobsCmd creates the 'jobs' command group.
func newJobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Training job operations (status, watch)",
		Long:  `Commands for inspecting training jobs on the synthesis service.`,
	}

	jobsCmd.AddCommand(newJobsStatusCmd())
	jobsCmd.AddCommand(newJobsWatchCmd())

	return jobsCmd
}

// newJobsStatusCmd creates the 'jobs status' command.
func newJobsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the current status of a training job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}

			st, err := apiClient.GetJobStatus(GetContext(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch status: %w", err)
			}

			fmt.Printf("Job:     %s\n", args[0])
			fmt.Printf("Status:  %s\n", st.Status)
			if st.Percent != nil {
				fmt.Printf("Percent: %.1f%%\n", *st.Percent)
			}
			if st.Message != "" {
				fmt.Printf("Message: %s\n", st.Message)
			}
			return nil
		},
	}
}

// newJobsWatchCmd creates the 'jobs watch' command.
func newJobsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Poll a training job until it reaches a terminal state",
		Long: `Poll a training job's status until it completes or fails.

Example:
  synthlink jobs watch j-1138`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			jobID := args[0]

			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := GetContext()

			outcome, err := poller.Poll(ctx, poller.Options{
				JobID:     jobID,
				Interval:  cfg.PollInterval(),
				MaxErrors: cfg.Polling.MaxErrors,
				Fetch: func(ctx2 context.Context) (*models.JobStatus, error) {
					return apiClient.GetJobStatus(ctx2, jobID)
				},
				OnTick: func(percent int, status string, raw *models.JobStatus) {
					logger.Info().Str("job", jobID).Str("status", status).Int("percent", percent).Msg("poll")
				},
				Log: logger.Debugf,
			})
			if err != nil {
				return err
			}
			if outcome == poller.OutcomeAborted {
				fmt.Println("Watch cancelled")
				return nil
			}

			fmt.Printf("Job %s completed\n", jobID)
			return nil
		},
	}
}
