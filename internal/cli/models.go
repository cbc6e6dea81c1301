// Package cli provides model catalog commands.
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/synthlab/synthlink/internal/catalog"
)

// newModelsCmd creates the 'models' command group.
func newModelsCmd() *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Synthesizer model catalog (list, show)",
	}

	modelsCmd.AddCommand(newModelsListCmd())
	modelsCmd.AddCommand(newModelsShowCmd())

	return modelsCmd
}

// newModelsListCmd creates the 'models list' command.
func newModelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available synthesizer models",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLABEL\tDESCRIPTION")
			for _, m := range catalog.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, m.Label, m.Description)
			}
			return w.Flush()
		},
	}
}

// newModelsShowCmd creates the 'models show' command.
func newModelsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a model's tunable parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown model %q, available: %v", args[0], catalog.Names())
			}
			fmt.Printf("%s (%s)\n%s\n\n", m.Label, m.Name, m.Description)
			fmt.Printf("  epochs:     %d-%d (default %d)\n", m.Epochs.Min, m.Epochs.Max, m.Epochs.Default)
			fmt.Printf("  batch size: %d-%d (default %d)\n", m.BatchSize.Min, m.BatchSize.Max, m.BatchSize.Default)
			return nil
		},
	}
}
