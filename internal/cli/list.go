package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kavaltui/kaval/internal/report"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all listening ports",
	Long:  "Print every listening endpoint with its process and recognized service.",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	snap, err := newResolver().Resolve(context.Background())
	if err != nil {
		return fmt.Errorf("failed to scan ports: %w", err)
	}

	if listJSON {
		return report.WriteJSON(os.Stdout, snap)
	}
	return report.WriteTable(os.Stdout, snap)
}
