package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kavaltui/kaval/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check <port>",
	Short: "Show what is listening on a port",
	Long:  "Report the process and service occupying the given port.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	portNum, err := parsePort(args[0])
	if err != nil {
		return err
	}

	snap, err := newResolver().Resolve(context.Background())
	if err != nil {
		return fmt.Errorf("failed to scan ports: %w", err)
	}

	found, err := report.WriteCheck(os.Stdout, snap, portNum)
	if err != nil {
		return err
	}
	if !found {
		// The not-found line is already printed; only the exit code is left.
		return &exitError{code: ExitNotFound}
	}
	return nil
}

// parsePort validates user input before any enumeration happens.
func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 65535 {
		return 0, fmt.Errorf("invalid port %q: must be an integer between 0 and 65535", s)
	}
	return n, nil
}
