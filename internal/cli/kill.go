package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kavaltui/kaval/internal/process"
	"github.com/kavaltui/kaval/internal/snapshot"
)

var forceKill bool

var killCmd = &cobra.Command{
	Use:   "kill <port>",
	Short: "Kill the process listening on a port",
	Long:  "Send SIGTERM (or SIGKILL with --force) to whatever is listening on the given port.",
	Args:  cobra.ExactArgs(1),
	RunE:  runKill,
}

func init() {
	killCmd.Flags().BoolVarP(&forceKill, "force", "f", false, "Send SIGKILL instead of SIGTERM")
}

func runKill(cmd *cobra.Command, args []string) error {
	portNum, err := parsePort(args[0])
	if err != nil {
		return err
	}

	snap, err := newResolver().Resolve(context.Background())
	if err != nil {
		return fmt.Errorf("failed to scan ports: %w", err)
	}

	return killListeners(os.Stdout, process.SysKiller{}, snap, portNum, forceKill)
}

// killListeners signals every distinct process listening on the port. A
// silent port sends no signal at all and reports not-found through the
// exit code.
func killListeners(w io.Writer, killer process.Killer, snap *snapshot.Snapshot, port int, force bool) error {
	matched := snap.ByPort(port)
	if len(matched) == 0 {
		fmt.Fprintf(w, "Nothing listening on port %d\n", port)
		return &exitError{code: ExitNotFound}
	}

	signaled := make(map[int]bool)
	for _, e := range matched {
		if signaled[e.PID] {
			continue
		}
		signaled[e.PID] = true

		fmt.Fprintf(w, "Killing %s (PID %d) on port %d...\n", e.ProcessName(), e.PID, e.Port)
		if err := killer.Terminate(e.PID, force); err != nil {
			return &exitError{
				code: ExitKillFailed,
				msg:  fmt.Sprintf("failed to kill PID %d: %v", e.PID, err),
			}
		}
		if force {
			fmt.Fprintf(w, "Force killed %s (PID %d)\n", e.ProcessName(), e.PID)
		} else {
			fmt.Fprintf(w, "Killed %s (PID %d)\n", e.ProcessName(), e.PID)
		}
	}
	return nil
}
