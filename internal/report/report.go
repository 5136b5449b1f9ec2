// Package report renders one snapshot for non-interactive output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/kavaltui/kaval/internal/snapshot"
)

// WriteTable renders the snapshot as a fixed-width table, one row per
// endpoint in snapshot order.
func WriteTable(w io.Writer, snap *snapshot.Snapshot) error {
	if len(snap.Endpoints) == 0 {
		_, err := fmt.Fprintln(w, "No listening ports found.")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-7s %-5s %-15s %-18s %-7s %-7s %-9s %s\n",
		"PORT", "PROTO", "PROCESS", "SERVICE", "PID", "CPU", "MEM", "UPTIME")
	b.WriteString(strings.Repeat("─", 80))
	b.WriteString("\n")
	for _, e := range snap.Endpoints {
		service := e.Service.Label
		if service == "" {
			service = "—"
		}
		fmt.Fprintf(&b, "%-7d %-5s %-15s %-18s %-7d %-7s %-9s %s\n",
			e.Port,
			e.Protocol,
			truncate(e.ProcessName(), 15),
			service,
			e.PID,
			fmt.Sprintf("%.1f%%", e.CPU()),
			e.MemoryDisplay(),
			e.UptimeDisplay(),
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON renders the snapshot as a JSON array. Field names are part of
// the tool's contract and must stay stable; service is null when no
// catalog rule matched. An empty snapshot yields an empty array.
func WriteJSON(w io.Writer, snap *snapshot.Snapshot) error {
	type jsonEndpoint struct {
		Port       int     `json:"port"`
		Protocol   string  `json:"protocol"`
		Process    string  `json:"process"`
		Service    *string `json:"service"`
		PID        int     `json:"pid"`
		CPU        float64 `json:"cpu"`
		MemoryMB   float64 `json:"memory_mb"`
		UptimeSecs int64   `json:"uptime_secs"`
	}

	out := make([]jsonEndpoint, len(snap.Endpoints))
	for i, e := range snap.Endpoints {
		entry := jsonEndpoint{
			Port:       e.Port,
			Protocol:   string(e.Protocol),
			Process:    e.ProcessName(),
			PID:        e.PID,
			CPU:        round1(e.CPU()),
			MemoryMB:   round1(float64(e.RSS()) / (1 << 20)),
			UptimeSecs: int64(e.Uptime() / time.Second),
		}
		if e.Service.Label != "" {
			label := e.Service.Label
			entry.Service = &label
		}
		out[i] = entry
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCheck reports every endpoint on one port, or a not-found line. The
// boolean reports whether anything was listening there.
func WriteCheck(w io.Writer, snap *snapshot.Snapshot, port int) (bool, error) {
	matched := snap.ByPort(port)
	if len(matched) == 0 {
		_, err := fmt.Fprintf(w, "Nothing listening on port %d\n", port)
		return false, err
	}

	var b strings.Builder
	for _, e := range matched {
		fmt.Fprintf(&b, "Port %d (%s) — %s (PID %d)", e.Port, e.Protocol, e.ProcessName(), e.PID)
		if e.Service.Label != "" {
			fmt.Fprintf(&b, " [%s]", e.Service.Label)
		}
		b.WriteString("\n")
		if e.Proc != nil && e.Proc.Cmdline != "" {
			fmt.Fprintf(&b, "  Command: %s\n", e.Proc.Cmdline)
		}
		fmt.Fprintf(&b, "  CPU: %.1f%%  Memory: %s  Uptime: %s\n",
			e.CPU(), e.MemoryDisplay(), e.UptimeDisplay())
	}
	_, err := io.WriteString(w, b.String())
	return true, err
}

// round1 keeps one decimal, matching the table's precision.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// truncate shortens s to max runes, ending with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
