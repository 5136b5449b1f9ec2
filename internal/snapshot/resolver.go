package snapshot

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kavaltui/kaval/internal/catalog"
	"github.com/kavaltui/kaval/internal/scan"
)

// Resolver joins enumerator output into classified snapshots.
type Resolver struct {
	enum scan.Enumerator
	cat  *catalog.Catalog
}

// NewResolver creates a Resolver over the given enumerator and catalog.
func NewResolver(enum scan.Enumerator, cat *catalog.Catalog) *Resolver {
	return &Resolver{enum: enum, cat: cat}
}

// Resolve performs one pass: enumerate listening sockets, join each to its
// owning process, classify, and return the snapshot sorted by port. The
// capture timestamp is taken before enumeration begins. A process-table
// failure degrades every endpoint to the unresolved placeholder — sockets
// alone are still a real finding — while a socket enumeration failure
// fails the whole pass.
func (r *Resolver) Resolve(ctx context.Context) (*Snapshot, error) {
	taken := time.Now()

	socks, err := r.enum.ListeningSockets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate listeners: %w", err)
	}
	procs, err := r.enum.Processes(ctx)
	if err != nil {
		procs = nil
	}

	seen := make(map[Key]bool, len(socks))
	endpoints := make([]Endpoint, 0, len(socks))
	for _, s := range socks {
		ep := Endpoint{
			Protocol: s.Protocol,
			Addr:     s.Addr,
			Port:     s.Port,
			PID:      s.PID,
		}
		if seen[ep.Key()] {
			continue
		}
		seen[ep.Key()] = true

		var name, cmdline string
		if p, ok := procs[s.PID]; ok {
			name, cmdline = p.Name, p.Cmdline
			ep.Proc = &ProcInfo{
				Name:    p.Name,
				Cmdline: p.Cmdline,
				User:    p.User,
				CPU:     p.CPU,
				RSS:     p.RSS,
				Uptime:  age(p.Started, taken),
			}
		}
		ep.Service = r.cat.Classify(s.Port, name, cmdline)
		endpoints = append(endpoints, ep)
	}

	sort.SliceStable(endpoints, func(i, j int) bool {
		return endpoints[i].Port < endpoints[j].Port
	})

	return &Snapshot{Taken: taken, Endpoints: endpoints}, nil
}

// age derives process uptime at capture time, clamped at zero.
func age(started, taken time.Time) time.Duration {
	if started.IsZero() || started.After(taken) {
		return 0
	}
	return taken.Sub(started).Truncate(time.Second)
}
