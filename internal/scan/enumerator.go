package scan

import (
	"context"
	"fmt"
	"syscall"
	"time"

	gopsnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// SysEnumerator implements Enumerator on the host's socket and process
// tables.
type SysEnumerator struct{}

// ListeningSockets returns TCP sockets in LISTEN state and unconnected UDP
// sockets, across both IP families.
func (SysEnumerator) ListeningSockets(ctx context.Context) ([]SocketRecord, error) {
	conns, err := gopsnet.ConnectionsWithContext(ctx, "inet")
	if err != nil {
		return nil, fmt.Errorf("failed to list sockets: %w", err)
	}
	records := make([]SocketRecord, 0, len(conns))
	for _, c := range conns {
		rec, ok := socketRecord(c)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// socketRecord converts one OS connection entry, reporting whether it is a
// listening endpoint at all. UDP has no listen state, so every unconnected
// UDP socket counts.
func socketRecord(c gopsnet.ConnectionStat) (SocketRecord, bool) {
	var proto Protocol
	switch c.Type {
	case syscall.SOCK_STREAM:
		if c.Status != "LISTEN" {
			return SocketRecord{}, false
		}
		proto = TCP
	case syscall.SOCK_DGRAM:
		if c.Raddr.Port != 0 {
			return SocketRecord{}, false
		}
		proto = UDP
	default:
		return SocketRecord{}, false
	}
	return SocketRecord{
		Protocol: proto,
		Addr:     c.Laddr.IP,
		Port:     int(c.Laddr.Port),
		PID:      int(c.Pid),
	}, true
}

// Processes returns the process table keyed by pid. A process that cannot
// even be named is omitted; for the rest, fields the OS withholds keep
// their zero values rather than failing the call.
func (SysEnumerator) Processes(ctx context.Context) (map[int]ProcRecord, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	table := make(map[int]ProcRecord, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		rec := ProcRecord{PID: int(p.Pid), Name: name}
		rec.Cmdline, _ = p.CmdlineWithContext(ctx)
		rec.User, _ = p.UsernameWithContext(ctx)
		rec.CPU, _ = p.CPUPercentWithContext(ctx)
		if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
			rec.RSS = mem.RSS
		}
		if created, err := p.CreateTimeWithContext(ctx); err == nil && created > 0 {
			rec.Started = time.UnixMilli(created)
		}
		table[int(p.Pid)] = rec
	}
	return table, nil
}
