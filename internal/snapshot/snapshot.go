// Package snapshot holds the resolved view of the host's listening
// endpoints: one immutable Snapshot per resolution pass.
package snapshot

import (
	"fmt"
	"net"
	"sort"
	"time"

	"github.com/kavaltui/kaval/internal/catalog"
	"github.com/kavaltui/kaval/internal/scan"
)

// ProcInfo is the process side of an Endpoint.
type ProcInfo struct {
	Name    string
	Cmdline string
	User    string
	CPU     float64       // percent
	RSS     uint64        // resident memory in bytes
	Uptime  time.Duration // age at the snapshot's capture time
}

// Endpoint is one listening socket joined with its owning process. Proc is
// nil when the process could not be resolved; the socket is still a real
// finding and keeps its place in the snapshot.
type Endpoint struct {
	Protocol scan.Protocol
	Addr     string
	Port     int
	PID      int
	Proc     *ProcInfo
	Service  catalog.Service
}

// Key uniquely identifies an Endpoint within one snapshot and is used to
// follow the same logical endpoint across snapshots.
type Key struct {
	Protocol scan.Protocol
	Port     int
	PID      int
}

// Key returns the endpoint's identity triple.
func (e Endpoint) Key() Key {
	return Key{Protocol: e.Protocol, Port: e.Port, PID: e.PID}
}

// ProcessName returns the display name of the owning process, "?" when it
// could not be resolved.
func (e Endpoint) ProcessName() string {
	if e.Proc == nil {
		return "?"
	}
	return e.Proc.Name
}

// CPU returns the owning process's cpu percentage, 0 when unresolved.
func (e Endpoint) CPU() float64 {
	if e.Proc == nil {
		return 0
	}
	return e.Proc.CPU
}

// RSS returns the owning process's resident memory in bytes, 0 when
// unresolved.
func (e Endpoint) RSS() uint64 {
	if e.Proc == nil {
		return 0
	}
	return e.Proc.RSS
}

// Uptime returns the owning process's age at capture time, 0 when
// unresolved.
func (e Endpoint) Uptime() time.Duration {
	if e.Proc == nil {
		return 0
	}
	return e.Proc.Uptime
}

// String returns a human-readable representation of the endpoint.
func (e Endpoint) String() string {
	return fmt.Sprintf("%d/%s (PID %d, %s)", e.Port, e.Protocol, e.PID, e.ProcessName())
}

// AddrDisplay formats the local address: "*:port" for unspecified
// addresses, "127…:port" for IPv4 loopback, "addr:port" otherwise.
func (e Endpoint) AddrDisplay() string {
	ip := net.ParseIP(e.Addr)
	switch {
	case e.Addr == "" || (ip != nil && ip.IsUnspecified()):
		return fmt.Sprintf("*:%d", e.Port)
	case ip != nil && ip.To4() != nil && ip.IsLoopback():
		return fmt.Sprintf("127…:%d", e.Port)
	default:
		return fmt.Sprintf("%s:%d", e.Addr, e.Port)
	}
}

// MemoryDisplay formats resident memory as "N MB", switching to "N.N GB"
// at 1024 MB.
func (e Endpoint) MemoryDisplay() string {
	mb := float64(e.RSS()) / (1 << 20)
	if mb >= 1024 {
		return fmt.Sprintf("%.1f GB", mb/1024)
	}
	return fmt.Sprintf("%.0f MB", mb)
}

// UptimeDisplay formats process uptime in a compact form.
func (e Endpoint) UptimeDisplay() string {
	secs := int64(e.Uptime() / time.Second)
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	default:
		return fmt.Sprintf("%dd %dh", secs/86400, (secs%86400)/3600)
	}
}

// Snapshot is the result of one resolution pass: endpoints sorted by port,
// captured at Taken. A Snapshot is never modified after construction;
// consumers replace it wholesale with the next one.
type Snapshot struct {
	Taken     time.Time
	Endpoints []Endpoint
}

// ByPort returns the endpoints listening on the given port, in snapshot
// order.
func (s *Snapshot) ByPort(port int) []Endpoint {
	var matched []Endpoint
	for _, e := range s.Endpoints {
		if e.Port == port {
			matched = append(matched, e)
		}
	}
	return matched
}

// EventType describes what happened to a listening port between two
// snapshots.
type EventType string

const (
	EventOpen  EventType = "open"
	EventClose EventType = "close"
)

// Event represents a single port open or close observation.
type Event struct {
	Type     EventType
	Port     int
	Protocol scan.Protocol
	Process  string
}

// Diff compares two snapshots and returns events for ports that opened or
// closed, keyed by (port, protocol) so an owner change alone is not an
// event. A nil prev treats everything in next as newly opened.
func Diff(prev, next *Snapshot) []Event {
	type portKey struct {
		Port     int
		Protocol scan.Protocol
	}

	prevMap := make(map[portKey]Endpoint)
	if prev != nil {
		for _, e := range prev.Endpoints {
			prevMap[portKey{e.Port, e.Protocol}] = e
		}
	}
	nextMap := make(map[portKey]Endpoint)
	if next != nil {
		for _, e := range next.Endpoints {
			nextMap[portKey{e.Port, e.Protocol}] = e
		}
	}

	var events []Event
	for key, e := range nextMap {
		if _, existed := prevMap[key]; !existed {
			events = append(events, Event{
				Type:     EventOpen,
				Port:     e.Port,
				Protocol: e.Protocol,
				Process:  e.ProcessName(),
			})
		}
	}
	for key, e := range prevMap {
		if _, exists := nextMap[key]; !exists {
			events = append(events, Event{
				Type:     EventClose,
				Port:     e.Port,
				Protocol: e.Protocol,
				Process:  e.ProcessName(),
			})
		}
	}

	// Sort events by port for deterministic output.
	sort.Slice(events, func(i, j int) bool {
		if events[i].Port != events[j].Port {
			return events[i].Port < events[j].Port
		}
		return events[i].Type < events[j].Type
	})

	return events
}
