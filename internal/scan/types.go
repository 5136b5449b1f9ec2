package scan

import (
	"context"
	"fmt"
	"time"
)

// Protocol represents a network protocol.
type Protocol string

const (
	TCP Protocol = "TCP"
	UDP Protocol = "UDP"
)

// SocketRecord is one listening socket as reported by the operating system.
// PID is 0 when the owner could not be determined (typically permissions).
type SocketRecord struct {
	Protocol Protocol
	Addr     string // local address, e.g. "127.0.0.1" or "::"
	Port     int
	PID      int
}

// String returns a human-readable representation of the record.
func (r SocketRecord) String() string {
	return fmt.Sprintf("%d/%s (PID %d)", r.Port, r.Protocol, r.PID)
}

// ProcRecord is one process as reported by the operating system. Fields
// beyond PID and Name are best-effort and keep their zero values when the
// OS refuses access to them.
type ProcRecord struct {
	PID     int
	Name    string
	Cmdline string
	User    string
	CPU     float64   // percent
	RSS     uint64    // resident memory in bytes
	Started time.Time // zero when unknown
}

// Enumerator is the OS capability behind a resolution pass: the current
// listening sockets and the current process table. Either call may omit
// individual records it cannot access; only a whole-call failure returns
// an error.
type Enumerator interface {
	ListeningSockets(ctx context.Context) ([]SocketRecord, error)
	Processes(ctx context.Context) (map[int]ProcRecord, error)
}
