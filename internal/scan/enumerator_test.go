package scan

import (
	"syscall"
	"testing"

	gopsnet "github.com/shirou/gopsutil/v4/net"
)

func TestSocketRecord(t *testing.T) {
	tests := []struct {
		name string
		conn gopsnet.ConnectionStat
		want SocketRecord
		keep bool
	}{
		{
			name: "tcp listener",
			conn: gopsnet.ConnectionStat{
				Type:   syscall.SOCK_STREAM,
				Status: "LISTEN",
				Laddr:  gopsnet.Addr{IP: "127.0.0.1", Port: 5432},
				Pid:    100,
			},
			want: SocketRecord{Protocol: TCP, Addr: "127.0.0.1", Port: 5432, PID: 100},
			keep: true,
		},
		{
			name: "tcp established connection skipped",
			conn: gopsnet.ConnectionStat{
				Type:   syscall.SOCK_STREAM,
				Status: "ESTABLISHED",
				Laddr:  gopsnet.Addr{IP: "192.168.1.5", Port: 54122},
				Raddr:  gopsnet.Addr{IP: "140.82.112.3", Port: 443},
				Pid:    321,
			},
			keep: false,
		},
		{
			name: "udp socket has no listen state",
			conn: gopsnet.ConnectionStat{
				Type:  syscall.SOCK_DGRAM,
				Laddr: gopsnet.Addr{IP: "0.0.0.0", Port: 5353},
				Pid:   200,
			},
			want: SocketRecord{Protocol: UDP, Addr: "0.0.0.0", Port: 5353, PID: 200},
			keep: true,
		},
		{
			name: "connected udp socket skipped",
			conn: gopsnet.ConnectionStat{
				Type:  syscall.SOCK_DGRAM,
				Laddr: gopsnet.Addr{IP: "192.168.1.5", Port: 51000},
				Raddr: gopsnet.Addr{IP: "8.8.8.8", Port: 53},
				Pid:   200,
			},
			keep: false,
		},
		{
			name: "raw socket skipped",
			conn: gopsnet.ConnectionStat{
				Type:  syscall.SOCK_RAW,
				Laddr: gopsnet.Addr{IP: "0.0.0.0", Port: 0},
			},
			keep: false,
		},
		{
			name: "listener with hidden owner kept",
			conn: gopsnet.ConnectionStat{
				Type:   syscall.SOCK_STREAM,
				Status: "LISTEN",
				Laddr:  gopsnet.Addr{IP: "::", Port: 8080},
			},
			want: SocketRecord{Protocol: TCP, Addr: "::", Port: 8080, PID: 0},
			keep: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, keep := socketRecord(tt.conn)
			if keep != tt.keep {
				t.Fatalf("keep = %v, want %v", keep, tt.keep)
			}
			if keep && got != tt.want {
				t.Errorf("record = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSocketRecordString(t *testing.T) {
	rec := SocketRecord{Protocol: TCP, Addr: "127.0.0.1", Port: 5432, PID: 100}
	if got, want := rec.String(), "5432/TCP (PID 100)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
