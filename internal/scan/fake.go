package scan

import "context"

// FakeEnumerator returns canned records for testing.
type FakeEnumerator struct {
	Sockets    []SocketRecord
	Procs      map[int]ProcRecord
	SocketsErr error
	ProcsErr   error
}

// ListeningSockets returns the pre-configured sockets or error.
func (f *FakeEnumerator) ListeningSockets(_ context.Context) ([]SocketRecord, error) {
	if f.SocketsErr != nil {
		return nil, f.SocketsErr
	}
	return f.Sockets, nil
}

// Processes returns the pre-configured process table or error.
func (f *FakeEnumerator) Processes(_ context.Context) (map[int]ProcRecord, error) {
	if f.ProcsErr != nil {
		return nil, f.ProcsErr
	}
	return f.Procs, nil
}
