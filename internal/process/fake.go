package process

// KillCall records one Terminate invocation.
type KillCall struct {
	PID   int
	Force bool
}

// RecordingKiller captures Terminate calls for testing.
type RecordingKiller struct {
	Calls []KillCall
	Err   error
}

// Terminate records the call and returns the pre-configured error.
func (k *RecordingKiller) Terminate(pid int, force bool) error {
	k.Calls = append(k.Calls, KillCall{PID: pid, Force: force})
	return k.Err
}
