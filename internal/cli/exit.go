package cli

import "errors"

// Exit codes for one-shot commands. The distinct codes let scripts tell
// "nothing there" from "could not signal".
const (
	ExitOK         = 0
	ExitError      = 1
	ExitNotFound   = 2
	ExitKillFailed = 3
)

// exitError carries a process exit code alongside an optional message. An
// empty message means the command already printed its result and the
// error exists only to set the code.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var xe *exitError
	if errors.As(err, &xe) {
		return xe.code
	}
	return ExitError
}
