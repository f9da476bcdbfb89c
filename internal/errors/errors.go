// Package errors renders command failures for the terminal.
package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/julianstephens/activities/internal/gateway"
	"github.com/julianstephens/activities/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix.
// Known gateway failures get a hint on a second line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n  " + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint suggests what the user can do about err, or returns "".
func Hint(err error) string {
	var netErr net.Error
	var opErr *net.OpError
	switch {
	case stderrors.Is(err, gateway.ErrUnauthorized):
		return "the API rejected the token; run `activities token set` or check ACTIVITIES_TOKEN"
	case stderrors.Is(err, gateway.ErrNotFound):
		return "no activity with that id; run `activities list` to see available ids"
	case stderrors.As(err, &netErr) && netErr.Timeout():
		return "the API did not answer in time; raise --timeout or check the server"
	case stderrors.As(err, &opErr):
		return "could not reach the API; check --api-url or start one with `activities serve`"
	}
	return ""
}

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, gateway.ErrUnauthorized):
		return 3
	case stderrors.Is(err, gateway.ErrNotFound):
		return 4
	}
	return 1
}

// Report logs err and writes its formatted form to w. It returns the exit code.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(w, Format(err))
	return ExitCode(err)
}

// Fatal reports err on stderr and exits with its exit code.
func Fatal(err error) {
	if err != nil {
		os.Exit(Report(os.Stderr, err))
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
