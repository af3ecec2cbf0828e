package config

import (
	"errors"
	"fmt"
	"io"
)

// Exit statuses of the proof-of-sus CLI, following sysexits(3) where one
// applies.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 64 // EX_USAGE
	ExitConfig  = 78 // EX_CONFIG
)

var (
	// ErrUsage marks a malformed command line.
	ErrUsage = errors.New("usage: proof-of-sus demo|state")

	// ErrInvalid marks an environment Load refused.
	ErrInvalid = errors.New("invalid configuration")
)

// ExitStatus maps err to the status the CLI exits with.
func ExitStatus(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, ErrInvalid):
		return ExitConfig
	default:
		return ExitFailure
	}
}

// Report writes err to w and returns its exit status. Usage errors are
// printed bare; anything else gets the program name in front.
func Report(w io.Writer, err error) int {
	code := ExitStatus(err)
	switch code {
	case ExitOK:
	case ExitUsage:
		fmt.Fprintln(w, err)
	default:
		fmt.Fprintf(w, "proof-of-sus: %v\n", err)
	}
	return code
}
