// Package errors provides coded errors for the boundaries around the race
// engine: card loading, storage and replays.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Card and configuration errors
	CodeInvalidConfig Code = "INVALID_CONFIG"
	CodeInvalidCard   Code = "INVALID_CARD"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"

	// Replay errors
	CodeReplayMismatch Code = "REPLAY_MISMATCH"
)

// ExitCode maps a code to the process exit status of the command.
func (c Code) ExitCode() int {
	switch c {
	case CodeInvalidConfig, CodeInvalidCard:
		return 2
	case CodeNotFound:
		return 3
	case CodeReplayMismatch:
		return 4
	default:
		return 1
	}
}
