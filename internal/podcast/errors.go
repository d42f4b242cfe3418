package podcast

import (
	"errors"
	"fmt"
)

// Kind classifies a generation failure so callers can map it to the right
// surface behavior (HTTP status, exit code) without string matching.
type Kind string

const (
	// KindInput covers caller mistakes: empty transcript, more speaker
	// labels than configured voices. Not retryable.
	KindInput Kind = "input"

	// KindBackend covers TTS call failures: auth, quota, network.
	KindBackend Kind = "backend"

	// KindAssembly covers streams that completed without usable audio,
	// distinct from the call itself failing.
	KindAssembly Kind = "assembly"

	// KindConversion covers transcoder failures, including a missing
	// ffmpeg dependency.
	KindConversion Kind = "conversion"
)

// Sentinel causes, matchable with errors.Is through the Error wrapper.
var (
	ErrEmptyTranscript = errors.New("transcript is empty")
	ErrTooManySpeakers = errors.New("transcript references more speakers than configured voices")
)

// Error wraps a generation failure with its Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func inputErr(err error) error      { return &Error{Kind: KindInput, Err: err} }
func backendErr(err error) error    { return &Error{Kind: KindBackend, Err: err} }
func assemblyErr(err error) error   { return &Error{Kind: KindAssembly, Err: err} }
func conversionErr(err error) error { return &Error{Kind: KindConversion, Err: err} }
