package application

import "fmt"

var (
	ErrUnknownProvider   = fmt.Errorf("unknown wallet provider")
	ErrNotConnected      = fmt.Errorf("no connected wallet session")
	ErrNoEmbeddedSession = fmt.Errorf("operation requires an embedded wallet session")
	// ErrConnectionFailed wraps any failure to establish a session, both
	// provider build and initial roster errors.
	ErrConnectionFailed = fmt.Errorf("failed to connect wallet")
)
