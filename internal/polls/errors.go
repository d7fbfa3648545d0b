package polls

import (
	"errors"
	"fmt"
)

// Validation reasons. These are the only failures surfaced to end users.
var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrPollInactive   = errors.New("poll is closed")
	ErrInvalidChoice  = errors.New("choice must be yea, nay or abstain")
	ErrMissingID      = errors.New("poll id and voter id are required")
	ErrRepNotFound    = errors.New("representative not found")
	ErrInvalidScope   = errors.New("scope must be state or nation")
	ErrInvalidChamber = errors.New("chamber must be house or senate")
)

// errLostRace marks an attempt that lost the (poll_id, voter_id) insert race
var errLostRace = errors.New("lost race on poll vote")

// ValidationError rejects a request before any mutation
type ValidationError struct {
	Reason error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

func invalid(reason error, detail string) error {
	return &ValidationError{Reason: reason, Detail: detail}
}

// IsValidation reports whether err carries a user-facing validation reason
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
