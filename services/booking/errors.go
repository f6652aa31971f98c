package booking

import (
	"errors"
	"fmt"

	"vendly/models"
)

// TransitionError reports a lifecycle operation attempted from a state whose
// guard does not allow it. Nothing is mutated.
type TransitionError struct {
	From models.BookingStatus
	Op   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s a %s booking", e.Op, e.From)
}

// IsInvalidTransition reports whether err is a TransitionError.
func IsInvalidTransition(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// AuthorizationError reports an actor not permitted to perform the action.
type AuthorizationError struct {
	Actor  models.Actor
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s %s is not permitted to %s", e.Actor.Role, e.Actor.ID, e.Action)
}

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// ErrInsufficientNotice is returned when a reschedule is requested with less
// than the required notice before the scheduled time.
var ErrInsufficientNotice = errors.New("insufficient notice for reschedule")
