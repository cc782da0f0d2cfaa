package apperrors

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrContractViolation  = errors.New("contract violation")
	ErrViewportEmpty      = errors.New("viewport has no live instance")
	ErrViewportLive       = errors.New("viewport already has a live instance")
	ErrRejected           = errors.New("rejected by backend")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrNoFocus            = errors.New("no focal patient selected")
	ErrSuperseded         = errors.New("superseded by a newer request")
)

// Rejection is a business-rule refusal reported by the backend. Message is
// human-readable and shown to the user verbatim.
type Rejection struct {
	Message string
}

func (r *Rejection) Error() string { return r.Message }

func (r *Rejection) Is(target error) bool { return target == ErrRejected }

func Reject(message string) error {
	return &Rejection{Message: message}
}

// UserMessage returns the text a notification should show for err.
func UserMessage(err error, fallback string) string {
	var rej *Rejection
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
