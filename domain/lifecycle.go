package domain

import (
	"fmt"
	"strings"
)

// ActualStatus is what the admin observed for the child, independent of the requested type.
type ActualStatus string

const (
	CheckedIn  ActualStatus = "checked-in"
	CheckedOut ActualStatus = "checked-out"
)

func (s ActualStatus) Valid() bool {
	return s == CheckedIn || s == CheckedOut
}

func (s ActualStatus) phrase() string {
	if s == CheckedOut {
		return "checked out from"
	}
	return "checked in to"
}

const DefaultRejectionNote = "Please contact the school office for more information."

// Response is the admin's answer to one pending request.
type Response struct {
	Decision     RequestStatus
	ActualStatus ActualStatus
	Time         string
	Note         string
}

// ComposeFeedback builds the message stored as feedback. The raw note only
// survives as part of the composed text.
func ComposeFeedback(childName string, resp Response) (string, error) {
	if err := ValidateResponseStatus(resp.Decision); err != nil {
		return "", err
	}
	if !resp.ActualStatus.Valid() {
		return "", fmt.Errorf("%w: please select whether the child has checked in or out", ErrMissingField)
	}
	at := strings.TrimSpace(resp.Time)
	if at == "" {
		return "", fmt.Errorf("%w: please provide the time", ErrMissingField)
	}
	note := strings.TrimSpace(resp.Note)

	if resp.Decision == StatusApproved {
		msg := fmt.Sprintf("✅ CONFIRMED: %s has %s school at %s.", childName, resp.ActualStatus.phrase(), at)
		if note != "" {
			msg += " Additional info: " + note
		}
		return msg, nil
	}

	if note == "" {
		note = DefaultRejectionNote
	}
	return fmt.Sprintf("❌ Unable to confirm status for %s at this time. %s", childName, note), nil
}

// CanRespond reports whether a request still accepts an admin response.
func CanRespond(r StatusRequest) error {
	if !r.IsPending() {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyAnswered, r.ID, r.Status)
	}
	return nil
}
