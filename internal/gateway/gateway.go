// Package gateway is the boundary to the remote reminder store. The
// Gateway interface is what the rest of the client consumes; Client is the
// HTTP implementation of the backend's logical contract.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"remindcal/internal/editor"
	"remindcal/internal/model"
)

// Gateway fetches and mutates reminders and notes for one user.
//
// Every mutation is expected to be followed by a re-fetch of the affected
// list before further mutations; implementations never need to return
// updated collections.
type Gateway interface {
	ListReminders(ctx context.Context, userID string) ([]model.Reminder, error)
	ListNotes(ctx context.Context, userID string) ([]model.Note, error)

	// SubmitReminder creates (payload id 0) or reprograms a reminder.
	// For recurring payloads the backend derives the true next occurrence
	// from (rule, submitted time); the returned id is the payload id when
	// the backend does not echo one.
	SubmitReminder(ctx context.Context, userID string, payload editor.Submission) (int64, error)

	DeleteReminder(ctx context.Context, userID string, id int64) error
	UpdateNote(ctx context.Context, id int64, content string) error
	DeleteNote(ctx context.Context, id int64) error
}

// ErrNotFound marks "no such user/record" failures, as opposed to transport
// or server trouble. Match with errors.Is.
var ErrNotFound = errors.New("record not found")

// ServerError is a failure reported by the backend: a non-2xx status or a
// success=false envelope. Detail carries the raw server-provided message
// when there is one, for inline display.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server error (status %d)", e.Status)
	}
	return fmt.Sprintf("server error (status %d): %s", e.Status, e.Detail)
}

// Is lets a 404 ServerError match ErrNotFound.
func (e *ServerError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// TransportError is a failure to reach the backend at all (DNS, refused
// connection, timeout). The form stays editable and the control re-enables;
// nothing was persisted.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }
