package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"remindcal/internal/editor"
	applog "remindcal/internal/log"
	"remindcal/internal/model"
	"remindcal/internal/recurrence"
)

const defaultTimeout = 15 * time.Second

// Client talks to the backend over HTTP. It is safe for concurrent use.
type Client struct {
	http *resty.Client
	loc  *time.Location
}

// NewClient builds a Client for the given base URL (e.g.
// "http://127.0.0.1:5000/api"). A zero timeout falls back to 15s; loc is
// the timezone wire date-times are interpreted in, nil meaning time.Local.
func NewClient(baseURL string, timeout time.Duration, loc *time.Location) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		loc:  loc,
	}
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	ID      int64  `json:"id,omitempty"`
}

type reminderDTO struct {
	ID         int64   `json:"id"`
	Message    string  `json:"message"`
	Date       string  `json:"date"` // "YYYY-MM-DD HH:MM:SS"
	Recurrence *string `json:"recurrence"`
}

type remindersEnvelope struct {
	envelope
	Reminders []reminderDTO `json:"reminders"`
}

type noteDTO struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type notesEnvelope struct {
	envelope
	Notes []noteDTO `json:"notes"`
}

// ListReminders returns the user's reminders in backend order. Entries
// whose date cannot be parsed are logged and skipped; the rest of the list
// still loads.
func (c *Client) ListReminders(ctx context.Context, userID string) ([]model.Reminder, error) {
	var out remindersEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", userID).
		SetResult(&out).
		Get("/reminders")
	if err != nil {
		return nil, &TransportError{Op: "list reminders", Err: err}
	}
	if err := checkEnvelope(resp, &out.envelope); err != nil {
		return nil, err
	}

	reminders := make([]model.Reminder, 0, len(out.Reminders))
	for _, dto := range out.Reminders {
		r, err := c.toReminder(dto)
		if err != nil {
			applog.Error("skipping unparseable reminder", err, "id", dto.ID, "date", dto.Date)
			continue
		}
		reminders = append(reminders, r)
	}
	return reminders, nil
}

func (c *Client) toReminder(dto reminderDTO) (model.Reminder, error) {
	at, err := time.ParseInLocation(model.WireTimeLayout, dto.Date, c.loc)
	if err != nil {
		return model.Reminder{}, err
	}

	r := model.Reminder{ID: dto.ID, Message: dto.Message}
	if dto.Recurrence != nil && *dto.Recurrence != "" {
		r.Occurrence = model.Recurring{
			Rule:   *dto.Recurrence,
			Days:   recurrence.Decode(*dto.Recurrence),
			NextAt: at,
		}
	} else {
		r.Occurrence = model.OneTime{At: at}
	}
	return r, nil
}

// ListNotes returns the user's notes in backend order.
func (c *Client) ListNotes(ctx context.Context, userID string) ([]model.Note, error) {
	var out notesEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", userID).
		SetResult(&out).
		Get("/notes")
	if err != nil {
		return nil, &TransportError{Op: "list notes", Err: err}
	}
	if err := checkEnvelope(resp, &out.envelope); err != nil {
		return nil, err
	}

	notes := make([]model.Note, 0, len(out.Notes))
	for _, dto := range out.Notes {
		n := model.Note{ID: dto.ID, Content: dto.Content}
		// created_at is display-only; a bad timestamp just renders blank.
		if t, err := time.ParseInLocation(model.WireTimeLayout, dto.CreatedAt, c.loc); err == nil {
			n.CreatedAt = t
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// SubmitReminder sends the validated payload to POST /reprogram.
func (c *Client) SubmitReminder(ctx context.Context, userID string, payload editor.Submission) (int64, error) {
	body := map[string]any{
		"user_id": userID,
		"message": payload.Message,
		"date":    payload.Date,
	}
	if payload.ID != 0 {
		body["id"] = payload.ID
	}
	if payload.Recurrence != "" {
		body["recurrence"] = payload.Recurrence
	} else {
		body["recurrence"] = nil
	}

	var out envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/reprogram")
	if err != nil {
		return 0, &TransportError{Op: "submit reminder", Err: err}
	}
	if err := checkEnvelope(resp, &out); err != nil {
		return 0, err
	}
	if out.ID != 0 {
		return out.ID, nil
	}
	return payload.ID, nil
}

// DeleteReminder sends POST /delete for the given reminder.
func (c *Client) DeleteReminder(ctx context.Context, userID string, id int64) error {
	var out envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"user_id": userID, "id": id}).
		SetResult(&out).
		Post("/delete")
	if err != nil {
		return &TransportError{Op: "delete reminder", Err: err}
	}
	return checkEnvelope(resp, &out)
}

// UpdateNote replaces a note's content via PUT /notes/{id}.
func (c *Client) UpdateNote(ctx context.Context, id int64, content string) error {
	var out envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"content": content}).
		SetResult(&out).
		Put(fmt.Sprintf("/notes/%d", id))
	if err != nil {
		return &TransportError{Op: "update note", Err: err}
	}
	return checkEnvelope(resp, &out)
}

// DeleteNote removes a note via DELETE /notes/{id}.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	var out envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Delete(fmt.Sprintf("/notes/%d", id))
	if err != nil {
		return &TransportError{Op: "delete note", Err: err}
	}
	return checkEnvelope(resp, &out)
}

// checkEnvelope turns non-2xx responses and success=false envelopes into
// *ServerError. On error statuses resty leaves the result untouched, so the
// body is re-decoded best-effort for the server's detail message.
func checkEnvelope(resp *resty.Response, env *envelope) error {
	if resp.IsError() {
		detail := ""
		var failed envelope
		if jsonErr := json.Unmarshal(resp.Body(), &failed); jsonErr == nil {
			detail = failed.Error
		}
		return &ServerError{Status: resp.StatusCode(), Detail: detail}
	}
	if !env.Success {
		return &ServerError{Status: resp.StatusCode(), Detail: env.Error}
	}
	return nil
}
