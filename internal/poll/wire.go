// Package poll fetches notification snapshots from the dashboard and feeds
// them to the dispatcher on a timer.
package poll

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/colonyops/deskbell/internal/core/alert"
)

// ErrEmptyBody is returned when a source produced no bytes.
var ErrEmptyBody = errors.New("empty response body")

// APIError is the error half of the dashboard's response envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return "dashboard error: " + e.Message
	}
	return fmt.Sprintf("dashboard error %s: %s", e.Code, e.Message)
}

type wireNotification struct {
	Type     string  `json:"tipo"`
	Title    string  `json:"titulo"`
	Message  string  `json:"mensaje"`
	URL      *string `json:"url"`
	Time     string  `json:"tiempo"`
	Priority string  `json:"prioridad"`
}

type wirePayload struct {
	Notifications []wireNotification `json:"notificaciones"`
	TotalNew      *int               `json:"total_nuevos"`
	TotalCritical *int               `json:"total_criticos"`
	Pending       *int               `json:"mis_pendientes"`
}

type wireEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

// Decode parses a notification response. Both the bare payload and the
// {success, data, error, meta} envelope are accepted.
func Decode(body []byte) (alert.Snapshot, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return alert.Snapshot{}, ErrEmptyBody
	}

	var env wireEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return alert.Snapshot{}, fmt.Errorf("decode response: %w", err)
	}

	payload := body
	if env.Success != nil {
		if !*env.Success {
			if env.Error == nil {
				return alert.Snapshot{}, &APIError{Message: "request failed"}
			}
			return alert.Snapshot{}, env.Error
		}
		payload = env.Data
	}

	var p wirePayload
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, &p); err != nil {
			return alert.Snapshot{}, fmt.Errorf("decode payload: %w", err)
		}
	}

	return p.snapshot(), nil
}

func (p wirePayload) snapshot() alert.Snapshot {
	snap := alert.Snapshot{
		Aggregates: alert.Aggregates{
			PendingForUser: p.Pending,
			TotalNew:       p.TotalNew,
			TotalCritical:  p.TotalCritical,
		},
	}
	if len(p.Notifications) == 0 {
		return snap
	}

	snap.Items = make([]alert.Notification, 0, len(p.Notifications))
	for _, w := range p.Notifications {
		n := alert.Notification{
			Title:       w.Title,
			Message:     w.Message,
			RawPriority: w.Priority,
			Type:        w.Type,
			TimeLabel:   w.Time,
		}
		if w.URL != nil {
			n.URL = *w.URL
		}
		snap.Items = append(snap.Items, n)
	}
	return snap
}
