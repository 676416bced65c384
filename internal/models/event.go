package models

import "time"

// Event is one marketing touch to one contact.
// Opened, Clicked and Unsubscribed are nominally 0/1 indicators; nothing enforces that.
type Event struct {
	EventID      string    `json:"event_id,omitempty"`
	ContactID    string    `json:"contact_id"`
	EventDT      time.Time `json:"event_dt"`
	Channel      string    `json:"channel"`
	Persona      string    `json:"persona"`
	Opened       int       `json:"opened"`
	Clicked      int       `json:"clicked"`
	Unsubscribed int       `json:"unsubscribed"`
}

// Contact is a campaign recipient.
type Contact struct {
	ContactID string    `json:"contact_id"`
	Persona   string    `json:"persona"`
	CreatedAt time.Time `json:"created_at"`
}

// EventIngestRequest is the POST /events payload.
// event_id is optional; best practice is to pass Idempotency-Key header for retries.
type EventIngestRequest struct {
	EventID      string `json:"event_id,omitempty"`
	ContactID    string `json:"contact_id"`
	EventDT      string `json:"event_dt"`
	Channel      string `json:"channel"`
	Persona      string `json:"persona"`
	Opened       int    `json:"opened"`
	Clicked      int    `json:"clicked"`
	Unsubscribed int    `json:"unsubscribed"`
}

// EventIngestResponse is returned by POST /events.
// Duplicate indicates idempotent success (the event already existed).
type EventIngestResponse struct {
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
}

// ContactUpsertRequest is the POST /contacts payload.
type ContactUpsertRequest struct {
	ContactID string `json:"contact_id"`
	Persona   string `json:"persona"`
	CreatedAt string `json:"created_at,omitempty"`
}
