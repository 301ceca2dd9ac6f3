package core

// event_logs.go – parsing of conventional structured event logs. Contracts
// emit them as ordinary log lines carrying an "EVENT_JSON:" prefix followed
// by a JSON object with event, standard and version fields and an optional
// free-form data payload.

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EventLogPrefix marks a log line as a structured event log.
const EventLogPrefix = "EVENT_JSON:"

// ErrNotEventLog is returned for log lines without the event-log prefix.
var ErrNotEventLog = errors.New("log line is not an event log")

// EventLogEntry is one parsed event log. Data is kept opaque and
// re-serializable to its original text form.
type EventLogEntry struct {
	Standard string          `json:"standard"`
	Version  string          `json:"version"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// ParseEventLog parses a single log line into an EventLogEntry. Any
// deviation from the convention – missing prefix, malformed JSON, missing
// or non-string required key – is a rejection. Rejections are ordinary
// error values; callers scanning receipt logs drop them and continue.
func ParseEventLog(log string) (EventLogEntry, error) {
	if !strings.HasPrefix(log, EventLogPrefix) {
		return EventLogEntry{}, ErrNotEventLog
	}
	var raw struct {
		Standard *string         `json:"standard"`
		Version  *string         `json:"version"`
		Event    *string         `json:"event"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(strings.TrimPrefix(log, EventLogPrefix)), &raw); err != nil {
		return EventLogEntry{}, fmt.Errorf("parse event log: %w", err)
	}
	if raw.Standard == nil || raw.Version == nil || raw.Event == nil {
		return EventLogEntry{}, fmt.Errorf("parse event log: missing required key")
	}
	if string(raw.Data) == "null" {
		raw.Data = nil
	}
	return EventLogEntry{
		Standard: *raw.Standard,
		Version:  *raw.Version,
		Event:    *raw.Event,
		Data:     raw.Data,
	}, nil
}
