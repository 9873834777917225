package session

import (
	"encoding/json"
	"fmt"
)

// Record is the sole persisted entity: a refresh token keyed by an
// opaque session id. The refresh token must never be logged or
// returned to the client. Records are replaced wholesale or deleted,
// never partially updated.
//
// The wire shape matches existing deployments: Created is unix
// milliseconds.
type Record struct {
	RefreshToken string `json:"refresh_token"`
	Created      int64  `json:"created"`
}

func encodeRecord(r Record) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("session: failed to marshal record: %w", err)
	}
	return string(data), nil
}

func decodeRecord(raw string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Record{}, fmt.Errorf("session: failed to unmarshal record: %w", err)
	}
	return r, nil
}
