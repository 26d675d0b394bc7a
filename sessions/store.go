package sessions

import (
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-billing-console/users"
)

// Store persists the session durably so that it survives a process restart.
// Implementations perform no validation of token contents.
type Store interface {
	// Save replaces the persisted session.
	Save(session Session) error

	// Load returns the persisted session, or the zero Session when nothing
	// has been saved.
	Load() (Session, error)

	// Clear removes all three entries.
	Clear() error
}

// Entries flattens a session into its persisted key/value form. Absent fields
// are omitted.
func Entries(s Session) (map[string]string, error) {
	entries := make(map[string]string, 3)
	if s.AccessToken != "" {
		entries[KeyAccessToken] = s.AccessToken
	}
	if s.RefreshToken != "" {
		entries[KeyRefreshToken] = s.RefreshToken
	}
	if s.User != nil {
		b, err := json.Marshal(s.User)
		if err != nil {
			return nil, fmt.Errorf("encode user: %w", err)
		}
		entries[KeyUser] = string(b)
	}
	return entries, nil
}

// FromEntries rebuilds a session from its persisted key/value form. Unknown
// keys are ignored.
func FromEntries(entries map[string]string) (Session, error) {
	s := Session{
		AccessToken:  entries[KeyAccessToken],
		RefreshToken: entries[KeyRefreshToken],
	}
	if raw := entries[KeyUser]; raw != "" {
		var u users.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return Session{}, fmt.Errorf("decode user: %w", err)
		}
		s.User = &u
	}
	return s, nil
}
