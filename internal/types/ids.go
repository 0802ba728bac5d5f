package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID identifies workflow runs, nodes, conditions, and merge instances. It
// holds a canonical (lowercase, hyphenated) UUID string, or is empty while
// unassigned.
type ID string

// NewID returns a fresh random ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID canonicalizes s into an ID, rejecting anything that is not a
// well-formed UUID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse id %q: %w", s, err)
	}
	return ID(u.String()), nil
}

// Validate reports whether the ID holds a well-formed UUID.
func (id ID) Validate() error {
	_, err := ParseID(string(id))
	return err
}

// String returns the ID as a string.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the ID is unassigned.
func (id ID) IsZero() bool {
	return id == ""
}

// MarshalJSON encodes unassigned IDs as null so a document saved without an
// id round-trips without gaining one.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON decodes and canonicalizes an ID, accepting null and the empty
// string as unassigned.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("id must be a string: %w", err)
	}
	if s == "" {
		*id = ""
		return nil
	}

	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
