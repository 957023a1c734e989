package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 generation fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SessionID  ID
	ArtifactID ID
)

// NewSessionID creates a new session identifier
func NewSessionID() SessionID { return SessionID(NewID()) }

// NewArtifactID creates a new export artifact identifier
func NewArtifactID() ArtifactID { return ArtifactID(NewID()) }

func (id SessionID) String() string  { return string(id) }
func (id ArtifactID) String() string { return string(id) }

// ParseSessionID validates a session id taken from a cookie
func ParseSessionID(s string) (SessionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid session ID %q: %w", s, err)
	}
	return SessionID(s), nil
}
