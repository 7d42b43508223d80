package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
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
	CollectionID ID
	TokenID      ID
)

// String conversions for domain IDs
func (id CollectionID) String() string { return ID(id).String() }
func (id TokenID) String() string      { return ID(id).String() }

// NewCollectionID creates a time-ordered collection identifier
func NewCollectionID() CollectionID {
	return CollectionID(NewID())
}

// ParseTokenID parses a string into TokenID
func ParseTokenID(s string) (TokenID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("token ID cannot be empty")
	}
	return TokenID(s), nil
}

// CompareTokenIDs orders token ids naturally: ids that are both integers compare
// numerically, everything else compares lexicographically. Integers sort first.
func CompareTokenIDs(a, b TokenID) int {
	ai, aErr := strconv.ParseInt(string(a), 10, 64)
	bi, bErr := strconv.ParseInt(string(b), 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(string(a), string(b))
}
