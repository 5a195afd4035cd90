package domain

import (
	"strings"

	"github.com/google/uuid"
)

// IsIdentifier reports whether s has the canonical 36-character UUID shape
// used for every primary key.
func IsIdentifier(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func NewID() string {
	return uuid.New().String()
}

// IsUnsetReference reports whether a section or category name means "none":
// blank, or the reserved "main".
func IsUnsetReference(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, SectionMain)
}
