package service

import (
	"errors"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// fieldErrors collects validation problems in the order they are found.
type fieldErrors []string

func (f *fieldErrors) require(value, field string) {
	if strings.TrimSpace(value) == "" {
		*f = append(*f, field+" is required")
	}
}

func (f *fieldErrors) add(msg string) {
	*f = append(*f, msg)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

type AuditEntry struct {
	SessionID    string
	UserEmail    string
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	Changes      string
}
