package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the canonical report state. Producers send either the
// Open / In Progress / Resolved family or the draft / submitted / approved /
// rejected family; both are folded into these four values at ingestion.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"
)

var statusAliases = map[string]Status{
	"open":        StatusPending,
	"draft":       StatusPending,
	"pending":     StatusPending,
	"in progress": StatusActive,
	"in-progress": StatusActive,
	"in_progress": StatusActive,
	"progress":    StatusActive,
	"submitted":   StatusActive,
	"active":      StatusActive,
	"resolved":    StatusResolved,
	"approved":    StatusResolved,
	"closed":      StatusResolved,
	"rejected":    StatusRejected,
}

// ParseStatus maps a raw status from either family to its canonical value.
func ParseStatus(raw string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := statusAliases[key]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Label is the display name used in exports and notices.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Open"
	case StatusActive:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	case StatusRejected:
		return "Rejected"
	default:
		return ""
	}
}

// Slug is the file-name friendly form of the status.
func (s Status) Slug() string {
	switch s {
	case StatusPending:
		return "open"
	case StatusActive:
		return "in_progress"
	case StatusResolved:
		return "resolved"
	case StatusRejected:
		return "rejected"
	default:
		return ""
	}
}

func (s Status) Color() string {
	switch s {
	case StatusPending:
		return "#EAB308"
	case StatusActive:
		return "#3B82F6"
	case StatusResolved:
		return "#22C55E"
	case StatusRejected:
		return "#EF4444"
	default:
		return "#6B7280"
	}
}

// UnmarshalJSON normalizes whichever family the producer used. An empty
// status is kept empty so the store can default it.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("status must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
