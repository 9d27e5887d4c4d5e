// model/report.go
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Report struct {
	ID          string     `gorm:"column:report_id;primaryKey;type:varchar(64)" json:"id"`
	Title       string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	Status      Status     `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	Category    string     `gorm:"column:category;type:varchar(128);index" json:"category"`
	Priority    Priority   `gorm:"column:priority;type:varchar(16)" json:"priority,omitempty"`
	Location    Location   `gorm:"column:location;serializer:json" json:"location"`
	Tags        []string   `gorm:"column:tags;serializer:json" json:"tags,omitempty"`
	AssignedTo  string     `gorm:"column:assigned_to;type:varchar(64)" json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (Report) TableName() string {
	return "reports"
}

// Location is either a structured point with a name or a bare text label,
// depending on who produced the report.
type Location struct {
	Name string
	Lat  *float64
	Lng  *float64

	structured bool
}

// LabelLocation builds a bare text location that needs resolving.
func LabelLocation(label string) Location {
	return Location{Name: label}
}

// PointLocation builds a structured location.
func PointLocation(name string, lat, lng float64) Location {
	return Location{Name: name, Lat: &lat, Lng: &lng, structured: true}
}

// Structured reports whether the producer sent an object rather than a label.
func (l Location) Structured() bool {
	return l.structured || l.Lat != nil || l.Lng != nil
}

type locationObject struct {
	Name string          `json:"name"`
	Lat  json.RawMessage `json:"lat"`
	Lng  json.RawMessage `json:"lng"`
}

func (l Location) MarshalJSON() ([]byte, error) {
	if !l.Structured() {
		return json.Marshal(l.Name)
	}
	return json.Marshal(struct {
		Name string   `json:"name"`
		Lat  *float64 `json:"lat"`
		Lng  *float64 `json:"lng"`
	}{l.Name, l.Lat, l.Lng})
}

// UnmarshalJSON accepts a string label or a {name, lat, lng} object. An axis
// that is missing or not a JSON number is left nil for the resolver to handle.
func (l *Location) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*l = Location{}
		return nil
	case b[0] == '"':
		var label string
		if err := json.Unmarshal(b, &label); err != nil {
			return err
		}
		*l = LabelLocation(label)
		return nil
	case b[0] == '{':
		var obj locationObject
		if err := json.Unmarshal(b, &obj); err != nil {
			return fmt.Errorf("location: %w", err)
		}
		*l = Location{Name: obj.Name, Lat: numeric(obj.Lat), Lng: numeric(obj.Lng), structured: true}
		return nil
	default:
		return fmt.Errorf("location must be a string or an object, got %s", b)
	}
}

func numeric(raw json.RawMessage) *float64 {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

// Coordinate is a latitude/longitude pair, latitude first.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
