package services

import (
	"fmt"
	"georeport/model"
	"strings"
	"time"
)

type Mode string

const (
	// ModeContextual honours every filter dimension. It is the zero value.
	ModeContextual Mode = ""
	// ModeStandalone bypasses the contextual filters and honours only the
	// status override, as the export shortcut on the map page does.
	ModeStandalone Mode = "standalone"
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "contextual":
		return ModeContextual, nil
	case "standalone":
		return ModeStandalone, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

type TimeFrame string

const (
	TimeFrameNone  TimeFrame = ""
	TimeFrameYear  TimeFrame = "year"
	TimeFrameMonth TimeFrame = "month"
	TimeFrameWeek  TimeFrame = "week"
	TimeFrameDay   TimeFrame = "day"
)

func ParseTimeFrame(s string) (TimeFrame, error) {
	tf := TimeFrame(strings.ToLower(strings.TrimSpace(s)))
	switch tf {
	case TimeFrameNone, TimeFrameYear, TimeFrameMonth, TimeFrameWeek, TimeFrameDay:
		return tf, nil
	}
	return "", fmt.Errorf("unknown time frame %q", s)
}

// TimeFilter selects reports by creation date, evaluated in UTC. A zero
// selector means nothing was picked for that stage.
type TimeFilter struct {
	Frame TimeFrame  `json:"timeframe,omitempty"`
	Year  int        `json:"year,omitempty"`
	Month time.Month `json:"month,omitempty"`
	Day   int        `json:"day,omitempty"`
}

// StatusFlags are the three independent show toggles of the dashboard.
// Closed covers both resolved and rejected reports.
type StatusFlags struct {
	Open       bool `json:"open"`
	InProgress bool `json:"in_progress"`
	Closed     bool `json:"closed"`
}

func (f StatusFlags) allows(s model.Status) bool {
	switch s {
	case model.StatusPending:
		return f.Open
	case model.StatusActive:
		return f.InProgress
	case model.StatusResolved, model.StatusRejected:
		return f.Closed
	}
	return false
}

// FilterState is owned by one view and passed explicitly to Apply. Nil and
// zero-valued dimensions place no constraint on the result.
type FilterState struct {
	Mode         Mode          `json:"mode,omitempty"`
	CategoryOnly bool          `json:"category_only,omitempty"`
	Status       *model.Status `json:"status,omitempty"`
	Flags        *StatusFlags  `json:"flags,omitempty"`
	Time         TimeFilter    `json:"time"`
	Category     string        `json:"category,omitempty"`
	Categories   []string      `json:"categories,omitempty"`
}

// Apply returns the reports visible under state, in input order. The input
// slice is never modified.
func Apply(reports []model.Report, state FilterState) []model.Report {
	stages := state.stages()
	out := make([]model.Report, 0, len(reports))
next:
	for _, r := range reports {
		for _, keep := range stages {
			if !keep(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

type stage func(model.Report) bool

// stages builds the ordered pipeline. Standalone stops after the status
// override; category-only stops after the category stage.
func (s FilterState) stages() []stage {
	if s.Mode == ModeStandalone {
		if s.Status == nil {
			return nil
		}
		return []stage{s.statusOverride}
	}

	var out []stage
	if !s.CategoryOnly {
		out = append(out, s.timeStages()...)
	}
	if cat := s.categoryStage(); cat != nil {
		out = append(out, cat)
	}
	if s.CategoryOnly {
		return out
	}
	switch {
	case s.Status != nil:
		out = append(out, s.statusOverride)
	case s.Flags != nil:
		flags := *s.Flags
		out = append(out, func(r model.Report) bool { return flags.allows(r.Status) })
	}
	return out
}

func (s FilterState) timeStages() []stage {
	t := s.Time
	var out []stage
	if t.Year != 0 {
		out = append(out, func(r model.Report) bool { return r.CreatedAt.UTC().Year() == t.Year })
	}
	// week has no stage of its own and narrows to its containing month
	if t.Month != 0 && (t.Frame == TimeFrameMonth || t.Frame == TimeFrameWeek || t.Frame == TimeFrameDay) {
		out = append(out, func(r model.Report) bool { return r.CreatedAt.UTC().Month() == t.Month })
	}
	if t.Day != 0 && t.Frame == TimeFrameDay {
		out = append(out, func(r model.Report) bool { return r.CreatedAt.UTC().Day() == t.Day })
	}
	return out
}

// categoryStage prefers the multi-select set; the single selection is only
// consulted when the set is empty.
func (s FilterState) categoryStage() stage {
	if len(s.Categories) > 0 {
		set := make(map[string]struct{}, len(s.Categories))
		for _, c := range s.Categories {
			set[c] = struct{}{}
		}
		return func(r model.Report) bool {
			_, ok := set[r.Category]
			return ok
		}
	}
	if c := s.singleCategory(); c != "" {
		return func(r model.Report) bool { return r.Category == c }
	}
	return nil
}

func (s FilterState) singleCategory() string {
	c := strings.TrimSpace(s.Category)
	if strings.EqualFold(c, "all") {
		return ""
	}
	return c
}

func (s FilterState) statusOverride(r model.Report) bool {
	return r.Status == *s.Status
}

// ActiveCategory is the one category the state narrows to, if exactly one.
func (s FilterState) ActiveCategory() string {
	if len(s.Categories) > 0 {
		if len(s.Categories) == 1 {
			return s.Categories[0]
		}
		return ""
	}
	return s.singleCategory()
}

// ParseStatusFilter reads a status tab value. "" and "all" mean no override.
func ParseStatusFilter(raw string) (*model.Status, error) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "all") {
		return nil, nil
	}
	st, err := model.ParseStatus(v)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
