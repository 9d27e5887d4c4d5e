package dto

import (
	"fmt"
	"georeport/model"
	"georeport/services"
	"strings"
	"time"
)

type CreateReportRequest struct {
	ID          string         `json:"id"`
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	Category    string         `json:"category" binding:"required"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority" binding:"omitempty,oneof=low medium high"`
	Location    model.Location `json:"location"`
	Tags        []string       `json:"tags"`
}

func (r CreateReportRequest) ToReport() (model.Report, error) {
	report := model.Report{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Priority:    model.Priority(r.Priority),
		Location:    r.Location,
		Tags:        r.Tags,
	}
	if r.Status != "" {
		st, err := model.ParseStatus(r.Status)
		if err != nil {
			return model.Report{}, err
		}
		report.Status = st
	}
	return report, nil
}

type UpdateStatusRequest struct {
	Status     string  `json:"status" binding:"required"`
	AssignedTo *string `json:"assigned_to"`
}

// FilterQuery is the filter as it arrives on a query string or a JSON body.
// Missing show_* toggles default to on. Categories are taken as given; query
// strings call ExpandCategories first to accept comma separated values.
type FilterQuery struct {
	Mode           string   `form:"mode" json:"mode"`
	Status         string   `form:"status" json:"status"`
	Category       string   `form:"category" json:"category"`
	Categories     []string `form:"categories" json:"categories"`
	CategoryOnly   bool     `form:"category_only" json:"category_only"`
	TimeFrame      string   `form:"timeframe" json:"timeframe"`
	Year           int      `form:"year" json:"year" binding:"omitempty,min=1970,max=9999"`
	Month          int      `form:"month" json:"month" binding:"omitempty,min=1,max=12"`
	Day            int      `form:"day" json:"day" binding:"omitempty,min=1,max=31"`
	ShowOpen       *bool    `form:"show_open" json:"show_open"`
	ShowInProgress *bool    `form:"show_in_progress" json:"show_in_progress"`
	ShowClosed     *bool    `form:"show_closed" json:"show_closed"`
}

func (q FilterQuery) ToFilterState() (services.FilterState, error) {
	var state services.FilterState

	mode, err := services.ParseMode(q.Mode)
	if err != nil {
		return state, err
	}
	frame, err := services.ParseTimeFrame(q.TimeFrame)
	if err != nil {
		return state, err
	}
	status, err := services.ParseStatusFilter(q.Status)
	if err != nil {
		return state, err
	}

	state.Mode = mode
	state.Status = status
	state.CategoryOnly = q.CategoryOnly
	state.Category = strings.TrimSpace(q.Category)
	state.Categories = trimList(q.Categories)
	state.Time = services.TimeFilter{Frame: frame, Year: q.Year, Month: time.Month(q.Month), Day: q.Day}

	if q.ShowOpen != nil || q.ShowInProgress != nil || q.ShowClosed != nil {
		state.Flags = &services.StatusFlags{
			Open:       flag(q.ShowOpen),
			InProgress: flag(q.ShowInProgress),
			Closed:     flag(q.ShowClosed),
		}
	}
	return state, nil
}

func flag(b *bool) bool {
	return b == nil || *b
}

// ExpandCategories splits comma separated category values, as a query
// string may send "categories=a,b" next to repeated parameters.
func (q *FilterQuery) ExpandCategories() {
	var out []string
	for _, v := range q.Categories {
		out = append(out, strings.Split(v, ",")...)
	}
	q.Categories = out
}

func trimList(values []string) []string {
	var out []string
	for _, v := range values {
		if p := strings.TrimSpace(v); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type ExportRequest struct {
	Format string `form:"format" json:"format"`
}

func (r ExportRequest) ParseFormat() (services.Format, error) {
	f, err := services.ParseFormat(r.Format)
	if err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	return f, nil
}
