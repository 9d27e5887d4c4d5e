package dto

import (
	"encoding/json"
	"georeport/model"
	"georeport/services"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestFilterQueryDefaults(t *testing.T) {
	state, err := FilterQuery{}.ToFilterState()
	require.NoError(t, err)
	assert.Equal(t, services.FilterState{}, state)
}

func TestFilterQueryFull(t *testing.T) {
	q := FilterQuery{
		Mode:         "standalone",
		Status:       "In Progress",
		Category:     " Limpieza ",
		Categories:   []string{"A", " C ", ""},
		CategoryOnly: true,
		TimeFrame:    "day",
		Year:         2024,
		Month:        1,
		Day:          16,
		ShowClosed:   boolPtr(false),
	}
	state, err := q.ToFilterState()
	require.NoError(t, err)
	assert.Equal(t, services.ModeStandalone, state.Mode)
	require.NotNil(t, state.Status)
	assert.Equal(t, model.StatusActive, *state.Status)
	assert.Equal(t, "Limpieza", state.Category)
	assert.Equal(t, []string{"A", "C"}, state.Categories)
	assert.True(t, state.CategoryOnly)
	assert.Equal(t, services.TimeFilter{Frame: services.TimeFrameDay, Year: 2024, Month: time.January, Day: 16}, state.Time)
	assert.Equal(t, &services.StatusFlags{Open: true, InProgress: true, Closed: false}, state.Flags)
}

func TestFilterQueryCategoryLists(t *testing.T) {
	var body FilterQuery
	require.NoError(t, json.Unmarshal([]byte(`{"categories":["Parques, plazas","Limpieza"]}`), &body))
	state, err := body.ToFilterState()
	require.NoError(t, err)
	assert.Equal(t, []string{"Parques, plazas", "Limpieza"}, state.Categories)

	query := FilterQuery{Categories: []string{"A,B", " C ", ""}}
	query.ExpandCategories()
	state, err = query.ToFilterState()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, state.Categories)
}

func TestFilterQueryRejectsUnknownValues(t *testing.T) {
	_, err := FilterQuery{Mode: "sideways"}.ToFilterState()
	assert.Error(t, err)
	_, err = FilterQuery{TimeFrame: "decade"}.ToFilterState()
	assert.Error(t, err)
	_, err = FilterQuery{Status: "exploded"}.ToFilterState()
	assert.Error(t, err)
}

func TestCreateReportRequestToReport(t *testing.T) {
	r, err := CreateReportRequest{Title: "t", Category: "c", Status: "draft", Priority: "high"}.ToReport()
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, r.Status)
	assert.Equal(t, model.PriorityHigh, r.Priority)

	r, err = CreateReportRequest{Title: "t", Category: "c"}.ToReport()
	require.NoError(t, err)
	assert.Equal(t, model.Status(""), r.Status)

	_, err = CreateReportRequest{Title: "t", Category: "c", Status: "nope"}.ToReport()
	assert.Error(t, err)
}

func TestExportRequestFormat(t *testing.T) {
	f, err := ExportRequest{}.ParseFormat()
	require.NoError(t, err)
	assert.Equal(t, services.FormatCSV, f)
	_, err = ExportRequest{Format: "xlsx"}.ParseFormat()
	assert.Error(t, err)
}
