package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"georeport/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCSVEmptyHasOnlyHeader(t *testing.T) {
	body, err := EncodeCSV(nil, DefaultResolver())
	require.NoError(t, err)
	assert.Equal(t, "id,title,description,status,priority,category,location,date,latitude,longitude\n", string(body))
}

func TestEncodeCSVQuotesAndRoundTrips(t *testing.T) {
	reports := []model.Report{{
		ID:          "7",
		Title:       `He said "hi"`,
		Description: "line one, line two",
		Status:      model.StatusActive,
		Category:    "Alumbrado",
		Location:    model.PointLocation("Av. Libertador #456", -33.44, -70.65),
		CreatedAt:   day("2024-01-16"),
	}}
	body, err := EncodeCSV(reports, DefaultResolver())
	require.NoError(t, err)
	assert.Contains(t, string(body), `"He said ""hi"""`)
	assert.NotContains(t, string(body), "undefined")
	assert.NotContains(t, string(body), "null")

	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"7", `He said "hi"`, "line one, line two", "In Progress", "", "Alumbrado", "Av. Libertador #456", "2024-01-16", "-33.44", "-70.65"}, rows[1])
}

func TestEncodeCSVResolvesLabels(t *testing.T) {
	reports := []model.Report{{ID: "3", Location: model.LabelLocation("Plaza Central")}}
	body, err := EncodeCSV(reports, DefaultResolver())
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	row := rows[1]
	assert.Equal(t, "", row[3], "invalid status serializes empty")
	assert.Equal(t, "", row[7], "zero date serializes empty")
	assert.Equal(t, "-33.445", row[8])
	assert.Equal(t, "-70.66", row[9])
}

func TestEncodeGeoJSONIsLongitudeFirst(t *testing.T) {
	reports := []model.Report{{
		ID:        "1",
		Title:     "Bache",
		Status:    model.StatusPending,
		Category:  "Infraestructura",
		Location:  model.PointLocation("x", -33.45, -70.66),
		CreatedAt: day("2024-01-15"),
	}}
	body, err := EncodeGeoJSON(reports, DefaultResolver())
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Type     string `json:"type"`
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]string `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 1)
	f := doc.Features[0]
	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "1", f.ID)
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.Equal(t, []float64{-70.66, -33.45}, f.Geometry.Coordinates)
	assert.Equal(t, "Bache", f.Properties["title"])
	assert.Equal(t, "Open", f.Properties["status"])
	assert.Equal(t, "Infraestructura", f.Properties["category"])
	assert.Equal(t, "2024-01-15T00:00:00Z", f.Properties["date"])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "map_data.csv", Filename(FilterState{}, FormatCSV))
	assert.Equal(t, "reports_in_progress.geojson", Filename(FilterState{Status: statusPtr(model.StatusActive), Category: "Roads"}, FormatGeoJSON))
	assert.Equal(t, "reports_medio_ambiente.csv", Filename(FilterState{Category: "Medio  Ambiente"}, FormatCSV))
	assert.Equal(t, "reports_lights.csv", Filename(FilterState{Categories: []string{"Lights"}}, FormatCSV))
	assert.Equal(t, "map_data.csv", Filename(FilterState{Categories: []string{"Lights", "Roads"}}, FormatCSV))

	// standalone skips the category stage
	assert.Equal(t, "map_data.csv", Filename(FilterState{Mode: ModeStandalone, Category: "Limpieza"}, FormatCSV))
	assert.Equal(t, "reports_resolved.csv", Filename(FilterState{Mode: ModeStandalone, Status: statusPtr(model.StatusResolved), Category: "Limpieza"}, FormatCSV))
	// category-only skips the status override
	assert.Equal(t, "map_data.csv", Filename(FilterState{CategoryOnly: true, Status: statusPtr(model.StatusActive)}, FormatCSV))
	assert.Equal(t, "reports_limpieza.csv", Filename(FilterState{CategoryOnly: true, Status: statusPtr(model.StatusActive), Category: "Limpieza"}, FormatCSV))
}

func TestExportFilenameMatchesAppliedStages(t *testing.T) {
	art, err := Export(SeedReports(), FilterState{Mode: ModeStandalone, Category: "Limpieza"}, FormatCSV, DefaultResolver())
	require.NoError(t, err)
	assert.Equal(t, 3, art.Count)
	assert.Equal(t, "map_data.csv", art.Filename)

	art, err = Export(SeedReports(), FilterState{CategoryOnly: true, Status: statusPtr(model.StatusActive)}, FormatCSV, DefaultResolver())
	require.NoError(t, err)
	assert.Equal(t, 3, art.Count)
	assert.Equal(t, "map_data.csv", art.Filename)
}

func TestExportNothingToExport(t *testing.T) {
	_, err := Export(SeedReports(), FilterState{Category: "Nope"}, FormatCSV, DefaultResolver())
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestExportArtifact(t *testing.T) {
	art, err := Export(SeedReports(), FilterState{Status: statusPtr(model.StatusResolved)}, FormatGeoJSON, DefaultResolver())
	require.NoError(t, err)
	assert.Equal(t, "reports_resolved.geojson", art.Filename)
	assert.Equal(t, "application/json", art.ContentType)
	assert.Equal(t, 1, art.Count)
	assert.Contains(t, string(art.Body), "Acumulación de basura")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	f, err = ParseFormat("GeoJSON")
	require.NoError(t, err)
	assert.Equal(t, FormatGeoJSON, f)
	_, err = ParseFormat("kml")
	assert.Error(t, err)
}
