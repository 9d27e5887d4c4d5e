package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"georeport/model"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var ErrNothingToExport = errors.New("no reports to export")

type Format string

const (
	FormatCSV     Format = "csv"
	FormatGeoJSON Format = "geojson"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatGeoJSON:
		return f, nil
	case "":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) ContentType() string {
	if f == FormatGeoJSON {
		return "application/json"
	}
	return "text/csv"
}

// Artifact is a finished export, ready to be written as an attachment.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
	Count       int
}

var csvHeader = []string{"id", "title", "description", "status", "priority", "category", "location", "date", "latitude", "longitude"}

// EncodeCSV writes one row per report after the header. The header is
// written even when reports is empty.
func EncodeCSV(reports []model.Report, resolver *Resolver) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range reports {
		c := resolver.ResolveReport(r)
		row := []string{
			r.ID,
			r.Title,
			r.Description,
			statusLabel(r.Status),
			string(r.Priority),
			r.Category,
			r.Location.Name,
			dateOnly(r.CreatedAt),
			strconv.FormatFloat(c.Lat, 'f', -1, 64),
			strconv.FormatFloat(c.Lng, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write report %s: %w", r.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeGeoJSON builds a FeatureCollection of points. Positions are
// longitude first.
func EncodeGeoJSON(reports []model.Report, resolver *Resolver) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, r := range reports {
		c := resolver.ResolveReport(r)
		f := geojson.NewFeature(orb.Point{c.Lng, c.Lat})
		f.ID = r.ID
		f.Properties["title"] = r.Title
		f.Properties["description"] = r.Description
		f.Properties["category"] = r.Category
		f.Properties["status"] = statusLabel(r.Status)
		f.Properties["date"] = rfc3339(r.CreatedAt)
		fc.Append(f)
	}
	raw, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal feature collection: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Filename names an export after the narrowest selection Apply actually
// honours. Standalone mode ignores the category; category-only ignores the
// status override.
func Filename(state FilterState, format Format) string {
	base := "map_data"
	standalone := state.Mode == ModeStandalone
	switch {
	case state.Status != nil && (standalone || !state.CategoryOnly):
		base = "reports_" + state.Status.Slug()
	case !standalone && state.ActiveCategory() != "":
		base = "reports_" + slug(state.ActiveCategory())
	}
	return base + format.Extension()
}

// Export filters reports with state and encodes the result.
func Export(reports []model.Report, state FilterState, format Format, resolver *Resolver) (*Artifact, error) {
	visible := Apply(reports, state)
	if len(visible) == 0 {
		return nil, ErrNothingToExport
	}
	return Encode(visible, state, format, resolver)
}

// Encode serializes an already filtered set.
func Encode(visible []model.Report, state FilterState, format Format, resolver *Resolver) (*Artifact, error) {
	if len(visible) == 0 {
		return nil, ErrNothingToExport
	}
	var (
		body []byte
		err  error
	)
	switch format {
	case FormatCSV:
		body, err = EncodeCSV(visible, resolver)
	case FormatGeoJSON:
		body, err = EncodeGeoJSON(visible, resolver)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return &Artifact{
		Filename:    Filename(state, format),
		ContentType: format.ContentType(),
		Body:        body,
		Count:       len(visible),
	}, nil
}

func statusLabel(s model.Status) string {
	if !s.Valid() {
		return ""
	}
	return s.Label()
}

func dateOnly(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

func rfc3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func slug(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "_"))
}
