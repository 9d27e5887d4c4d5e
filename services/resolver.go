package services

import (
	"georeport/model"
	"log"
	"math"
	"strings"
)

// DefaultCoordinate is where unknown labels land: central Santiago.
var DefaultCoordinate = model.Coordinate{Lat: -33.4489, Lng: -70.6693}

// knownLocations is the fixed label table the map falls back on when a
// producer only sent a text label.
var knownLocations = map[string]model.Coordinate{
	"calle principal #123": {Lat: -33.4489, Lng: -70.6693},
	"av. libertador #456":  {Lat: -33.4400, Lng: -70.6500},
	"plaza central":        {Lat: -33.4450, Lng: -70.6600},
	"parque forestal":      {Lat: -33.4356, Lng: -70.6406},
	"estacion central":     {Lat: -33.4516, Lng: -70.6786},
	"cerro santa lucia":    {Lat: -33.4405, Lng: -70.6437},
}

// Resolver turns report locations into coordinates. It never fails: unknown
// labels degrade to the fallback coordinate.
type Resolver struct {
	table    map[string]model.Coordinate
	fallback model.Coordinate
}

func NewResolver(table map[string]model.Coordinate, fallback model.Coordinate) *Resolver {
	t := make(map[string]model.Coordinate, len(table))
	for label, c := range table {
		t[normalizeLabel(label)] = c
	}
	return &Resolver{table: t, fallback: fallback}
}

func DefaultResolver() *Resolver {
	return NewResolver(knownLocations, DefaultCoordinate)
}

// Resolve looks a free-text label up in the table.
func (r *Resolver) Resolve(label string) model.Coordinate {
	if c, ok := r.table[normalizeLabel(label)]; ok {
		return c
	}
	return r.fallback
}

// ResolveLocation passes structured locations through, zeroing any axis that
// is missing or not a finite number, and resolves bare labels.
func (r *Resolver) ResolveLocation(loc model.Location) model.Coordinate {
	if !loc.Structured() {
		return r.Resolve(loc.Name)
	}
	lat, latOK := axis(loc.Lat)
	lng, lngOK := axis(loc.Lng)
	if !latOK || !lngOK {
		log.Printf("resolver: location %q has invalid coordinates (lat ok=%t, lng ok=%t), using 0", loc.Name, latOK, lngOK)
	}
	return model.Coordinate{Lat: lat, Lng: lng}
}

func (r *Resolver) ResolveReport(report model.Report) model.Coordinate {
	return r.ResolveLocation(report.Location)
}

func axis(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
