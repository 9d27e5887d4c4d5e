package mapview

import (
	"context"
	"georeport/model"
	"georeport/services"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func next(t *testing.T, ch <-chan []Marker) []Marker {
	t.Helper()
	select {
	case m, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return m
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for markers")
		return nil
	}
}

func markerIDs(ms []Marker) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

type fixture struct {
	clock    *clockwork.FakeClock
	store    *services.MemoryStore
	notifier *services.LogNotifier
	registry *Registry
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		clock:    clockwork.NewFakeClock(),
		store:    services.NewMemoryStore(services.SeedReports()),
		notifier: &services.LogNotifier{},
	}
	f.registry = NewRegistry(context.Background(), f.store, services.DefaultResolver(), f.notifier, Options{Clock: f.clock, Interval: 5 * time.Second})
	t.Cleanup(f.registry.CloseAll)
	return f
}

func TestViewRefreshesMarkers(t *testing.T) {
	f := newFixture(t)
	v, err := f.registry.Open(services.FilterState{Category: "Alumbrado"})
	require.NoError(t, err)

	updates, cancel, err := v.Subscribe()
	require.NoError(t, err)
	defer cancel()

	first := next(t, updates)
	require.Equal(t, []string{"2"}, markerIDs(first))
	assert.Equal(t, -33.44, first[0].Lat)
	assert.Equal(t, -70.65, first[0].Lng)
	assert.Equal(t, "In Progress", first[0].StatusLabel)

	_, err = f.store.CreateReport(context.Background(), model.Report{ID: "9", Category: "Alumbrado", Location: model.LabelLocation("Plaza Central")})
	require.NoError(t, err)

	ctx, stop := context.WithTimeout(context.Background(), waitFor)
	defer stop()
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	f.clock.Advance(5 * time.Second)

	second := next(t, updates)
	assert.Equal(t, []string{"2", "9"}, markerIDs(second))
	assert.Equal(t, -33.445, second[1].Lat)
}

func TestViewSetFilterPublishes(t *testing.T) {
	f := newFixture(t)
	v, err := f.registry.Open(services.FilterState{})
	require.NoError(t, err)
	updates, cancel, err := v.Subscribe()
	require.NoError(t, err)
	defer cancel()
	assert.Len(t, next(t, updates), 3)

	resolved := model.StatusResolved
	require.NoError(t, v.SetFilter(services.FilterState{Status: &resolved}))
	assert.Equal(t, []string{"3"}, markerIDs(next(t, updates)))

	markers, err := v.Markers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, markerIDs(markers))
}

func TestViewExport(t *testing.T) {
	f := newFixture(t)
	v, err := f.registry.Open(services.FilterState{Categories: []string{"Limpieza"}})
	require.NoError(t, err)

	art, err := v.Export(context.Background(), services.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "reports_limpieza.csv", art.Filename)
	assert.Equal(t, "text/csv", art.ContentType)
	assert.Contains(t, string(art.Body), "Acumulación de basura")

	require.NoError(t, v.SetFilter(services.FilterState{Category: "Nada"}))
	_, err = v.Export(context.Background(), services.FormatGeoJSON)
	assert.ErrorIs(t, err, services.ErrNothingToExport)

	notes := f.notifier.Recent()
	require.Len(t, notes, 2)
	assert.Equal(t, services.NoticeSuccess, notes[0].Kind)
	assert.Equal(t, services.NothingToExportNotice(), notes[1])
}

func TestViewCloseStopsEverything(t *testing.T) {
	f := newFixture(t)
	v, err := f.registry.Open(services.FilterState{})
	require.NoError(t, err)
	updates, _, err := v.Subscribe()
	require.NoError(t, err)
	next(t, updates)
	assert.True(t, v.Live())

	require.NoError(t, f.registry.Close(v.ID))
	assert.False(t, v.Live())

	_, ok := <-updates
	assert.False(t, ok)
	assert.ErrorIs(t, v.SetFilter(services.FilterState{}), ErrViewClosed)
	_, err = v.Markers(context.Background())
	assert.ErrorIs(t, err, ErrViewClosed)
	_, _, err = v.Subscribe()
	assert.ErrorIs(t, err, ErrViewClosed)

	f.clock.Advance(time.Minute)
	_, err = f.registry.Get(v.ID)
	assert.ErrorIs(t, err, ErrViewNotFound)
	assert.ErrorIs(t, f.registry.Close(v.ID), ErrViewNotFound)
}

func TestRegistryCloseAll(t *testing.T) {
	f := newFixture(t)
	a, err := f.registry.Open(services.FilterState{})
	require.NoError(t, err)
	b, err := f.registry.Open(services.FilterState{})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, f.registry.Len())

	got, err := f.registry.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	f.registry.CloseAll()
	assert.Equal(t, 0, f.registry.Len())
	assert.False(t, a.Live())
	assert.False(t, b.Live())
}
