package services

import (
	"context"
	"fmt"
	"georeport/model"

	"cloud.google.com/go/firestore"
)

// ReportMirror copies reports somewhere the mobile clients listen on.
type ReportMirror interface {
	Mirror(ctx context.Context, report model.Report) error
	Remove(ctx context.Context, id string) error
}

// FirestoreMirror keeps a Reports/<id> document per report.
type FirestoreMirror struct {
	Client   *firestore.Client
	Resolver *Resolver
}

func (m FirestoreMirror) Mirror(ctx context.Context, report model.Report) error {
	resolver := m.Resolver
	if resolver == nil {
		resolver = DefaultResolver()
	}
	c := resolver.ResolveReport(report)
	doc := map[string]interface{}{
		"ReportID":    report.ID,
		"Title":       report.Title,
		"Description": report.Description,
		"Category":    report.Category,
		"Status":      string(report.Status),
		"Color":       report.Status.Color(),
		"Location":    report.Location.Name,
		"Lat":         c.Lat,
		"Lng":         c.Lng,
		"CreateAt":    report.CreatedAt,
		"updatedAt":   firestore.ServerTimestamp,
	}
	if _, err := m.Client.Collection("Reports").Doc(report.ID).Set(ctx, doc, firestore.MergeAll); err != nil {
		return fmt.Errorf("mirror report %s: %w", report.ID, err)
	}
	return nil
}

func (m FirestoreMirror) Remove(ctx context.Context, id string) error {
	if _, err := m.Client.Collection("Reports").Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("remove mirrored report %s: %w", id, err)
	}
	return nil
}
