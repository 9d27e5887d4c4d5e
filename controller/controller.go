package controller

import (
	"context"
	"errors"
	"georeport/mapview"
	"georeport/services"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Deps is everything the route handlers need. Mirror may be nil.
type Deps struct {
	Store      services.ReportStore
	Categories *services.CategoryService
	Views      *mapview.Registry
	Importer   *services.Importer
	Notifier   services.Notifier
	Mirror     services.ReportMirror
	Resolver   *services.Resolver
}

// Notify sends a notice and only logs a failure.
func (d *Deps) Notify(ctx context.Context, n services.Notice) {
	if d.Notifier == nil {
		return
	}
	if err := d.Notifier.Notify(ctx, n); err != nil {
		log.Printf("notice failed: %v", err)
	}
}

// WriteArtifact answers with the export as a download, or with the
// nothing-to-export notice.
func WriteArtifact(c *gin.Context, art *services.Artifact, err error) {
	if errors.Is(err, services.ErrNothingToExport) {
		c.JSON(http.StatusOK, gin.H{"message": "Nothing to export", "notice": services.NothingToExportNotice()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export reports", "details": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	c.Data(http.StatusOK, art.ContentType+"; charset=utf-8", art.Body)
}
