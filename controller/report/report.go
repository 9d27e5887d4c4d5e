package report

import (
	"errors"
	"georeport/controller"
	"georeport/dto"
	"georeport/middleware"
	"georeport/model"
	"georeport/services"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func ReportController(router *gin.Engine, deps *controller.Deps) {
	routes := router.Group("/report")
	{
		routes.GET("/allreport", func(c *gin.Context) {
			ReadAllReport(c, deps)
		})
		routes.GET("/stats", func(c *gin.Context) {
			ReportStats(c, deps)
		})
		routes.GET("/export", func(c *gin.Context) {
			ExportReports(c, deps)
		})
		routes.GET("/:rid", func(c *gin.Context) {
			ReadReport(c, deps)
		})
		routes.POST("/send", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
			ReportSending(c, deps)
		})
		routes.PUT("/status/:rid", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware(), func(c *gin.Context) {
			UpdateReportStatus(c, deps)
		})
		routes.DELETE("/delete/:rid", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware(), func(c *gin.Context) {
			DeleteReport(c, deps)
		})
		routes.POST("/import", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware(), func(c *gin.Context) {
			ImportReports(c, deps)
		})
	}
}

// bindFilter reads the filter from the query string.
func bindFilter(c *gin.Context) (services.FilterState, bool) {
	var q dto.FilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter", "details": err.Error()})
		return services.FilterState{}, false
	}
	q.ExpandCategories()
	state, err := q.ToFilterState()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter", "details": err.Error()})
		return services.FilterState{}, false
	}
	return state, true
}

func filteredReports(c *gin.Context, deps *controller.Deps) ([]model.Report, services.FilterState, bool) {
	state, ok := bindFilter(c)
	if !ok {
		return nil, state, false
	}
	reports, err := deps.Store.ListReports(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reports", "details": err.Error()})
		return nil, state, false
	}
	return services.Apply(reports, state), state, true
}

func ReadAllReport(c *gin.Context, deps *controller.Deps) {
	reports, _, ok := filteredReports(c, deps)
	if !ok {
		return
	}

	reportList := make([]gin.H, 0, len(reports))
	for _, r := range reports {
		coord := deps.Resolver.ResolveReport(r)
		reportList = append(reportList, gin.H{
			"id":           r.ID,
			"title":        r.Title,
			"description":  r.Description,
			"category":     r.Category,
			"status":       r.Status,
			"status_label": r.Status.Label(),
			"color":        r.Status.Color(),
			"priority":     r.Priority,
			"location":     r.Location,
			"lat":          coord.Lat,
			"lng":          coord.Lng,
			"tags":         r.Tags,
			"assigned_to":  r.AssignedTo,
			"created_at":   r.CreatedAt,
			"updated_at":   r.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"reports": reportList, "total": len(reportList)})
}

func ReportStats(c *gin.Context, deps *controller.Deps) {
	reports, _, ok := filteredReports(c, deps)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, services.Stats(reports))
}

func ExportReports(c *gin.Context, deps *controller.Deps) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	format, err := req.ParseFormat()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reports, state, ok := filteredReports(c, deps)
	if !ok {
		return
	}

	art, err := services.Encode(reports, state, format, deps.Resolver)
	switch {
	case errors.Is(err, services.ErrNothingToExport):
		deps.Notify(c.Request.Context(), services.NothingToExportNotice())
	case err == nil:
		deps.Notify(c.Request.Context(), services.ExportedNotice(art))
	}
	controller.WriteArtifact(c, art, err)
}

func ReadReport(c *gin.Context, deps *controller.Deps) {
	report, err := deps.Store.GetReport(c.Request.Context(), c.Param("rid"))
	if errors.Is(err, services.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": err.Error()})
		return
	}
	coord := deps.Resolver.ResolveReport(*report)
	c.JSON(http.StatusOK, gin.H{"report": report, "coordinate": coord})
}

func ReportSending(c *gin.Context, deps *controller.Deps) {
	var reportdata dto.CreateReportRequest
	if err := c.ShouldBindJSON(&reportdata); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	report, err := reportdata.ToReport()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	created, err := deps.Store.CreateReport(ctx, report)
	if errors.Is(err, services.ErrReportExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "Report already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save report", "details": err.Error()})
		return
	}
	log.Printf("report %s filed by user %v", created.ID, c.MustGet("userId"))

	if deps.Mirror != nil {
		if err := deps.Mirror.Mirror(ctx, *created); err != nil {
			log.Printf("Failed to mirror report to Firestore: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report sent successfully!", "report": created})
}

func UpdateReportStatus(c *gin.Context, deps *controller.Deps) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	updated, err := deps.Store.UpdateStatus(ctx, c.Param("rid"), status, req.AssignedTo)
	if errors.Is(err, services.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update report", "details": err.Error()})
		return
	}

	if deps.Mirror != nil {
		if err := deps.Mirror.Mirror(ctx, *updated); err != nil {
			log.Printf("Failed to mirror report to Firestore: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report updated successfully!", "report": updated})
}

func DeleteReport(c *gin.Context, deps *controller.Deps) {
	reportID := c.Param("rid")
	ctx := c.Request.Context()

	if err := deps.Store.DeleteReport(ctx, reportID); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report", "details": err.Error()})
		return
	}

	if deps.Mirror != nil {
		if err := deps.Mirror.Remove(ctx, reportID); err != nil {
			log.Printf("Failed to remove mirrored report: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully!"})
}

// ImportReports imports a JSON array from the body, or runs the import
// directory job when the body is empty.
func ImportReports(c *gin.Context, deps *controller.Deps) {
	ctx := c.Request.Context()

	if c.Request.ContentLength > 0 {
		var reports []model.Report
		if err := c.ShouldBindJSON(&reports); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		added, err := deps.Store.Import(ctx, reports)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import reports", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Import finished", "added": added, "received": len(reports)})
		return
	}

	if deps.Importer == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Import directory not configured"})
		return
	}
	res, err := deps.Importer.ImportDir(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import reports", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Import finished", "result": res})
}
