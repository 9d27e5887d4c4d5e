package view

import (
	"errors"
	"georeport/controller"
	"georeport/dto"
	"georeport/mapview"
	"georeport/services"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

func MapViewController(router *gin.Engine, deps *controller.Deps) {
	routes := router.Group("/map/view")
	{
		routes.POST("", func(c *gin.Context) {
			OpenView(c, deps)
		})
		routes.GET("/:vid", func(c *gin.Context) {
			ReadView(c, deps)
		})
		routes.PUT("/:vid/filter", func(c *gin.Context) {
			UpdateViewFilter(c, deps)
		})
		routes.GET("/:vid/stream", func(c *gin.Context) {
			StreamView(c, deps)
		})
		routes.POST("/:vid/export", func(c *gin.Context) {
			ExportView(c, deps)
		})
		routes.DELETE("/:vid", func(c *gin.Context) {
			CloseView(c, deps)
		})
	}
}

func bindFilterBody(c *gin.Context) (services.FilterState, bool) {
	var q dto.FilterQuery
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter", "details": err.Error()})
			return services.FilterState{}, false
		}
	}
	state, err := q.ToFilterState()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter", "details": err.Error()})
		return services.FilterState{}, false
	}
	return state, true
}

func lookup(c *gin.Context, deps *controller.Deps) (*mapview.View, bool) {
	v, err := deps.Views.Get(c.Param("vid"))
	if errors.Is(err, mapview.ErrViewNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "View not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return v, true
}

func respondMarkers(c *gin.Context, v *mapview.View, status int) {
	markers, err := v.Markers(c.Request.Context())
	if errors.Is(err, mapview.ErrViewClosed) {
		c.JSON(http.StatusGone, gin.H{"error": "View closed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reports", "details": err.Error()})
		return
	}
	c.JSON(status, gin.H{
		"view_id": v.ID,
		"filter":  v.Filter(),
		"markers": markers,
		"total":   len(markers),
		"live":    v.Live(),
	})
}

func OpenView(c *gin.Context, deps *controller.Deps) {
	state, ok := bindFilterBody(c)
	if !ok {
		return
	}
	v, err := deps.Views.Open(state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open view", "details": err.Error()})
		return
	}
	respondMarkers(c, v, http.StatusCreated)
}

func ReadView(c *gin.Context, deps *controller.Deps) {
	v, ok := lookup(c, deps)
	if !ok {
		return
	}
	respondMarkers(c, v, http.StatusOK)
}

func UpdateViewFilter(c *gin.Context, deps *controller.Deps) {
	v, ok := lookup(c, deps)
	if !ok {
		return
	}
	state, ok := bindFilterBody(c)
	if !ok {
		return
	}
	if err := v.SetFilter(state); err != nil {
		c.JSON(http.StatusGone, gin.H{"error": "View closed"})
		return
	}
	respondMarkers(c, v, http.StatusOK)
}

// StreamView pushes the marker set as server-sent events until the client
// goes away or the view is closed.
func StreamView(c *gin.Context, deps *controller.Deps) {
	v, ok := lookup(c, deps)
	if !ok {
		return
	}
	updates, cancel, err := v.Subscribe()
	if err != nil {
		c.JSON(http.StatusGone, gin.H{"error": "View closed"})
		return
	}
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case markers, open := <-updates:
			if !open {
				return false
			}
			c.SSEvent("markers", markers)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func ExportView(c *gin.Context, deps *controller.Deps) {
	v, ok := lookup(c, deps)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	format, err := req.ParseFormat()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	art, err := v.Export(c.Request.Context(), format)
	if errors.Is(err, mapview.ErrViewClosed) {
		c.JSON(http.StatusGone, gin.H{"error": "View closed"})
		return
	}
	controller.WriteArtifact(c, art, err)
}

func CloseView(c *gin.Context, deps *controller.Deps) {
	if err := deps.Views.Close(c.Param("vid")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "View not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "View closed"})
}
