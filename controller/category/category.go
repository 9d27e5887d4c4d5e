package category

import (
	"errors"
	"georeport/controller"
	"georeport/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

func CategoryController(router *gin.Engine, deps *controller.Deps) {
	routes := router.Group("/category")
	{
		routes.GET("/all", func(c *gin.Context) {
			ReadAllCategory(c, deps)
		})
		routes.GET("/:categoryid", func(c *gin.Context) {
			ReadCategory(c, deps)
		})
		routes.GET("/:categoryid/reports", func(c *gin.Context) {
			ReadCategoryReport(c, deps)
		})
	}
}

func ReadAllCategory(c *gin.Context, deps *controller.Deps) {
	categories := deps.Categories.ListAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func ReadCategory(c *gin.Context, deps *controller.Deps) {
	category, err := deps.Categories.GetByID(c.Request.Context(), c.Param("categoryid"))
	if errors.Is(err, services.ErrCategoryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get category", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func ReadCategoryReport(c *gin.Context, deps *controller.Deps) {
	category, reports, err := deps.Categories.ReportsByCategory(c.Request.Context(), c.Param("categoryid"))
	if errors.Is(err, services.ErrCategoryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "reports": reports})
}
