package services

import (
	"georeport/model"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedReports is the mock data set the in-memory store starts with.
func SeedReports() []model.Report {
	return []model.Report{
		{
			ID:          "1",
			Title:       "Bache en la calle principal",
			Description: "Hay un bache grande en la intersección",
			Status:      model.StatusPending,
			Category:    "Infraestructura",
			Priority:    model.PriorityHigh,
			Location:    model.PointLocation("Calle Principal #123", -33.4489, -70.6693),
			Tags:        []string{"urgent", "road"},
			CreatedAt:   day("2024-01-15"),
		},
		{
			ID:          "2",
			Title:       "Luminaria dañada",
			Description: "Falla en el alumbrado público",
			Status:      model.StatusActive,
			Category:    "Alumbrado",
			Priority:    model.PriorityMedium,
			Location:    model.PointLocation("Av. Libertador #456", -33.4400, -70.6500),
			Tags:        []string{"lights", "safety"},
			CreatedAt:   day("2024-01-16"),
		},
		{
			ID:          "3",
			Title:       "Acumulación de basura",
			Description: "Basura sin recoger por varios días",
			Status:      model.StatusResolved,
			Category:    "Limpieza",
			Location:    model.LabelLocation("Plaza Central"),
			Tags:        []string{"cleaning", "health"},
			CreatedAt:   day("2024-01-17"),
		},
	}
}

// SeedCategories is the category list kept alongside the mock reports.
func SeedCategories() []model.Category {
	return []model.Category{
		{ID: "1", Name: "Infraestructura", Description: "Reportes relacionados con infraestructura urbana", Color: "#3b82f6", Icon: "building", Active: true},
		{ID: "2", Name: "Medio Ambiente", Description: "Reportes de problemas ambientales", Color: "#10b981", Icon: "tree", Active: true},
		{ID: "3", Name: "Seguridad", Description: "Reportes relacionados con seguridad ciudadana", Color: "#ef4444", Icon: "shield", Active: true},
	}
}

// LocalCategories is the static fallback list shipped with the service. It
// overlaps SeedCategories by id on purpose and adds the labels the mock
// reports use.
func LocalCategories() []model.Category {
	return []model.Category{
		{ID: "1", Name: "Infraestructura", Description: "Reportes relacionados con infraestructura urbana", Color: "#3b82f6", Icon: "building", Active: true},
		{ID: "2", Name: "Medio Ambiente", Description: "Reportes de problemas ambientales", Color: "#10b981", Icon: "tree", Active: true},
		{ID: "3", Name: "Seguridad", Description: "Reportes relacionados con seguridad ciudadana", Color: "#ef4444", Icon: "shield", Active: true},
		{ID: "4", Name: "Alumbrado", Description: "Fallas de alumbrado público", Color: "#f59e0b", Icon: "lightbulb", Active: true},
		{ID: "5", Name: "Limpieza", Description: "Recolección de basura y aseo", Color: "#8b5cf6", Icon: "trash", Active: true},
	}
}
