package services

import "georeport/model"

type ReportStats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	Active       int `json:"active"`
	Resolved     int `json:"resolved"`
	Rejected     int `json:"rejected"`
	HighPriority int `json:"high_priority"`
}

func Stats(reports []model.Report) ReportStats {
	var s ReportStats
	for _, r := range reports {
		s.Total++
		switch r.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusActive:
			s.Active++
		case model.StatusResolved:
			s.Resolved++
		case model.StatusRejected:
			s.Rejected++
		}
		if r.Priority == model.PriorityHigh {
			s.HighPriority++
		}
	}
	return s
}
