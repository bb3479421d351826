package dto

import "github.com/lac-hong-legacy/portfolio_api/model"

type LogVisitResponse struct {
	Success       bool `json:"success"`
	IsUniqueVisit bool `json:"isUniqueVisit"`
	TotalVisits   int  `json:"totalVisits"`
	UniqueVisits  int  `json:"uniqueVisits"`
}

type VisitStatsResponse struct {
	Success      bool                `json:"success"`
	TotalVisits  int                 `json:"totalVisits"`
	UniqueVisits int                 `json:"uniqueVisits"`
	RecentVisits []model.VisitRecord `json:"recentVisits"`
}
