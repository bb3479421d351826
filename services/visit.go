package services

import (
	"context"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/model"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	log "github.com/sirupsen/logrus"
)

// documentStore is the part of StoreService the domain services depend on.
type documentStore interface {
	Load(ctx context.Context, name string, dest interface{}) error
	Save(ctx context.Context, name string, v interface{}) error
}

// LocationResolver turns a client address into a best-effort location.
type LocationResolver interface {
	Lookup(ctx context.Context, ip string) *model.Location
}

const (
	maxVisitsStored   = 1000
	recentVisitsShown = 10
)

// visitLogDocument is the stored shape; UniqueIPs is the array form of the unique set.
type visitLogDocument struct {
	Visits    []model.VisitRecord `json:"visits"`
	UniqueIPs []string            `json:"uniqueIPs"`
}

type visitLog struct {
	visits    []model.VisitRecord
	uniqueIPs *shared.StringSet
}

func (d visitLogDocument) decode() *visitLog {
	return &visitLog{
		visits:    d.Visits,
		uniqueIPs: shared.NewStringSet(d.UniqueIPs...),
	}
}

func (l *visitLog) encode() visitLogDocument {
	return visitLogDocument{
		Visits:    l.visits,
		UniqueIPs: l.uniqueIPs.Values(),
	}
}

type VisitService struct {
	appContext.DefaultService

	store      documentStore
	locator    LocationResolver
	monitoring *MonitoringService
	maxVisit   int
	now        func() time.Time

	mu sync.Mutex
}

const VISIT_SVC = "visit_svc"

func (svc VisitService) Id() string {
	return VISIT_SVC
}

func (svc *VisitService) Configure(ctx *appContext.Context) error {
	svc.maxVisit = shared.GetEnvInt("VISIT_LOG_MAX", maxVisitsStored)
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *VisitService) Start() error {
	svc.store = svc.Service(STORE_SVC).(*StoreService)
	svc.locator = svc.Service(GEOLOCATION_SVC).(*GeolocationService)
	if monitoringSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoring = monitoringSvc
	}
	return nil
}

func (svc *VisitService) load(ctx context.Context) *visitLog {
	var doc visitLogDocument
	if err := svc.store.Load(ctx, shared.DocumentVisits, &doc); err != nil {
		log.WithError(err).Error("Failed to read visit log, treating as empty")
		return visitLogDocument{}.decode()
	}
	return doc.decode()
}

// LogVisit appends a visit for ip. Unique tracking outlives the capped log.
func (svc *VisitService) LogVisit(ctx context.Context, ip, userAgent, referer string) (*dto.LogVisitResponse, error) {
	var location *model.Location
	if svc.locator != nil {
		location = svc.locator.Lookup(ctx, ip)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	visits := svc.load(ctx)

	isUnique := visits.uniqueIPs.Add(ip)
	visits.visits = append(visits.visits, model.VisitRecord{
		IP:        ip,
		Timestamp: svc.now().UTC(),
		UserAgent: userAgent,
		Location:  location,
		Referer:   referer,
	})
	if overflow := len(visits.visits) - svc.maxVisit; overflow > 0 {
		visits.visits = append([]model.VisitRecord(nil), visits.visits[overflow:]...)
	}

	if err := svc.store.Save(ctx, shared.DocumentVisits, visits.encode()); err != nil {
		return nil, shared.NewInternalError(err, "Failed to log visit")
	}

	log.WithFields(log.Fields{"ip": ip, "unique": isUnique}).Debug("Visit logged")
	svc.monitoring.RecordVisit(isUnique)

	return &dto.LogVisitResponse{
		Success:       true,
		IsUniqueVisit: isUnique,
		TotalVisits:   len(visits.visits),
		UniqueVisits:  visits.uniqueIPs.Len(),
	}, nil
}

func (svc *VisitService) Stats(ctx context.Context) *dto.VisitStatsResponse {
	visits := svc.load(ctx)

	recent := visits.visits
	if len(recent) > recentVisitsShown {
		recent = recent[len(recent)-recentVisitsShown:]
	}

	return &dto.VisitStatsResponse{
		Success:      true,
		TotalVisits:  len(visits.visits),
		UniqueVisits: visits.uniqueIPs.Len(),
		RecentVisits: recent,
	}
}
