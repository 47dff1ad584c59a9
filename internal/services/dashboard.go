package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	redisclient "github.com/emaratgreen/esg-backend/internal/clients/redis"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
)

const dashboardCacheTTL = 5 * time.Minute

// DashboardSummary is the landing-page aggregate for one company scope.
type DashboardSummary struct {
	Year             int                `json:"year"`
	FrameworkCount   int                `json:"framework_count"`
	ChecklistCount   int                `json:"checklist_count"`
	MeterCount       int                `json:"meter_count"`
	ActiveMeterCount int                `json:"active_meter_count"`
	CategoryCounts   map[string]int     `json:"category_counts"`
	YearToDate       *ProgressSummary   `json:"year_to_date"`
	MonthlySeries    []*ProgressSummary `json:"monthly_series"`
}

type DashboardService interface {
	Summary(ctx context.Context, company *types.Company, year int, siteID *uuid.UUID) (*DashboardSummary, error)
	Invalidate(ctx context.Context, companyID uuid.UUID)
}

type dashboardService struct {
	db                    *gorm.DB
	log                   *logger.Logger
	cache                 *redisclient.Cache
	companyFrameworkRepo  repos.CompanyFrameworkRepo
	checklistRepo         repos.ChecklistRepo
	meterRepo             repos.MeterRepo
	dataCollectionService DataCollectionService
}

func NewDashboardService(
	db *gorm.DB,
	log *logger.Logger,
	cache *redisclient.Cache,
	companyFrameworkRepo repos.CompanyFrameworkRepo,
	checklistRepo repos.ChecklistRepo,
	meterRepo repos.MeterRepo,
	dataCollectionService DataCollectionService,
) DashboardService {
	serviceLog := log.With("service", "DashboardService")
	return &dashboardService{
		db:                    db,
		log:                   serviceLog,
		cache:                 cache,
		companyFrameworkRepo:  companyFrameworkRepo,
		checklistRepo:         checklistRepo,
		meterRepo:             meterRepo,
		dataCollectionService: dataCollectionService,
	}
}

func dashboardCacheKey(companyID uuid.UUID, year int, siteID *uuid.UUID) string {
	scope := "company"
	if siteID != nil {
		scope = siteID.String()
	}
	return fmt.Sprintf("dashboard:%s:%d:%s", companyID, year, scope)
}

func (d *dashboardService) Summary(ctx context.Context, company *types.Company, year int, siteID *uuid.UUID) (*DashboardSummary, error) {
	key := dashboardCacheKey(company.ID, year, siteID)
	var cached DashboardSummary
	hit, err := d.cache.Get(ctx, key, &cached)
	if err != nil {
		d.log.Warn("Dashboard cache read failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	summary := &DashboardSummary{Year: year, CategoryCounts: map[string]int{}}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		rows, err := d.companyFrameworkRepo.GetByCompanyID(groupCtx, nil, company.ID)
		if err != nil {
			return fmt.Errorf("counting frameworks: %w", err)
		}
		summary.FrameworkCount = len(rows)
		return nil
	})
	group.Go(func() error {
		items, err := d.checklistRepo.GetForScope(groupCtx, nil, company.ID, siteID)
		if err != nil {
			return fmt.Errorf("counting checklist: %w", err)
		}
		summary.ChecklistCount = len(items)
		for _, item := range items {
			if item.Element != nil {
				summary.CategoryCounts[item.Element.Category]++
			}
		}
		return nil
	})
	group.Go(func() error {
		meters, err := d.meterRepo.GetForScope(groupCtx, nil, company.ID, siteID)
		if err != nil {
			return fmt.Errorf("counting meters: %w", err)
		}
		summary.MeterCount = len(meters)
		for _, meter := range meters {
			if meter.Status == types.MeterStatusActive {
				summary.ActiveMeterCount++
			}
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Progress math mutates submission rows (find-or-create), so it runs
	// after the read-only fan-out rather than inside it.
	ytd, err := d.dataCollectionService.YearProgress(ctx, company, year, siteID)
	if err != nil {
		return nil, err
	}
	summary.YearToDate = ytd
	series, err := d.dataCollectionService.MonthlySeries(ctx, company, year, siteID)
	if err != nil {
		return nil, err
	}
	summary.MonthlySeries = series

	if err := d.cache.Set(ctx, key, summary, dashboardCacheTTL); err != nil {
		d.log.Warn("Dashboard cache write failed", "key", key, "error", err)
	}
	return summary, nil
}

func (d *dashboardService) Invalidate(ctx context.Context, companyID uuid.UUID) {
	if err := d.cache.DeleteByPrefix(ctx, fmt.Sprintf("dashboard:%s:", companyID)); err != nil {
		d.log.Warn("Dashboard cache invalidation failed", "company_id", companyID, "error", err)
	}
}
