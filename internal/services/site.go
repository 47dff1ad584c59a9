package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/normalization"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type CreateSiteInput struct {
	Name    string `json:"name"`
	Emirate string `json:"emirate"`
}

type UpdateSiteInput struct {
	Name     *string `json:"name"`
	Emirate  *string `json:"emirate"`
	IsActive *bool   `json:"is_active"`
}

type SiteService interface {
	CreateSite(ctx context.Context, company *types.Company, input *CreateSiteInput) (*types.Site, error)
	GetSite(ctx context.Context, companyID, siteID uuid.UUID) (*types.Site, error)
	ListSites(ctx context.Context, companyID uuid.UUID) ([]*types.Site, error)
	UpdateSite(ctx context.Context, company *types.Company, siteID uuid.UUID, input *UpdateSiteInput) (*types.Site, error)
	DeleteSite(ctx context.Context, companyID, siteID uuid.UUID) error
}

type siteService struct {
	db               *gorm.DB
	log              *logger.Logger
	siteRepo         repos.SiteRepo
	checklistService ChecklistService
	meterService     MeterService
}

func NewSiteService(
	db *gorm.DB,
	log *logger.Logger,
	siteRepo repos.SiteRepo,
	checklistService ChecklistService,
	meterService MeterService,
) SiteService {
	serviceLog := log.With("service", "SiteService")
	return &siteService{
		db:               db,
		log:              serviceLog,
		siteRepo:         siteRepo,
		checklistService: checklistService,
		meterService:     meterService,
	}
}

// CreateSite adds a site and immediately derives its checklist and meters so
// the new scope is usable without a separate refresh call.
func (ss *siteService) CreateSite(ctx context.Context, company *types.Company, input *CreateSiteInput) (*types.Site, error) {
	name := normalization.ParseInputString(input.Name)
	if name == "" {
		return nil, apierr.Validation("name_required", fmt.Errorf("site name is required"))
	}
	exists, err := ss.siteRepo.NameExists(ctx, nil, company.ID, name)
	if err != nil {
		return nil, fmt.Errorf("checking site name: %w", err)
	}
	if exists {
		return nil, apierr.Validation("site_exists", fmt.Errorf("site %q already exists", name))
	}

	site := &types.Site{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Name:      name,
		Emirate:   strings.ToLower(normalization.ParseInputString(input.Emirate)),
		IsActive:  true,
	}
	if _, err := ss.siteRepo.Create(ctx, nil, []*types.Site{site}); err != nil {
		return nil, fmt.Errorf("creating site: %w", err)
	}

	siteID := site.ID
	if _, err := ss.checklistService.Generate(ctx, company, &siteID); err != nil {
		return nil, fmt.Errorf("generating site checklist: %w", err)
	}
	if _, err := ss.meterService.ProvisionMeters(ctx, company, &siteID); err != nil {
		return nil, fmt.Errorf("provisioning site meters: %w", err)
	}
	return site, nil
}

func (ss *siteService) GetSite(ctx context.Context, companyID, siteID uuid.UUID) (*types.Site, error) {
	sites, err := ss.siteRepo.GetByIDs(ctx, nil, []uuid.UUID{siteID})
	if err != nil {
		return nil, fmt.Errorf("retrieving site: %w", err)
	}
	if len(sites) == 0 || sites[0].CompanyID != companyID {
		return nil, apierr.NotFound("site_not_found", fmt.Errorf("site %s not found", siteID))
	}
	return sites[0], nil
}

func (ss *siteService) ListSites(ctx context.Context, companyID uuid.UUID) ([]*types.Site, error) {
	return ss.siteRepo.GetByCompanyID(ctx, nil, companyID)
}

func (ss *siteService) UpdateSite(ctx context.Context, company *types.Company, siteID uuid.UUID, input *UpdateSiteInput) (*types.Site, error) {
	site, err := ss.GetSite(ctx, company.ID, siteID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := normalization.ParseInputString(*input.Name)
		if name == "" {
			return nil, apierr.Validation("name_required", fmt.Errorf("site name is required"))
		}
		site.Name = name
	}
	if input.Emirate != nil {
		site.Emirate = strings.ToLower(normalization.ParseInputString(*input.Emirate))
	}
	if input.IsActive != nil {
		site.IsActive = *input.IsActive
	}
	if err := ss.siteRepo.Update(ctx, nil, site); err != nil {
		return nil, fmt.Errorf("updating site: %w", err)
	}
	return site, nil
}

func (ss *siteService) DeleteSite(ctx context.Context, companyID, siteID uuid.UUID) error {
	site, err := ss.GetSite(ctx, companyID, siteID)
	if err != nil {
		return err
	}
	// Site-scoped checklist, answers, meters and submissions cascade off the
	// site row.
	return ss.siteRepo.Delete(ctx, nil, []uuid.UUID{site.ID})
}
