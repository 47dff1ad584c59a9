package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type FrameworkService interface {
	// ResolveFrameworkIDs computes the set of frameworks currently applying to
	// a company: the mandatory set derived from its profile plus every
	// voluntary (non-auto) adoption on record.
	ResolveFrameworkIDs(ctx context.Context, tx *gorm.DB, company *types.Company) ([]uuid.UUID, error)
	// AssignMandatoryFrameworks persists the mandatory set as auto-assigned
	// CompanyFramework rows. Idempotent: existing auto rows are wiped first so
	// no stale mandatory assignment survives a profile change.
	AssignMandatoryFrameworks(ctx context.Context, company *types.Company) error
	AddVoluntaryFramework(ctx context.Context, companyID uuid.UUID, frameworkCode string) error
	RemoveVoluntaryFramework(ctx context.Context, companyID uuid.UUID, frameworkCode string) error
	ListForCompany(ctx context.Context, companyID uuid.UUID) ([]*types.CompanyFramework, error)
	ListAll(ctx context.Context) ([]*types.Framework, error)
}

type frameworkService struct {
	db                   *gorm.DB
	log                  *logger.Logger
	frameworkRepo        repos.FrameworkRepo
	companyFrameworkRepo repos.CompanyFrameworkRepo
}

func NewFrameworkService(db *gorm.DB, log *logger.Logger, frameworkRepo repos.FrameworkRepo, companyFrameworkRepo repos.CompanyFrameworkRepo) FrameworkService {
	serviceLog := log.With("service", "FrameworkService")
	return &frameworkService{
		db:                   db,
		log:                  serviceLog,
		frameworkRepo:        frameworkRepo,
		companyFrameworkRepo: companyFrameworkRepo,
	}
}

// mandatoryFrameworks returns the frameworks the company must report under:
// every mandatory framework, plus mandatory_conditional ones whose
// emirate/sector conditions the company meets.
func (fs *frameworkService) mandatoryFrameworks(ctx context.Context, tx *gorm.DB, company *types.Company) ([]*types.Framework, error) {
	candidates, err := fs.frameworkRepo.GetByTypes(ctx, tx, []string{types.FrameworkMandatory, types.FrameworkMandatoryConditional})
	if err != nil {
		return nil, fmt.Errorf("fetching mandatory frameworks: %w", err)
	}
	var results []*types.Framework
	for _, fw := range candidates {
		if fw.Type == types.FrameworkMandatory {
			results = append(results, fw)
			continue
		}
		if fw.ConditionEmirate != "" && !strings.EqualFold(fw.ConditionEmirate, company.Emirate) {
			continue
		}
		if fw.ConditionSector != "" && !strings.EqualFold(fw.ConditionSector, company.Sector) {
			continue
		}
		results = append(results, fw)
	}
	return results, nil
}

func (fs *frameworkService) ResolveFrameworkIDs(ctx context.Context, tx *gorm.DB, company *types.Company) ([]uuid.UUID, error) {
	if company == nil {
		return nil, apierr.Validation("company_required", fmt.Errorf("company is required"))
	}
	mandatory, err := fs.mandatoryFrameworks(ctx, tx, company)
	if err != nil {
		return nil, err
	}
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, fw := range mandatory {
		if _, ok := seen[fw.ID]; !ok {
			seen[fw.ID] = struct{}{}
			ids = append(ids, fw.ID)
		}
	}
	adopted, err := fs.companyFrameworkRepo.GetByCompanyID(ctx, tx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching company frameworks: %w", err)
	}
	for _, cf := range adopted {
		if cf.IsAutoAssigned {
			continue
		}
		if _, ok := seen[cf.FrameworkID]; !ok {
			seen[cf.FrameworkID] = struct{}{}
			ids = append(ids, cf.FrameworkID)
		}
	}
	return ids, nil
}

func (fs *frameworkService) AssignMandatoryFrameworks(ctx context.Context, company *types.Company) error {
	if company == nil {
		return apierr.Validation("company_required", fmt.Errorf("company is required"))
	}
	return fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mandatory, err := fs.mandatoryFrameworks(ctx, tx, company)
		if err != nil {
			return err
		}
		if err := fs.companyFrameworkRepo.DeleteAutoAssigned(ctx, tx, company.ID); err != nil {
			return fmt.Errorf("clearing auto-assigned frameworks: %w", err)
		}
		existing, err := fs.companyFrameworkRepo.GetByCompanyID(ctx, tx, company.ID)
		if err != nil {
			return err
		}
		voluntary := map[uuid.UUID]struct{}{}
		for _, cf := range existing {
			voluntary[cf.FrameworkID] = struct{}{}
		}
		var rows []*types.CompanyFramework
		for _, fw := range mandatory {
			// A voluntary adoption of a now-mandatory framework stays voluntary.
			if _, ok := voluntary[fw.ID]; ok {
				continue
			}
			rows = append(rows, &types.CompanyFramework{
				CompanyID:      company.ID,
				FrameworkID:    fw.ID,
				IsAutoAssigned: true,
			})
		}
		if _, err := fs.companyFrameworkRepo.Create(ctx, tx, rows); err != nil {
			return fmt.Errorf("assigning mandatory frameworks: %w", err)
		}
		fs.log.Info("Mandatory frameworks assigned", "company_id", company.ID, "count", len(rows))
		return nil
	})
}

func (fs *frameworkService) AddVoluntaryFramework(ctx context.Context, companyID uuid.UUID, frameworkCode string) error {
	frameworks, err := fs.frameworkRepo.GetByCodes(ctx, nil, []string{frameworkCode})
	if err != nil {
		return err
	}
	if len(frameworks) == 0 {
		return apierr.NotFound("framework_not_found", fmt.Errorf("framework %q not found", frameworkCode))
	}
	fw := frameworks[0]
	exists, err := fs.companyFrameworkRepo.Exists(ctx, nil, companyID, fw.ID)
	if err != nil {
		return err
	}
	if exists {
		return apierr.Validation("framework_already_adopted", fmt.Errorf("framework %q already adopted", frameworkCode))
	}
	_, err = fs.companyFrameworkRepo.Create(ctx, nil, []*types.CompanyFramework{{
		CompanyID:      companyID,
		FrameworkID:    fw.ID,
		IsAutoAssigned: false,
	}})
	return err
}

func (fs *frameworkService) RemoveVoluntaryFramework(ctx context.Context, companyID uuid.UUID, frameworkCode string) error {
	frameworks, err := fs.frameworkRepo.GetByCodes(ctx, nil, []string{frameworkCode})
	if err != nil {
		return err
	}
	if len(frameworks) == 0 {
		return apierr.NotFound("framework_not_found", fmt.Errorf("framework %q not found", frameworkCode))
	}
	return fs.companyFrameworkRepo.DeleteVoluntary(ctx, nil, companyID, frameworks[0].ID)
}

func (fs *frameworkService) ListForCompany(ctx context.Context, companyID uuid.UUID) ([]*types.CompanyFramework, error) {
	return fs.companyFrameworkRepo.GetByCompanyID(ctx, nil, companyID)
}

func (fs *frameworkService) ListAll(ctx context.Context) ([]*types.Framework, error) {
	return fs.frameworkRepo.GetAll(ctx, nil)
}
