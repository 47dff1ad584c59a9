package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
)

// ChecklistService materializes the resolved element set into checklist rows.
// Regeneration is an atomic replace: inside one transaction the old rows are
// deleted and the new set inserted, so readers never observe a half-built
// checklist. Row ids change on every run; nothing may reference them.
type ChecklistService interface {
	Generate(ctx context.Context, company *types.Company, siteID *uuid.UUID) ([]*types.ChecklistItem, error)
	Get(ctx context.Context, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.ChecklistItem, error)
}

type checklistService struct {
	db            *gorm.DB
	log           *logger.Logger
	processor     FrameworkProcessor
	checklistRepo repos.ChecklistRepo
}

func NewChecklistService(db *gorm.DB, log *logger.Logger, processor FrameworkProcessor, checklistRepo repos.ChecklistRepo) ChecklistService {
	serviceLog := log.With("service", "ChecklistService")
	return &checklistService{
		db:            db,
		log:           serviceLog,
		processor:     processor,
		checklistRepo: checklistRepo,
	}
}

func (cs *checklistService) Generate(ctx context.Context, company *types.Company, siteID *uuid.UUID) ([]*types.ChecklistItem, error) {
	var items []*types.ChecklistItem
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		elements, err := cs.processor.ResolveElements(ctx, tx, company, siteID)
		if err != nil {
			return err
		}
		if err := cs.checklistRepo.DeleteForScope(ctx, tx, company.ID, siteID); err != nil {
			return fmt.Errorf("clearing checklist: %w", err)
		}
		rows := make([]*types.ChecklistItem, 0, len(elements))
		for _, element := range elements {
			cadence := element.Cadence
			if cadence == "" {
				cadence = types.CadenceAnnually
			}
			rows = append(rows, &types.ChecklistItem{
				CompanyID:   company.ID,
				SiteID:      siteID,
				ElementID:   element.ID,
				FrameworkID: element.FrameworkID,
				Cadence:     cadence,
			})
		}
		created, err := cs.checklistRepo.CreateBatch(ctx, tx, rows)
		if err != nil {
			return fmt.Errorf("inserting checklist: %w", err)
		}
		items = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	cs.log.Info("Checklist generated", "company_id", company.ID, "items", len(items))
	return items, nil
}

func (cs *checklistService) Get(ctx context.Context, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.ChecklistItem, error) {
	return cs.checklistRepo.GetForScope(ctx, nil, companyID, siteID)
}
