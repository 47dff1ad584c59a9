package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type ChecklistRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, items []*types.ChecklistItem) ([]*types.ChecklistItem, error)
	GetForScope(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.ChecklistItem, error)
	DeleteForScope(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) error
	CountForScope(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) (int64, error)
}

type checklistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChecklistRepo(db *gorm.DB, baseLog *logger.Logger) ChecklistRepo {
	repoLog := baseLog.With("repo", "ChecklistRepo")
	return &checklistRepo{db: db, log: repoLog}
}

func scopeChecklist(q *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) *gorm.DB {
	q = q.Where("company_id = ?", companyID)
	if siteID != nil {
		return q.Where("site_id = ?", *siteID)
	}
	return q.Where("site_id IS NULL")
}

func (clr *checklistRepo) CreateBatch(ctx context.Context, tx *gorm.DB, items []*types.ChecklistItem) ([]*types.ChecklistItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = clr.db
	}
	if len(items) == 0 {
		return []*types.ChecklistItem{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (clr *checklistRepo) GetForScope(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.ChecklistItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = clr.db
	}
	var results []*types.ChecklistItem
	q := scopeChecklist(transaction.WithContext(ctx), companyID, siteID)
	if err := q.Preload("Element").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (clr *checklistRepo) DeleteForScope(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = clr.db
	}
	q := scopeChecklist(transaction.WithContext(ctx).Unscoped(), companyID, siteID)
	return q.Delete(&types.ChecklistItem{}).Error
}

func (clr *checklistRepo) CountForScope(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = clr.db
	}
	var count int64
	q := scopeChecklist(transaction.WithContext(ctx).Model(&types.ChecklistItem{}), companyID, siteID)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
