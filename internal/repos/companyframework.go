package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type CompanyFrameworkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.CompanyFramework) ([]*types.CompanyFramework, error)
	GetByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CompanyFramework, error)
	Exists(ctx context.Context, tx *gorm.DB, companyID, frameworkID uuid.UUID) (bool, error)
	DeleteAutoAssigned(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) error
	DeleteVoluntary(ctx context.Context, tx *gorm.DB, companyID, frameworkID uuid.UUID) error
}

type companyFrameworkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyFrameworkRepo(db *gorm.DB, baseLog *logger.Logger) CompanyFrameworkRepo {
	repoLog := baseLog.With("repo", "CompanyFrameworkRepo")
	return &companyFrameworkRepo{db: db, log: repoLog}
}

func (cfr *companyFrameworkRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.CompanyFramework) ([]*types.CompanyFramework, error) {
	transaction := tx
	if transaction == nil {
		transaction = cfr.db
	}
	if len(rows) == 0 {
		return []*types.CompanyFramework{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (cfr *companyFrameworkRepo) GetByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CompanyFramework, error) {
	transaction := tx
	if transaction == nil {
		transaction = cfr.db
	}
	var results []*types.CompanyFramework
	if err := transaction.WithContext(ctx).
		Preload("Framework").
		Where("company_id = ?", companyID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cfr *companyFrameworkRepo) Exists(ctx context.Context, tx *gorm.DB, companyID, frameworkID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cfr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CompanyFramework{}).
		Where("company_id = ? AND framework_id = ?", companyID, frameworkID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteAutoAssigned removes only the resolver-owned rows; voluntary opt-ins
// are untouched.
func (cfr *companyFrameworkRepo) DeleteAutoAssigned(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cfr.db
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("company_id = ? AND is_auto_assigned = ?", companyID, true).
		Delete(&types.CompanyFramework{}).Error
}

func (cfr *companyFrameworkRepo) DeleteVoluntary(ctx context.Context, tx *gorm.DB, companyID, frameworkID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cfr.db
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("company_id = ? AND framework_id = ? AND is_auto_assigned = ?", companyID, frameworkID, false).
		Delete(&types.CompanyFramework{}).Error
}
