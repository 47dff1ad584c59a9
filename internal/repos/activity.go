package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type ActivityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error)
	GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Activity, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Activity, error)
	GetForCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CompanyActivity, error)
	ReplaceForCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, activityIDs []uuid.UUID) error
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	repoLog := baseLog.With("repo", "ActivityRepo")
	return &activityRepo{db: db, log: repoLog}
}

func (ar *activityRepo) Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(activities) == 0 {
		return []*types.Activity{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (ar *activityRepo) GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.Activity
	if len(names) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("name IN ?", names).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *activityRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.Activity
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *activityRepo) GetForCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CompanyActivity, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.CompanyActivity
	if err := transaction.WithContext(ctx).
		Preload("Activity").
		Where("company_id = ?", companyID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *activityRepo) ReplaceForCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, activityIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("company_id = ?", companyID).
		Delete(&types.CompanyActivity{}).Error; err != nil {
		return err
	}
	if len(activityIDs) == 0 {
		return nil
	}
	rows := make([]*types.CompanyActivity, 0, len(activityIDs))
	for _, id := range activityIDs {
		rows = append(rows, &types.CompanyActivity{CompanyID: companyID, ActivityID: id})
	}
	return transaction.WithContext(ctx).Create(&rows).Error
}
