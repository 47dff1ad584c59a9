package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type MeterRepo interface {
	Create(ctx context.Context, tx *gorm.DB, meters []*types.Meter) ([]*types.Meter, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, meterIDs []uuid.UUID) ([]*types.Meter, error)
	GetForScope(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.Meter, error)
	GetActiveForScope(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.Meter, error)
	TypeExists(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID, meterType string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, meter *types.Meter) error
	Delete(ctx context.Context, tx *gorm.DB, meterIDs []uuid.UUID) error
}

type meterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMeterRepo(db *gorm.DB, baseLog *logger.Logger) MeterRepo {
	repoLog := baseLog.With("repo", "MeterRepo")
	return &meterRepo{db: db, log: repoLog}
}

func scopeMeters(q *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) *gorm.DB {
	q = q.Where("company_id = ?", companyID)
	if siteID != nil {
		return q.Where("site_id = ?", *siteID)
	}
	return q.Where("site_id IS NULL")
}

func (mr *meterRepo) Create(ctx context.Context, tx *gorm.DB, meters []*types.Meter) ([]*types.Meter, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if len(meters) == 0 {
		return []*types.Meter{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&meters).Error; err != nil {
		return nil, err
	}
	return meters, nil
}

func (mr *meterRepo) GetByIDs(ctx context.Context, tx *gorm.DB, meterIDs []uuid.UUID) ([]*types.Meter, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Meter
	if len(meterIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", meterIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *meterRepo) GetForScope(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.Meter, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Meter
	q := scopeMeters(transaction.WithContext(ctx), companyID, siteID)
	if err := q.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *meterRepo) GetActiveForScope(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.Meter, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Meter
	q := scopeMeters(transaction.WithContext(ctx), companyID, siteID).
		Where("status = ?", types.MeterStatusActive)
	if err := q.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *meterRepo) TypeExists(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID, meterType string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var count int64
	q := scopeMeters(transaction.WithContext(ctx).Model(&types.Meter{}), companyID, siteID).
		Where("type = ?", meterType)
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (mr *meterRepo) Update(ctx context.Context, tx *gorm.DB, meter *types.Meter) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).Save(meter).Error
}

func (mr *meterRepo) Delete(ctx context.Context, tx *gorm.DB, meterIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if len(meterIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", meterIDs).
		Delete(&types.Meter{}).Error
}
