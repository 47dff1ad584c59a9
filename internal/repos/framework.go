package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type FrameworkRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, frameworkIDs []uuid.UUID) ([]*types.Framework, error)
	GetByCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.Framework, error)
	GetByTypes(ctx context.Context, tx *gorm.DB, frameworkTypes []string) ([]*types.Framework, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Framework, error)
	UpsertByCode(ctx context.Context, tx *gorm.DB, framework *types.Framework) (*types.Framework, error)
}

type frameworkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFrameworkRepo(db *gorm.DB, baseLog *logger.Logger) FrameworkRepo {
	repoLog := baseLog.With("repo", "FrameworkRepo")
	return &frameworkRepo{db: db, log: repoLog}
}

func (fr *frameworkRepo) GetByIDs(ctx context.Context, tx *gorm.DB, frameworkIDs []uuid.UUID) ([]*types.Framework, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Framework
	if len(frameworkIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", frameworkIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *frameworkRepo) GetByCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.Framework, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Framework
	if len(codes) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("code IN ?", codes).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *frameworkRepo) GetByTypes(ctx context.Context, tx *gorm.DB, frameworkTypes []string) ([]*types.Framework, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Framework
	if len(frameworkTypes) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("type IN ?", frameworkTypes).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *frameworkRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Framework, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Framework
	if err := transaction.WithContext(ctx).
		Order("code ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *frameworkRepo) UpsertByCode(ctx context.Context, tx *gorm.DB, framework *types.Framework) (*types.Framework, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var existing types.Framework
	err := transaction.WithContext(ctx).
		Where("code = ?", framework.Code).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if cErr := transaction.WithContext(ctx).Create(framework).Error; cErr != nil {
			return nil, cErr
		}
		return framework, nil
	}
	if err != nil {
		return nil, err
	}
	framework.ID = existing.ID
	framework.CreatedAt = existing.CreatedAt
	if uErr := transaction.WithContext(ctx).Save(framework).Error; uErr != nil {
		return nil, uErr
	}
	return framework, nil
}
