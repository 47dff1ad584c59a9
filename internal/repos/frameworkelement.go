package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type FrameworkElementRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, elementIDs []uuid.UUID) ([]*types.FrameworkElement, error)
	GetCandidates(ctx context.Context, tx *gorm.DB, frameworkIDs []uuid.UUID, sectors []string) ([]*types.FrameworkElement, error)
	GetByFrameworkIDs(ctx context.Context, tx *gorm.DB, frameworkIDs []uuid.UUID) ([]*types.FrameworkElement, error)
	UpsertByCode(ctx context.Context, tx *gorm.DB, element *types.FrameworkElement) (*types.FrameworkElement, error)
}

type frameworkElementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFrameworkElementRepo(db *gorm.DB, baseLog *logger.Logger) FrameworkElementRepo {
	repoLog := baseLog.With("repo", "FrameworkElementRepo")
	return &frameworkElementRepo{db: db, log: repoLog}
}

func (er *frameworkElementRepo) GetByIDs(ctx context.Context, tx *gorm.DB, elementIDs []uuid.UUID) ([]*types.FrameworkElement, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []*types.FrameworkElement
	if len(elementIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", elementIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetCandidates returns the elements of the given frameworks whose sector is
// one of the given sectors. This is the candidate set for applicability
// resolution.
func (er *frameworkElementRepo) GetCandidates(ctx context.Context, tx *gorm.DB, frameworkIDs []uuid.UUID, sectors []string) ([]*types.FrameworkElement, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []*types.FrameworkElement
	if len(frameworkIDs) == 0 {
		return results, nil
	}
	q := transaction.WithContext(ctx).Where("framework_id IN ?", frameworkIDs)
	if len(sectors) > 0 {
		q = q.Where("sector IN ?", sectors)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *frameworkElementRepo) GetByFrameworkIDs(ctx context.Context, tx *gorm.DB, frameworkIDs []uuid.UUID) ([]*types.FrameworkElement, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []*types.FrameworkElement
	if len(frameworkIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("framework_id IN ?", frameworkIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *frameworkElementRepo) UpsertByCode(ctx context.Context, tx *gorm.DB, element *types.FrameworkElement) (*types.FrameworkElement, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var existing types.FrameworkElement
	err := transaction.WithContext(ctx).
		Where("code = ?", element.Code).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if cErr := transaction.WithContext(ctx).Create(element).Error; cErr != nil {
			return nil, cErr
		}
		return element, nil
	}
	if err != nil {
		return nil, err
	}
	element.ID = existing.ID
	element.CreatedAt = existing.CreatedAt
	if uErr := transaction.WithContext(ctx).Save(element).Error; uErr != nil {
		return nil, uErr
	}
	return element, nil
}
