package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type AssignmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, assignments []*types.ElementAssignment) ([]*types.ElementAssignment, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) ([]*types.ElementAssignment, error)
	GetByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.ElementAssignment, error)
	GetByAssigneeID(ctx context.Context, tx *gorm.DB, assigneeID uuid.UUID) ([]*types.ElementAssignment, error)
	Exists(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, elementID *uuid.UUID, category string, assigneeID uuid.UUID) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, assignment *types.ElementAssignment) error
	Delete(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) error
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	repoLog := baseLog.With("repo", "AssignmentRepo")
	return &assignmentRepo{db: db, log: repoLog}
}

func (ar *assignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignments []*types.ElementAssignment) ([]*types.ElementAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(assignments) == 0 {
		return []*types.ElementAssignment{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (ar *assignmentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) ([]*types.ElementAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.ElementAssignment
	if len(assignmentIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", assignmentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *assignmentRepo) GetByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.ElementAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.ElementAssignment
	if err := transaction.WithContext(ctx).
		Preload("Element").
		Preload("AssignedTo").
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *assignmentRepo) GetByAssigneeID(ctx context.Context, tx *gorm.DB, assigneeID uuid.UUID) ([]*types.ElementAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.ElementAssignment
	if err := transaction.WithContext(ctx).
		Preload("Element").
		Where("assigned_to_id = ?", assigneeID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *assignmentRepo) Exists(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, elementID *uuid.UUID, category string, assigneeID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.ElementAssignment{}).
		Where("company_id = ? AND assigned_to_id = ?", companyID, assigneeID)
	if elementID != nil {
		q = q.Where("element_id = ?", *elementID)
	} else {
		q = q.Where("element_id IS NULL AND category = ?", category)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ar *assignmentRepo) Update(ctx context.Context, tx *gorm.DB, assignment *types.ElementAssignment) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).Save(assignment).Error
}

func (ar *assignmentRepo) Delete(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(assignmentIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", assignmentIDs).
		Delete(&types.ElementAssignment{}).Error
}
