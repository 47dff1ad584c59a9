package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type CompanyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, companies []*types.Company) ([]*types.Company, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, companyIDs []uuid.UUID) ([]*types.Company, error)
	GetByOwnerID(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Company, error)
	NameExistsForOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, company *types.Company) error
}

type companyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyRepo(db *gorm.DB, baseLog *logger.Logger) CompanyRepo {
	repoLog := baseLog.With("repo", "CompanyRepo")
	return &companyRepo{db: db, log: repoLog}
}

func (cr *companyRepo) Create(ctx context.Context, tx *gorm.DB, companies []*types.Company) ([]*types.Company, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(companies) == 0 {
		return []*types.Company{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (cr *companyRepo) GetByIDs(ctx context.Context, tx *gorm.DB, companyIDs []uuid.UUID) ([]*types.Company, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Company
	if len(companyIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", companyIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *companyRepo) GetByOwnerID(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Company, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Company
	if err := transaction.WithContext(ctx).
		Where("owner_user_id = ?", ownerID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *companyRepo) NameExistsForOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Company{}).
		Where("owner_user_id = ? AND name = ?", ownerID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (cr *companyRepo) Update(ctx context.Context, tx *gorm.DB, company *types.Company) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).Save(company).Error
}
