package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type SiteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sites []*types.Site) ([]*types.Site, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, siteIDs []uuid.UUID) ([]*types.Site, error)
	GetByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Site, error)
	NameExists(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, name string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, site *types.Site) error
	Delete(ctx context.Context, tx *gorm.DB, siteIDs []uuid.UUID) error
}

type siteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSiteRepo(db *gorm.DB, baseLog *logger.Logger) SiteRepo {
	repoLog := baseLog.With("repo", "SiteRepo")
	return &siteRepo{db: db, log: repoLog}
}

func (sr *siteRepo) Create(ctx context.Context, tx *gorm.DB, sites []*types.Site) ([]*types.Site, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(sites) == 0 {
		return []*types.Site{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}

func (sr *siteRepo) GetByIDs(ctx context.Context, tx *gorm.DB, siteIDs []uuid.UUID) ([]*types.Site, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Site
	if len(siteIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", siteIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *siteRepo) GetByCompanyID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Site, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Site
	if err := transaction.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *siteRepo) NameExists(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, name string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Site{}).
		Where("company_id = ? AND name = ?", companyID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (sr *siteRepo) Update(ctx context.Context, tx *gorm.DB, site *types.Site) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Save(site).Error
}

func (sr *siteRepo) Delete(ctx context.Context, tx *gorm.DB, siteIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(siteIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", siteIDs).
		Delete(&types.Site{}).Error
}
