package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type SubmissionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, submissions []*types.DataSubmission) ([]*types.DataSubmission, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, submissionIDs []uuid.UUID) ([]*types.DataSubmission, error)
	GetByKey(ctx context.Context, tx *gorm.DB, key types.SubmissionKey) (*types.DataSubmission, error)
	GetForPeriod(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID, year int, period string) ([]*types.DataSubmission, error)
	GetForYear(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID, year int) ([]*types.DataSubmission, error)
	Update(ctx context.Context, tx *gorm.DB, submission *types.DataSubmission) error
	MeterHasData(ctx context.Context, tx *gorm.DB, meterID uuid.UUID) (bool, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	repoLog := baseLog.With("repo", "SubmissionRepo")
	return &submissionRepo{db: db, log: repoLog}
}

func scopeSubmissions(q *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) *gorm.DB {
	q = q.Where("company_id = ?", companyID)
	if siteID != nil {
		return q.Where("site_id = ?", *siteID)
	}
	return q.Where("site_id IS NULL")
}

func (sr *submissionRepo) Create(ctx context.Context, tx *gorm.DB, submissions []*types.DataSubmission) ([]*types.DataSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(submissions) == 0 {
		return []*types.DataSubmission{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (sr *submissionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, submissionIDs []uuid.UUID) ([]*types.DataSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.DataSubmission
	if len(submissionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", submissionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *submissionRepo) GetByKey(ctx context.Context, tx *gorm.DB, key types.SubmissionKey) (*types.DataSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	q := scopeSubmissions(transaction.WithContext(ctx), key.CompanyID, key.SiteID).
		Where("element_id = ? AND reporting_year = ? AND reporting_period = ?", key.ElementID, key.Year, key.Period)
	if key.MeterID != nil {
		q = q.Where("meter_id = ?", *key.MeterID)
	} else {
		q = q.Where("meter_id IS NULL")
	}
	var result types.DataSubmission
	if err := q.First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (sr *submissionRepo) GetForPeriod(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID, year int, period string) ([]*types.DataSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.DataSubmission
	q := scopeSubmissions(transaction.WithContext(ctx), companyID, siteID).
		Where("reporting_year = ? AND reporting_period = ?", year, period)
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *submissionRepo) GetForYear(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID, year int) ([]*types.DataSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.DataSubmission
	q := scopeSubmissions(transaction.WithContext(ctx), companyID, siteID).
		Where("reporting_year = ?", year)
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *submissionRepo) Update(ctx context.Context, tx *gorm.DB, submission *types.DataSubmission) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Save(submission).Error
}

// MeterHasData reports whether any submission carries a non-empty value or
// evidence for the meter. Meters with data cannot be deleted.
func (sr *submissionRepo) MeterHasData(ctx context.Context, tx *gorm.DB, meterID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.DataSubmission{}).
		Where("meter_id = ? AND (value <> '' OR evidence_file <> '')", meterID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
