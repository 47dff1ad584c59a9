package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type ProfileRepo interface {
	GetQuestions(ctx context.Context, tx *gorm.DB) ([]*types.ProfileQuestion, error)
	UpsertQuestion(ctx context.Context, tx *gorm.DB, question *types.ProfileQuestion) (*types.ProfileQuestion, error)
	GetAnswers(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.CompanyProfileAnswer, error)
	UpsertAnswer(ctx context.Context, tx *gorm.DB, answer *types.CompanyProfileAnswer) (*types.CompanyProfileAnswer, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) GetQuestions(ctx context.Context, tx *gorm.DB) ([]*types.ProfileQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.ProfileQuestion
	if err := transaction.WithContext(ctx).
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) UpsertQuestion(ctx context.Context, tx *gorm.DB, question *types.ProfileQuestion) (*types.ProfileQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var existing types.ProfileQuestion
	err := transaction.WithContext(ctx).
		Where("key = ?", question.Key).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if cErr := transaction.WithContext(ctx).Create(question).Error; cErr != nil {
			return nil, cErr
		}
		return question, nil
	}
	if err != nil {
		return nil, err
	}
	question.ID = existing.ID
	question.CreatedAt = existing.CreatedAt
	if uErr := transaction.WithContext(ctx).Save(question).Error; uErr != nil {
		return nil, uErr
	}
	return question, nil
}

// GetAnswers returns the company-wide answers plus, when siteID is set, the
// site-scoped ones. Site answers come last so callers overlaying them into a
// map get site-specific values winning.
func (pr *profileRepo) GetAnswers(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, siteID *uuid.UUID) ([]*types.CompanyProfileAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.CompanyProfileAnswer
	q := transaction.WithContext(ctx).Where("company_id = ?", companyID)
	if siteID != nil {
		q = q.Where("site_id IS NULL OR site_id = ?", *siteID)
	} else {
		q = q.Where("site_id IS NULL")
	}
	// Company-wide rows first so site-scoped answers overwrite them on read.
	if err := q.Order("CASE WHEN site_id IS NULL THEN 0 ELSE 1 END").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) UpsertAnswer(ctx context.Context, tx *gorm.DB, answer *types.CompanyProfileAnswer) (*types.CompanyProfileAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	q := transaction.WithContext(ctx).
		Where("company_id = ? AND question_key = ?", answer.CompanyID, answer.QuestionKey)
	if answer.SiteID != nil {
		q = q.Where("site_id = ?", *answer.SiteID)
	} else {
		q = q.Where("site_id IS NULL")
	}
	var existing types.CompanyProfileAnswer
	err := q.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if cErr := transaction.WithContext(ctx).Create(answer).Error; cErr != nil {
			return nil, cErr
		}
		return answer, nil
	}
	if err != nil {
		return nil, err
	}
	existing.Answer = answer.Answer
	if uErr := transaction.WithContext(ctx).Save(&existing).Error; uErr != nil {
		return nil, uErr
	}
	return &existing, nil
}
