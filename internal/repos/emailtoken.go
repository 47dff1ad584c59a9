package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type EmailTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tokens []*types.EmailToken) ([]*types.EmailToken, error)
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*types.EmailToken, error)
	MarkUsed(ctx context.Context, tx *gorm.DB, token *types.EmailToken) error
	DeleteExpired(ctx context.Context, tx *gorm.DB) error
}

type emailTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmailTokenRepo(db *gorm.DB, baseLog *logger.Logger) EmailTokenRepo {
	repoLog := baseLog.With("repo", "EmailTokenRepo")
	return &emailTokenRepo{db: db, log: repoLog}
}

func (r *emailTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*types.EmailToken) ([]*types.EmailToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(tokens) == 0 {
		return []*types.EmailToken{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *emailTokenRepo) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*types.EmailToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.EmailToken
	if err := transaction.WithContext(ctx).
		Where("token = ?", token).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *emailTokenRepo) MarkUsed(ctx context.Context, tx *gorm.DB, token *types.EmailToken) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	token.UsedAt = &now
	return transaction.WithContext(ctx).Save(token).Error
}

func (r *emailTokenRepo) DeleteExpired(ctx context.Context, tx *gorm.DB) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&types.EmailToken{}).Error
}
