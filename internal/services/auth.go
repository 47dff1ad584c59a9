package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/normalization"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/requestdata"
	"github.com/emaratgreen/esg-backend/internal/types"
	"github.com/emaratgreen/esg-backend/internal/utils"
)

const emailTokenTTL = 48 * time.Hour

type JWTClaims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetAccessTTL() time.Duration
}

type authService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	userTokenRepo  repos.UserTokenRepo
	emailTokenRepo repos.EmailTokenRepo
	avatarService  AvatarService
	notifier       Notifier
	jwtSecretKey   string
	accessTTL      time.Duration
	refreshTTL     time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	emailTokenRepo repos.EmailTokenRepo,
	avatarService AvatarService,
	notifier Notifier,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:             db,
		log:            serviceLog,
		userRepo:       userRepo,
		userTokenRepo:  userTokenRepo,
		emailTokenRepo: emailTokenRepo,
		avatarService:  avatarService,
		notifier:       notifier,
		jwtSecretKey:   jwtSecretKey,
		accessTTL:      accessTTL,
		refreshTTL:     refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	user.Email = normalization.ParseEmail(user.Email)
	user.FirstName = normalization.ParseInputString(user.FirstName)
	user.LastName = normalization.ParseInputString(user.LastName)

	if user.Email == "" || user.Password == "" {
		return apierr.Validation("credentials_required", fmt.Errorf("email and password are required"))
	}
	exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return apierr.Validation("email_taken", fmt.Errorf("email %s already registered", user.Email))
	}

	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.Password = hashed
	if user.Role == "" {
		user.Role = types.RoleSuperUser
	}

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		if err := as.avatarService.ApplyGeneratedAvatar(user); err != nil {
			return fmt.Errorf("generating avatar: %w", err)
		}
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		return as.issueEmailToken(ctx, tx, user, types.EmailTokenVerify)
	})
}

func (as *authService) issueEmailToken(ctx context.Context, tx *gorm.DB, user *types.User, purpose string) error {
	token := &types.EmailToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Purpose:   purpose,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(emailTokenTTL),
	}
	if _, err := as.emailTokenRepo.Create(ctx, tx, []*types.EmailToken{token}); err != nil {
		return fmt.Errorf("creating email token: %w", err)
	}
	if err := as.notifier.SendEmailToken(ctx, user, token); err != nil {
		// Delivery failures must not roll back the signup.
		as.log.Warn("Email token delivery failed", "user_id", user.ID, "error", err)
	}
	return nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = normalization.ParseEmail(email)
	if email == "" || password == "" {
		return "", "", apierr.Validation("credentials_required", fmt.Errorf("email and password are required"))
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("retrieving user by email: %w", err)
	}
	if len(users) == 0 || !utils.CheckPassword(users[0].Password, password) {
		return "", "", apierr.Unauthorized("invalid_credentials", fmt.Errorf("invalid email or password"))
	}
	user := users[0]

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replace any existing session rather than stacking tokens.
		if err := as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID}); err != nil {
			return fmt.Errorf("clearing previous tokens: %w", err)
		}
		tok, err := as.generateAccessToken(user)
		if err != nil {
			return fmt.Errorf("generating access token: %w", err)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		userToken := &types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken}); err != nil {
			return fmt.Errorf("creating user token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return "", "", apierr.Unauthorized("refresh_token_required", fmt.Errorf("no refresh token in request"))
	}

	var accessToken, newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := as.userTokenRepo.GetByRefreshToken(ctx, tx, rd.RefreshToken)
		if err != nil {
			return fmt.Errorf("fetching refresh token: %w", err)
		}
		if existing == nil {
			return apierr.Unauthorized("refresh_token_unknown", fmt.Errorf("refresh token not found"))
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if err := as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{existing.UserID}); err != nil {
				return fmt.Errorf("deleting expired token: %w", err)
			}
			return apierr.Unauthorized("refresh_token_expired", fmt.Errorf("refresh token expired"))
		}
		users, err := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if err != nil || len(users) == 0 {
			return apierr.Unauthorized("user_not_found", fmt.Errorf("no user for refresh token"))
		}
		user := users[0]

		tok, err := as.generateAccessToken(user)
		if err != nil {
			return fmt.Errorf("generating access token: %w", err)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()
		existing.AccessToken = accessToken
		existing.RefreshToken = newRefreshToken
		existing.ExpiresAt = time.Now().Add(as.refreshTTL)
		if err := as.userTokenRepo.Update(ctx, tx, existing); err != nil {
			return fmt.Errorf("rotating user token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.Unauthorized("token_required", fmt.Errorf("no access token in request"))
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := as.userTokenRepo.GetByAccessToken(ctx, tx, rd.TokenString)
		if err != nil {
			return fmt.Errorf("finding user token: %w", err)
		}
		if found == nil {
			return nil
		}
		return as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{found.UserID})
	})
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: user.Role,
	}
	if user.CompanyID != nil {
		claims.CompanyID = user.CompanyID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, apierr.Unauthorized("token_invalid", fmt.Errorf("parsing token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.Unauthorized("token_invalid", fmt.Errorf("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("token_invalid", fmt.Errorf("invalid user id in token: %w", err))
	}

	found, err := as.userTokenRepo.GetByAccessToken(ctx, nil, tokenString)
	if err != nil {
		return ctx, fmt.Errorf("fetching user token: %w", err)
	}
	if found == nil {
		return ctx, apierr.Unauthorized("session_revoked", fmt.Errorf("token no longer active"))
	}

	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: found.RefreshToken,
		UserID:       userID,
		Role:         claims.Role,
	}
	if claims.CompanyID != "" {
		if companyID, err := uuid.Parse(claims.CompanyID); err == nil {
			rd.CompanyID = companyID
		}
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) VerifyEmail(ctx context.Context, token string) error {
	return as.consumeEmailToken(ctx, token, types.EmailTokenVerify, func(tx *gorm.DB, user *types.User) error {
		user.EmailVerified = true
		return as.userRepo.Update(ctx, tx, user)
	})
}

func (as *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalization.ParseEmail(email)
	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return fmt.Errorf("retrieving user by email: %w", err)
	}
	if len(users) == 0 {
		// Do not leak which addresses exist.
		as.log.Info("Password reset requested for unknown email")
		return nil
	}
	user := users[0]
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return as.issueEmailToken(ctx, tx, user, types.EmailTokenPasswordReset)
	})
}

func (as *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return apierr.Validation("password_required", fmt.Errorf("new password is required"))
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return as.consumeEmailToken(ctx, token, types.EmailTokenPasswordReset, func(tx *gorm.DB, user *types.User) error {
		user.Password = hashed
		if err := as.userRepo.Update(ctx, tx, user); err != nil {
			return err
		}
		// Force re-login everywhere after a password change.
		return as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID})
	})
}

func (as *authService) consumeEmailToken(ctx context.Context, token, purpose string, apply func(tx *gorm.DB, user *types.User) error) error {
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := as.emailTokenRepo.GetByToken(ctx, tx, token)
		if err != nil {
			return fmt.Errorf("fetching email token: %w", err)
		}
		if found == nil || found.Purpose != purpose {
			return apierr.NotFound("token_not_found", fmt.Errorf("email token not found"))
		}
		if found.UsedAt != nil {
			return apierr.Validation("token_used", fmt.Errorf("email token already used"))
		}
		if found.ExpiresAt.Before(time.Now()) {
			return apierr.Validation("token_expired", fmt.Errorf("email token expired"))
		}
		users, err := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{found.UserID})
		if err != nil || len(users) == 0 {
			return apierr.NotFound("user_not_found", fmt.Errorf("no user for email token"))
		}
		if err := apply(tx, users[0]); err != nil {
			return err
		}
		return as.emailTokenRepo.MarkUsed(ctx, tx, found)
	})
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
