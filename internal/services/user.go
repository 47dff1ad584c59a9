package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/normalization"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/types"
	"github.com/emaratgreen/esg-backend/internal/utils"
)

// CreateUserInput is an admin-initiated account creation within a company.
type CreateUserInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Password  string `json:"password"`
}

type UpdateUserInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
}

type UserService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	ListCompanyUsers(ctx context.Context, actor *types.User) ([]*types.User, error)
	CreateUser(ctx context.Context, actor *types.User, input *CreateUserInput) (*types.User, error)
	UpdateUser(ctx context.Context, actor *types.User, targetID uuid.UUID, input *UpdateUserInput) (*types.User, error)
	DeleteUser(ctx context.Context, actor *types.User, targetID uuid.UUID) error
	ResetUserPassword(ctx context.Context, actor *types.User, targetID uuid.UUID, newPassword string) error
	SetUploadedAvatar(ctx context.Context, user *types.User, raw []byte) error
	ManageableRolesFor(role string) []string
}

type userService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	userTokenRepo  repos.UserTokenRepo
	emailTokenRepo repos.EmailTokenRepo
	avatarService  AvatarService
	notifier       Notifier
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	emailTokenRepo repos.EmailTokenRepo,
	avatarService AvatarService,
	notifier Notifier,
) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:             db,
		log:            serviceLog,
		userRepo:       userRepo,
		userTokenRepo:  userTokenRepo,
		emailTokenRepo: emailTokenRepo,
		avatarService:  avatarService,
		notifier:       notifier,
	}
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("retrieving user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("user_not_found", fmt.Errorf("user %s not found", userID))
	}
	return users[0], nil
}

func (us *userService) ListCompanyUsers(ctx context.Context, actor *types.User) ([]*types.User, error) {
	if actor.CompanyID == nil {
		return nil, apierr.Validation("company_required", fmt.Errorf("user has no company"))
	}
	return us.userRepo.GetByCompanyID(ctx, nil, *actor.CompanyID)
}

// requireManageable loads the target user and enforces both company tenancy
// and the role hierarchy.
func (us *userService) requireManageable(ctx context.Context, tx *gorm.DB, actor *types.User, targetID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, tx, []uuid.UUID{targetID})
	if err != nil {
		return nil, fmt.Errorf("retrieving user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("user_not_found", fmt.Errorf("user %s not found", targetID))
	}
	target := users[0]
	if actor.CompanyID == nil || target.CompanyID == nil || *actor.CompanyID != *target.CompanyID {
		return nil, apierr.NotFound("user_not_found", fmt.Errorf("user %s not in company", targetID))
	}
	if !types.CanManage(actor.Role, target.Role) {
		return nil, apierr.Forbidden("role_not_manageable", fmt.Errorf("role %s cannot manage role %s", actor.Role, target.Role))
	}
	return target, nil
}

func (us *userService) CreateUser(ctx context.Context, actor *types.User, input *CreateUserInput) (*types.User, error) {
	if actor.CompanyID == nil {
		return nil, apierr.Validation("company_required", fmt.Errorf("actor has no company"))
	}
	email := normalization.ParseEmail(input.Email)
	if email == "" {
		return nil, apierr.Validation("email_required", fmt.Errorf("email is required"))
	}
	if !types.ValidRole(input.Role) {
		return nil, apierr.Validation("role_invalid", fmt.Errorf("unknown role %q", input.Role))
	}
	if !types.CanManage(actor.Role, input.Role) {
		return nil, apierr.Forbidden("role_not_manageable", fmt.Errorf("role %s cannot create role %s", actor.Role, input.Role))
	}
	exists, err := us.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return nil, apierr.Validation("email_taken", fmt.Errorf("email %s already registered", email))
	}

	password := input.Password
	if password == "" {
		// Invited accounts get a throwaway credential; the invite token is
		// the real entry path.
		password = uuid.New().String()
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  hashed,
		FirstName: normalization.ParseInputString(input.FirstName),
		LastName:  normalization.ParseInputString(input.LastName),
		Role:      input.Role,
		CompanyID: actor.CompanyID,
	}
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := us.avatarService.ApplyGeneratedAvatar(user); err != nil {
			return fmt.Errorf("generating avatar: %w", err)
		}
		if _, err := us.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		invite := &types.EmailToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			Purpose:   types.EmailTokenInvite,
			Token:     uuid.New().String(),
			ExpiresAt: time.Now().Add(emailTokenTTL),
		}
		if _, err := us.emailTokenRepo.Create(ctx, tx, []*types.EmailToken{invite}); err != nil {
			return fmt.Errorf("creating invite token: %w", err)
		}
		if err := us.notifier.SendEmailToken(ctx, user, invite); err != nil {
			us.log.Warn("Invite delivery failed", "user_id", user.ID, "error", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (us *userService) UpdateUser(ctx context.Context, actor *types.User, targetID uuid.UUID, input *UpdateUserInput) (*types.User, error) {
	var target *types.User
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := us.requireManageable(ctx, tx, actor, targetID)
		if err != nil {
			return err
		}
		target = found
		if input.FirstName != nil {
			target.FirstName = normalization.ParseInputString(*input.FirstName)
		}
		if input.LastName != nil {
			target.LastName = normalization.ParseInputString(*input.LastName)
		}
		if input.Role != nil {
			if !types.ValidRole(*input.Role) {
				return apierr.Validation("role_invalid", fmt.Errorf("unknown role %q", *input.Role))
			}
			// The actor must be allowed to grant the new role too.
			if !types.CanManage(actor.Role, *input.Role) {
				return apierr.Forbidden("role_not_manageable", fmt.Errorf("role %s cannot assign role %s", actor.Role, *input.Role))
			}
			target.Role = *input.Role
		}
		return us.userRepo.Update(ctx, tx, target)
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

func (us *userService) DeleteUser(ctx context.Context, actor *types.User, targetID uuid.UUID) error {
	if actor.ID == targetID {
		return apierr.Validation("self_delete", fmt.Errorf("cannot delete own account"))
	}
	return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target, err := us.requireManageable(ctx, tx, actor, targetID)
		if err != nil {
			return err
		}
		if err := us.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{target.ID}); err != nil {
			return fmt.Errorf("revoking sessions: %w", err)
		}
		return us.userRepo.Delete(ctx, tx, []uuid.UUID{target.ID})
	})
}

func (us *userService) ResetUserPassword(ctx context.Context, actor *types.User, targetID uuid.UUID, newPassword string) error {
	if newPassword == "" {
		return apierr.Validation("password_required", fmt.Errorf("new password is required"))
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target, err := us.requireManageable(ctx, tx, actor, targetID)
		if err != nil {
			return err
		}
		target.Password = hashed
		if err := us.userRepo.Update(ctx, tx, target); err != nil {
			return fmt.Errorf("updating password: %w", err)
		}
		return us.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{target.ID})
	})
}

func (us *userService) SetUploadedAvatar(ctx context.Context, user *types.User, raw []byte) error {
	if err := us.avatarService.ApplyUploadedAvatar(user, raw); err != nil {
		return apierr.Validation("avatar_invalid", err)
	}
	return us.userRepo.Update(ctx, nil, user)
}

func (us *userService) ManageableRolesFor(role string) []string {
	return types.ManageableRoles[role]
}
