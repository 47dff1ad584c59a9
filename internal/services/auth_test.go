package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/emaratgreen/esg-backend/internal/apierr"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/requestdata"
	"github.com/emaratgreen/esg-backend/internal/types"
)

// captureNotifier records issued email tokens instead of delivering them.
type captureNotifier struct {
	tokens []*types.EmailToken
}

func (cn *captureNotifier) SendEmailToken(_ context.Context, _ *types.User, token *types.EmailToken) error {
	cn.tokens = append(cn.tokens, token)
	return nil
}

func (cn *captureNotifier) last(t *testing.T) *types.EmailToken {
	t.Helper()
	if len(cn.tokens) == 0 {
		t.Fatal("no email token was issued")
	}
	return cn.tokens[len(cn.tokens)-1]
}

func newAuthFixture(t *testing.T) (AuthService, *captureNotifier, repos.UserRepo) {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	emailTokenRepo := repos.NewEmailTokenRepo(gdb, log)
	notifier := &captureNotifier{}
	auth := NewAuthService(gdb, log, userRepo, userTokenRepo, emailTokenRepo,
		NewAvatarService(log), notifier, "test-secret", time.Hour, 24*time.Hour)
	return auth, notifier, userRepo
}

func TestRegisterLoginRefresh(t *testing.T) {
	auth, notifier, _ := newAuthFixture(t)
	ctx := context.Background()

	user := &types.User{
		Email:     "Owner@Example.COM ",
		Password:  "s3cret-pass",
		FirstName: "Amal",
		LastName:  "Haddad",
	}
	if err := auth.RegisterUser(ctx, user); err != nil {
		t.Fatalf("registering: %v", err)
	}
	if user.Email != "owner@example.com" {
		t.Fatalf("email should be normalized, got %q", user.Email)
	}
	if user.Role != types.RoleSuperUser {
		t.Fatalf("first user should default to super_user, got %q", user.Role)
	}
	if user.AvatarDataURL == "" {
		t.Fatal("registration should generate an avatar")
	}
	if tok := notifier.last(t); tok.Purpose != types.EmailTokenVerify {
		t.Fatalf("expected a verification token, got %q", tok.Purpose)
	}

	// Duplicate email is rejected up front.
	dup := &types.User{Email: "owner@example.com", Password: "x"}
	var apiErr *apierr.Error
	if err := auth.RegisterUser(ctx, dup); !errors.As(err, &apiErr) || apiErr.Code != "email_taken" {
		t.Fatalf("expected email_taken, got %v", err)
	}

	if _, _, err := auth.LoginUser(ctx, "owner@example.com", "wrong"); !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("expected 401 for bad password, got %v", err)
	}
	access, refresh, err := auth.LoginUser(ctx, "owner@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("logging in: %v", err)
	}

	authedCtx, err := auth.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("resolving token: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != user.ID || rd.Role != types.RoleSuperUser {
		t.Fatalf("unexpected request data %+v", rd)
	}

	newAccess, newRefresh, err := auth.RefreshUser(authedCtx)
	if err != nil {
		t.Fatalf("refreshing: %v", err)
	}
	if newRefresh == refresh {
		t.Fatal("refresh must rotate the refresh token")
	}

	// The rotated-out access token no longer resolves a session.
	if access != newAccess {
		if _, err := auth.SetContextFromToken(ctx, access); !errors.As(err, &apiErr) || apiErr.Code != "session_revoked" {
			t.Fatalf("expected session_revoked for the old access token, got %v", err)
		}
	}
	if _, err := auth.SetContextFromToken(ctx, newAccess); err != nil {
		t.Fatalf("new access token should resolve: %v", err)
	}
}

func TestVerifyEmailTokenSingleUse(t *testing.T) {
	auth, notifier, userRepo := newAuthFixture(t)
	ctx := context.Background()

	user := &types.User{Email: "guest@example.com", Password: "pass-123"}
	if err := auth.RegisterUser(ctx, user); err != nil {
		t.Fatalf("registering: %v", err)
	}
	token := notifier.last(t)

	if err := auth.VerifyEmail(ctx, token.Token); err != nil {
		t.Fatalf("verifying: %v", err)
	}
	users, err := userRepo.GetByIDs(ctx, nil, []uuid.UUID{user.ID})
	if err != nil || len(users) == 0 {
		t.Fatalf("reloading user: %v", err)
	}
	if !users[0].EmailVerified {
		t.Fatal("user should be verified")
	}

	var apiErr *apierr.Error
	if err := auth.VerifyEmail(ctx, token.Token); !errors.As(err, &apiErr) || apiErr.Code != "token_used" {
		t.Fatalf("expected token_used on reuse, got %v", err)
	}
	if err := auth.VerifyEmail(ctx, "no-such-token"); !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("expected 404 for unknown token, got %v", err)
	}
}

func TestResetPasswordRevokesSessions(t *testing.T) {
	auth, notifier, _ := newAuthFixture(t)
	ctx := context.Background()

	user := &types.User{Email: "staff@example.com", Password: "old-pass"}
	if err := auth.RegisterUser(ctx, user); err != nil {
		t.Fatalf("registering: %v", err)
	}
	access, _, err := auth.LoginUser(ctx, "staff@example.com", "old-pass")
	if err != nil {
		t.Fatalf("logging in: %v", err)
	}

	// Unknown addresses are silently accepted.
	if err := auth.RequestPasswordReset(ctx, "ghost@example.com"); err != nil {
		t.Fatalf("reset for unknown email should not error: %v", err)
	}
	if err := auth.RequestPasswordReset(ctx, "staff@example.com"); err != nil {
		t.Fatalf("requesting reset: %v", err)
	}
	token := notifier.last(t)
	if token.Purpose != types.EmailTokenPasswordReset {
		t.Fatalf("expected a password-reset token, got %q", token.Purpose)
	}

	if err := auth.ResetPassword(ctx, token.Token, "new-pass"); err != nil {
		t.Fatalf("resetting: %v", err)
	}

	var apiErr *apierr.Error
	if _, err := auth.SetContextFromToken(ctx, access); !errors.As(err, &apiErr) || apiErr.Code != "session_revoked" {
		t.Fatalf("expected old session revoked, got %v", err)
	}
	if _, _, err := auth.LoginUser(ctx, "staff@example.com", "old-pass"); !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("old password should be rejected, got %v", err)
	}
	if _, _, err := auth.LoginUser(ctx, "staff@example.com", "new-pass"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
}
