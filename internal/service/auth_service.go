package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"family-memories/internal/mail"
	"family-memories/internal/model"
	"family-memories/pkg/apierror"
)

// bcryptCost is deliberately the moderate work factor; this is a low-traffic
// family app, not a bank.
const bcryptCost = 10

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthService struct {
	users    UserStore
	resets   ResetTokenStore
	mailer   mail.Mailer
	frontend string
	resetTTL time.Duration
}

func NewAuthService(users UserStore, resets ResetTokenStore, mailer mail.Mailer, frontendURL string, resetTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		resets:   resets,
		mailer:   mailer,
		frontend: strings.TrimRight(frontendURL, "/"),
		resetTTL: resetTTL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, email string, password string, name string) (model.User, error) {
	email = normalizeEmail(email)
	if !emailShape.MatchString(email) {
		return model.User{}, apierror.New("BAD_REQUEST", "a valid email address is required", "", http.StatusBadRequest)
	}
	if password == "" {
		return model.User{}, apierror.New("BAD_REQUEST", "a password is required", "", http.StatusBadRequest)
	}

	exists, err := s.users.EmailAccountExists(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if exists {
		return model.User{}, apierror.New("ALREADY_EXISTS", "an account with this email already exists", "", http.StatusConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	// A member who first logged in with Google or GitHub can claim the same
	// address by email: attach the hash to the existing row instead of
	// forking a second identity with split content.
	existing, err := s.users.FindPasswordlessByEmail(ctx, email)
	if err == nil {
		if err := s.users.UpdatePassword(ctx, existing.ID, string(hash)); err != nil {
			return model.User{}, err
		}
		existing.PasswordHash = string(hash)
		return existing, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, err
	}

	now := time.Now().UTC()
	u := model.User{
		ID:             ulid.Make().String(),
		Provider:       model.ProviderEmail,
		ProviderUserID: email,
		Email:          email,
		Name:           strings.TrimSpace(name),
		PasswordHash:   string(hash),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return model.User{}, err
	}

	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (model.User, error) {
	// One generic message for every failure mode: never reveal which half
	// of the pair was wrong, or whether the account exists at all.
	invalid := apierror.New("UNAUTHORIZED", "invalid email or password", "", http.StatusUnauthorized)

	u, err := s.users.FindEmailAccount(ctx, normalizeEmail(email))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, invalid
	}
	if err != nil {
		return model.User{}, err
	}

	if u.PasswordHash == "" {
		return model.User{}, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return model.User{}, invalid
	}

	return u, nil
}

// RequestReset always succeeds from the caller's point of view; a token and
// an email only happen when an eligible account exists (enumeration defense).
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	u, err := s.users.FindEmailAccount(ctx, normalizeEmail(email))
	if errors.Is(err, model.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	t := model.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: time.Now().UTC().Add(s.resetTTL),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.resets.Create(ctx, t); err != nil {
		return err
	}

	link := s.frontend + "/reset-password?token=" + t.Token
	body := fmt.Sprintf(
		`<p>Someone asked to reset the password for your Family Memories account.</p>
<p><a href="%s">Choose a new password</a> (the link works once and expires in %s).</p>
<p>If this wasn't you, ignore this email.</p>`, link, s.resetTTL)

	if err := s.mailer.Send(ctx, u.Email, "Reset your password", body); err != nil {
		// Still success-shaped: a distinct failure here would confirm the
		// address has an account.
		slog.Error("sending reset email failed", "error", err)
	}

	return nil
}

func (s *AuthService) ConfirmReset(ctx context.Context, tokenValue string, newPassword string) (model.User, error) {
	invalid := apierror.New("BAD_REQUEST", "this reset link is invalid or has expired", "", http.StatusBadRequest)

	if strings.TrimSpace(tokenValue) == "" || newPassword == "" {
		return model.User{}, apierror.New("BAD_REQUEST", "token and password are required", "", http.StatusBadRequest)
	}

	t, err := s.resets.Find(ctx, tokenValue)
	if errors.Is(err, model.ErrResetTokenNotFound) {
		return model.User{}, invalid
	}
	if err != nil {
		return model.User{}, err
	}
	if t.UsedAt != nil || time.Now().UTC().After(t.ExpiresAt) {
		return model.User{}, invalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	// Consume first so two concurrent confirms can't both win.
	if err := s.resets.MarkUsed(ctx, t.Token); err != nil {
		return model.User{}, invalid
	}
	if err := s.users.UpdatePassword(ctx, t.UserID, string(hash)); err != nil {
		return model.User{}, err
	}

	if purged, err := s.resets.DeleteExpired(ctx); err != nil {
		slog.Warn("purging expired reset tokens failed", "error", err)
	} else if purged > 0 {
		slog.Info("purged expired reset tokens", "count", purged)
	}

	return s.users.FindByID(ctx, t.UserID)
}

func (s *AuthService) GetUser(ctx context.Context, id string) (model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *AuthService) UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (model.User, error) {
	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	name := current.Name
	picture := current.PictureURL
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if req.PictureURL != nil {
		picture = strings.TrimSpace(*req.PictureURL)
	}

	return s.users.UpdateProfile(ctx, id, name, picture)
}
