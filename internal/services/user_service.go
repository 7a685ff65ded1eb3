// Package services – UserService
//
// This file implements the session and profile use cases. Login exchanges a
// verified identity-provider token for a pair of session tokens and creates
// the user on first sight; refresh trades a refresh token for a new access
// token. Profiles carry the derived like and submission counters.
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/auth"
	"github.com/tbourn/go-quotes-backend/internal/config"
	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Session is the result of a successful login.
type Session struct {
	Profile *domain.UserProfile
	Access  auth.Issued
	Refresh auth.Issued
}

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	Name       *string
	PictureURL *string
}

// UserService implements login, token refresh and profile operations.
type UserService struct {
	DB       *gorm.DB
	Verifier auth.IdentityVerifier
	Tokens   *auth.TokenCodec
	Auth     config.AuthConfig
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, v auth.IdentityVerifier, tokens *auth.TokenCodec, cfg config.AuthConfig) *UserService {
	return &UserService{DB: db, Verifier: v, Tokens: tokens, Auth: cfg}
}

func userTracer() trace.Tracer { return otel.Tracer("services/UserService") }

// Login verifies idToken and opens a session for the user it names,
// creating the user on first login. Admin rights are granted at creation
// when the verified email is in the configured admin list.
func (s *UserService) Login(ctx context.Context, idToken string) (*Session, error) {
	ctx, span := userTracer().Start(ctx, "Login")
	defer span.End()

	id, err := s.Verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return nil, err
	}

	u, err := s.findOrCreate(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user.id", int64(u.ID)))

	access, err := s.Tokens.Issue(u.ID, u.IsAdmin, auth.AccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.Issue(u.ID, u.IsAdmin, auth.RefreshToken)
	if err != nil {
		return nil, err
	}
	profile, err := s.profile(ctx, u)
	if err != nil {
		return nil, err
	}
	loggerFrom(ctx).Info().Uint("user_id", u.ID).Bool("admin", u.IsAdmin).Msg("session opened")
	return &Session{Profile: profile, Access: access, Refresh: refresh}, nil
}

func (s *UserService) findOrCreate(ctx context.Context, id auth.Identity) (*domain.User, error) {
	u, err := repo.GetUserByIdentity(ctx, s.DB, id.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	name := SanitizeText(id.Name)
	if r := []rune(name); len(r) > MaxNameRunes {
		name = string(r[:MaxNameRunes])
	}
	picture, perr := cleanURL("picture_url", id.Picture)
	if perr != nil {
		picture = ""
	}
	u = &domain.User{
		IdentityID: id.Subject,
		Email:      id.Email,
		Name:       name,
		PictureURL: picture,
		IsAdmin:    s.Auth.IsAdminEmail(id.Email),
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		// A concurrent first login for the same subject won the insert.
		if errors.Is(err, repo.ErrDuplicate) {
			return repo.GetUserByIdentity(ctx, s.DB, id.Subject)
		}
		return nil, err
	}
	return u, nil
}

// Refresh trades a valid refresh token for a new access token. Admin rights
// are re-read from the store.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (auth.Issued, error) {
	ctx, span := userTracer().Start(ctx, "Refresh")
	defer span.End()

	claims, err := s.Tokens.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		return auth.Issued{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	uid, _ := claims.UserID()
	u, err := repo.GetUser(ctx, s.DB, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return auth.Issued{}, ErrUnauthenticated
		}
		return auth.Issued{}, err
	}
	if err := Authorize(Caller{UserID: u.ID, Admin: u.IsAdmin}, ActRefreshSession); err != nil {
		return auth.Issued{}, err
	}
	return s.Tokens.Issue(u.ID, u.IsAdmin, auth.AccessToken)
}

// Revoke ends caller's session. Tokens are stateless, so this only checks
// that a session exists; the transport clears the cookies.
func (s *UserService) Revoke(_ context.Context, caller Caller) error {
	return Authorize(caller, ActRevokeSession)
}

// Me returns caller's own profile.
func (s *UserService) Me(ctx context.Context, caller Caller) (*domain.UserProfile, error) {
	if err := Authorize(caller, ActViewOwnProfile); err != nil {
		return nil, err
	}
	return s.load(ctx, caller.UserID)
}

// Get returns the profile of user id. Callers may always read their own
// profile; other profiles are admin only.
func (s *UserService) Get(ctx context.Context, caller Caller, id uint) (*domain.UserProfile, error) {
	ctx, span := userTracer().Start(ctx, "Get",
		trace.WithAttributes(attribute.Int64("user.id", int64(id))),
	)
	defer span.End()

	if caller.Authenticated() && caller.UserID == id {
		return s.Me(ctx, caller)
	}
	if err := Authorize(caller, ActViewAnyProfile); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// UpdateProfile changes caller's display name and/or picture.
func (s *UserService) UpdateProfile(ctx context.Context, caller Caller, in ProfileInput) (*domain.UserProfile, error) {
	if err := Authorize(caller, ActEditOwnProfile); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Name != nil {
		v, err := cleanRequired("name", *in.Name, MaxNameRunes)
		if err != nil {
			return nil, err
		}
		fields["name"] = v
	}
	if in.PictureURL != nil {
		v, err := cleanURL("picture_url", *in.PictureURL)
		if err != nil {
			return nil, err
		}
		fields["picture_url"] = v
	}
	if err := repo.UpdateUserFields(ctx, s.DB, caller.UserID, fields); err != nil {
		return nil, translateRepoErr(err, ErrUserNotFound)
	}
	return s.load(ctx, caller.UserID)
}

func (s *UserService) load(ctx context.Context, id uint) (*domain.UserProfile, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		return nil, translateRepoErr(err, ErrUserNotFound)
	}
	return s.profile(ctx, u)
}

func (s *UserService) profile(ctx context.Context, u *domain.User) (*domain.UserProfile, error) {
	likes, err := repo.CountLikesByUser(ctx, s.DB, u.ID)
	if err != nil {
		return nil, err
	}
	submitted, err := repo.CountSubmitted(ctx, s.DB, u.ID)
	if err != nil {
		return nil, err
	}
	return &domain.UserProfile{User: *u, TotalLikes: likes, TotalSubmitted: submitted}, nil
}
