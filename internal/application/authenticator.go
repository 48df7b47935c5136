package application

import (
	"context"
	"errors"

	"github.com/oktaviandi/auth-portal/internal/domain/entity"
	repo "github.com/oktaviandi/auth-portal/internal/domain/repository"
	"github.com/oktaviandi/auth-portal/internal/oauth"
	"github.com/oktaviandi/auth-portal/pkg/helpers"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password, so
	// a failed login does not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotLinkable is returned when a Google login matches an
	// existing local-password account and auto-linking is disabled.
	ErrAccountNotLinkable = errors.New("account exists with a local password")
)

// LocalAuthenticator verifies email/password credentials against the store.
type LocalAuthenticator struct {
	Repo repo.UserRepository
}

// Attempt looks up the user by email and compares the supplied password
// against the stored bcrypt hash. The sentinel password stored for
// Google-only accounts is not a valid hash, so it never matches.
func (a *LocalAuthenticator) Attempt(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := a.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GoogleAuthenticator verifies a profile obtained from the Google
// authorization-code exchange, creating the account on first login.
type GoogleAuthenticator struct {
	Repo repo.UserRepository
	// AutoLink controls whether a Google login may authenticate an
	// existing account that was created with a local password. Emails from
	// the provider are taken at face value, so disabling this closes the
	// account-takeover window at the cost of blocking legitimate linking.
	AutoLink bool
}

// Attempt looks up the user by the profile email. A previously-unseen email
// creates a new account with the sentinel password; a known email
// authenticates the existing record.
func (a *GoogleAuthenticator) Attempt(ctx context.Context, profile *oauth.Profile) (*entity.User, bool, error) {
	u, err := a.Repo.GetByEmail(ctx, profile.Email)
	if err == nil {
		if !a.AutoLink && u.Password != helpers.SentinelPassword {
			return nil, false, ErrAccountNotLinkable
		}
		return u, false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, err
	}

	u = &entity.User{
		Email:    profile.Email,
		FullName: profile.Name,
		Password: helpers.SentinelPassword,
	}
	if err := a.Repo.Create(ctx, u); err != nil {
		// Lost a race with a concurrent first login for the same email.
		if errors.Is(err, repo.ErrDuplicateEmail) {
			existing, gerr := a.Repo.GetByEmail(ctx, profile.Email)
			if gerr != nil {
				return nil, false, gerr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return u, true, nil
}
