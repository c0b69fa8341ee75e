package sso

import (
	"context"
	"strings"

	"savornshare/internal/models"
	"savornshare/internal/repository"
	"savornshare/internal/token"
)

// Bridge maps a verified third-party identity to a local user record,
// creating one on first login, and issues a session token for it.
type Bridge struct {
	users  repository.UserRepository
	tokens *token.Service
}

// NewBridge creates a Bridge over the given user store and token service.
func NewBridge(users repository.UserRepository, tokens *token.Service) *Bridge {
	return &Bridge{users: users, tokens: tokens}
}

// Establish finds or creates the local user for the identity and issues a
// federated-lifetime session token. The email lookup is case-normalized,
// matching the registration path. Nothing is created unless the whole
// sequence succeeds; a token issuance failure for a freshly created user
// still leaves a valid user record, which the next login reuses.
func (b *Bridge) Establish(ctx context.Context, identity *Identity) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))

	user, err := b.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}

	if user == nil {
		user = &models.User{
			Name:         identity.Name,
			Email:        email,
			ProfileImage: identity.Picture,
			IsGoogleUser: true,
		}
		if user.ProfileImage == "" {
			user.ProfileImage = models.DefaultAvatarURL
		}
		if err := b.users.Create(ctx, user); err != nil {
			return nil, "", err
		}
	}

	raw, err := b.tokens.Issue(user.ID, user.Name, token.FederatedTTL)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	return user, raw, nil
}
