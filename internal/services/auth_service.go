package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/supabase-community/gotrue-go/types"

	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	repo       models.AuthRepo
	favourites *FavouriteService
	logger     *slog.Logger
}

func NewAuthService(repo models.AuthRepo, favourites *FavouriteService, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{repo: repo, favourites: favourites, logger: logger}
}

// Login signs the user in and folds their remote favourites into the
// session. A failed merge does not fail the login.
func (as *AuthService) Login(ctx context.Context, session, email, password string) (*types.TokenResponse, []int64, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := as.repo.AuthenticateUser(ctx, email, password)
	if err != nil {
		as.logger.Info("Login rejected", "email", email, "error", err)
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if token == nil || token.AccessToken == "" {
		return nil, nil, errors.New("invalid token response")
	}

	identity := Identity{UserID: token.User.ID, AccessToken: token.AccessToken}
	favs, err := as.favourites.OnLogin(ctx, session, identity)
	if err != nil {
		as.logger.Warn("Favourites merge failed on login", "user_id", identity.UserID, "error", err)
		favs = as.favourites.List(session)
	}
	return token, favs, nil
}

func (as *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, errors.New("refresh token is empty")
	}
	return as.repo.RefreshToken(ctx, refreshToken)
}
