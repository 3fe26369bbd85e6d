// Package services holds login, registration and token verification.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dipaca/autolavado/internal/lib/apperr"
	"github.com/dipaca/autolavado/internal/lib/jwt"
	"github.com/dipaca/autolavado/internal/lib/password"
	"github.com/dipaca/autolavado/internal/models"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = apperr.Unauthenticated("Invalid credentials")
	// ErrInvalidToken is returned by Verify.
	ErrInvalidToken = apperr.Unauthenticated("Invalid token")
	// ErrUserExists is returned by RegisterAdmin for a taken email.
	ErrUserExists = apperr.Validation("User already exists")
)

// UserRepository is the credential store.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetClienteInfo(ctx context.Context, clienteID int64) (*models.ClienteInfo, error)
	RegisterCliente(ctx context.Context, in models.RegisterClienteRequest, hash string) (*models.User, *models.Cliente, error)
	CreateAdmin(ctx context.Context, email, hash, nombre string) (*models.User, error)
}

// AuthService issues and checks session tokens.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService creates an AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Login checks the password and returns a signed token with the user's profile.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.LoginResult, error) {
	const op = "services.auth.Login"
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = password.Compare(user.Password, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(jwt.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Rol:       string(user.Rol),
		ClienteID: user.ClienteID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profile, err := s.profile(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.LoginResult{Token: token, User: *profile}, nil
}

// RegisterCliente creates the cliente and its login together.
func (s *AuthService) RegisterCliente(ctx context.Context, req models.RegisterClienteRequest) (*models.RegisterClienteResult, error) {
	const op = "services.auth.RegisterCliente"
	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, cliente, err := s.users.RegisterCliente(ctx, req, hashed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.RegisterClienteResult{
		Message: "Cliente registered successfully",
		User:    *user,
		Cliente: *cliente,
	}, nil
}

// RegisterAdmin creates another admin login.
func (s *AuthService) RegisterAdmin(ctx context.Context, req models.RegisterAdminRequest) (*models.User, error) {
	const op = "services.auth.RegisterAdmin"
	_, err := s.users.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.CreateAdmin(ctx, req.Email, hashed, req.Nombre)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Verify checks the token and returns the current state of its user.
func (s *AuthService) Verify(ctx context.Context, token string) (*models.Profile, error) {
	const op = "services.auth.Verify"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.profile(ctx, user)
}

func (s *AuthService) profile(ctx context.Context, user *models.User) (*models.Profile, error) {
	p := &models.Profile{
		ID:        user.ID,
		Email:     user.Email,
		Nombre:    user.Nombre,
		Rol:       user.Rol,
		ClienteID: user.ClienteID,
	}
	if user.Rol != models.RoleCliente || user.ClienteID == nil {
		return p, nil
	}
	info, err := s.users.GetClienteInfo(ctx, *user.ClienteID)
	if err != nil {
		return nil, err
	}
	p.ClienteInfo = info
	return p, nil
}
