package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/order-management-api/internal/application/dto"
	"github.com/jhoicas/order-management-api/internal/domain"
	"github.com/jhoicas/order-management-api/internal/domain/entity"
	"github.com/jhoicas/order-management-api/internal/domain/repository"
	"github.com/jhoicas/order-management-api/pkg/logger"
)

// TokenIssuer firma tokens para una identidad (el email del usuario). Lo implementa *jwt.Manager.
type TokenIssuer interface {
	Generate(identity string) (string, error)
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, tokens TokenIssuer) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, tokens: tokens, now: time.Now}
}

// RegisterUser crea un usuario con rol ROLE_USER: hashea password con bcrypt, persiste y devuelve un token.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(in.Email)
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	user, err := NewUser(in.Name, email, in.Password, entity.RoleUser, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("usuario registrado")

	return uc.issue(user.Email)
}

// Login verifica email/password y genera el token.
// Email desconocido y password incorrecto responden igual (ErrUnauthorized).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.issue(user.Email)
}

// LoadPrincipal carga el usuario dueño de una identidad ya verificada.
func (uc *AuthUseCase) LoadPrincipal(ctx context.Context, email string) (*Principal, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return &Principal{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (uc *AuthUseCase) issue(email string) (*dto.AuthResponse, error) {
	token, err := uc.tokens.Generate(email)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token}, nil
}

// NewUser arma un usuario con el password hasheado (bcrypt.DefaultCost).
// Lo usan el registro y el alta de administradores desde la CLI.
func NewUser(name, email, password, role string, now time.Time) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: el password supera 72 bytes", domain.ErrInvalidInput)
		}
		return nil, err
	}
	return &entity.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
