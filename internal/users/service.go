package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/pkg/auth"
	"github.com/farmfresh-in/farmfresh-backend/pkg/config"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
	"github.com/farmfresh-in/farmfresh-backend/pkg/security"
)

// RegisterInput captures a new account signup. Farmers supply farm
// details and start out unapproved.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Role         enums.UserRole
	Phone        *string
	FarmName     *string
	FarmLocation *string
}

// Session is the result of a successful login.
type Session struct {
	User  *models.User
	Token string
}

// Service exposes account lifecycle operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filter ListFilter) ([]models.User, error)
	ApproveFarmer(ctx context.Context, farmerID uuid.UUID) (*models.User, error)
}

type service struct {
	repo        Repository
	jwtConfig   config.JWTConfig
	passwordCfg config.PasswordConfig
}

// NewService wires a user service with its dependencies.
func NewService(repo Repository, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{repo: repo, jwtConfig: jwtCfg, passwordCfg: passwordCfg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	role := input.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	if role == enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot self-register")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}
	if role == enums.UserRoleFarmer {
		if input.FarmName == nil || strings.TrimSpace(*input.FarmName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "farm name is required for farmer accounts")
		}
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing email")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Phone:        input.Phone,
		FarmName:     input.FarmName,
		FarmLocation: input.FarmLocation,
		IsApproved:   role == enums.UserRoleUser,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is disabled")
	}
	if user.Role == enums.UserRoleFarmer && !user.IsApproved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is pending admin approval")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := auth.MintAccessToken(s.jwtConfig, time.Now().UTC(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login time")
	}

	return &Session{User: user, Token: token}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.User, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ApproveFarmer(ctx context.Context, farmerID uuid.UUID) (*models.User, error) {
	user, err := s.Get(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.UserRoleFarmer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only farmer accounts require approval")
	}
	if user.IsApproved {
		return user, nil
	}

	user.IsApproved = true
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve farmer")
	}
	return user, nil
}
