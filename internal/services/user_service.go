package services

import (
	"context"
	"log/slog"

	"github.com/hormatech/blockplant/internal/models"
	pkgauth "github.com/hormatech/blockplant/pkg/auth"
)

// TeamRepository defines the team-member store operations used by UserService.
type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.User, error)
}

// UserService manages team members (admin surface; self-service signup lives
// in AuthService).
type UserService struct {
	repo   TeamRepository
	logger *slog.Logger
}

func NewUserService(repo TeamRepository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

// Create adds a team member with an admin-chosen role.
func (s *UserService) Create(ctx context.Context, email, password, name, role string) (*models.User, error) {
	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, models.ErrBadRequest
	}

	hashed, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	created, err := s.repo.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hashed,
		Name:         name,
		Role:         role,
		Active:       true,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("team member created", slog.String("user_id", created.ID), slog.String("role", role))
	return created, nil
}

// Update changes name, role or active flag.
func (s *UserService) Update(ctx context.Context, id, name, role string, active bool) (*models.User, error) {
	return s.repo.Update(ctx, &models.User{ID: id, Name: name, Role: role, Active: active})
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
