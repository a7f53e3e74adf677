package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/matchpoint/tournament-api/models"
	"github.com/matchpoint/tournament-api/repositories"
)

type UserService interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	user.PasswordHash = ""
	return user, nil
}
