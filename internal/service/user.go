package service

import (
	"context"
	"fmt"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/repository"
)

var ErrUserNotFound = repository.ErrUserNotFound

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindAll(ctx context.Context, role string) ([]domain.User, error)
	FindCoupleByUserID(ctx context.Context, id uint) (domain.Couple, error)
	FindOfficiantByUserID(ctx context.Context, id uint) (domain.Officiant, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// ListPartners returns the users the given user can open a conversation
// with: officiants for a couple, couples for an officiant.
func (s *UserService) ListPartners(ctx context.Context, user domain.User) ([]domain.User, error) {
	partnerRole := domain.RoleOfficiant
	if user.Role == domain.RoleOfficiant {
		partnerRole = domain.RoleCouple
	}

	partners, err := s.repo.FindAll(ctx, partnerRole)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return partners, nil
}

func (s *UserService) GetCoupleByUserID(ctx context.Context, userID uint) (domain.Couple, error) {
	couple, err := s.repo.FindCoupleByUserID(ctx, userID)
	if err != nil {
		return domain.Couple{}, fmt.Errorf("s.repo.FindCoupleByUserID -> %w", err)
	}

	return couple, nil
}

func (s *UserService) GetOfficiantByUserID(ctx context.Context, userID uint) (domain.Officiant, error) {
	officiant, err := s.repo.FindOfficiantByUserID(ctx, userID)
	if err != nil {
		return domain.Officiant{}, fmt.Errorf("s.repo.FindOfficiantByUserID -> %w", err)
	}

	return officiant, nil
}
