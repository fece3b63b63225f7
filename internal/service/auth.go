package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/repository"
)

var (
	ErrUserEmailExists = repository.ErrUserEmailExists
	ErrWrongPassword   = errors.New("wrong password")
)

type AuthUserRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	CreateCouple(ctx context.Context, couple domain.Couple) (domain.Couple, error)
	CreateOfficiant(ctx context.Context, officiant domain.Officiant) (domain.Officiant, error)
}

type AuthService struct {
	repo AuthUserRepository
}

func NewAuthService(repo AuthUserRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

func (s *AuthService) SignupCouple(ctx context.Context, couple domain.Couple) (domain.User, error) {
	if err := s.checkEmailExists(ctx, couple.User.Email); err != nil {
		return domain.User{}, err
	}

	hashedPassword, err := hashPassword(couple.User.Password)
	if err != nil {
		return domain.User{}, err
	}
	couple.User.Password = hashedPassword

	created, err := s.repo.CreateCouple(ctx, couple)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.CreateCouple -> %w", err)
	}

	return created.User, nil
}

func (s *AuthService) SignupOfficiant(ctx context.Context, officiant domain.Officiant) (domain.User, error) {
	if err := s.checkEmailExists(ctx, officiant.User.Email); err != nil {
		return domain.User{}, err
	}

	hashedPassword, err := hashPassword(officiant.User.Password)
	if err != nil {
		return domain.User{}, err
	}
	officiant.User.Password = hashedPassword

	created, err := s.repo.CreateOfficiant(ctx, officiant)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.CreateOfficiant -> %w", err)
	}

	return created.User, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	return user, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) checkEmailExists(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return ErrUserEmailExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	return nil
}
