package repository

import (
	"context"
	"fmt"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	FindAll(ctx context.Context, role string) ([]dao.User, error)
	InsertCouple(ctx context.Context, user dao.User, couple dao.Couple) (dao.Couple, error)
	InsertOfficiant(ctx context.Context, user dao.User, officiant dao.Officiant) (dao.Officiant, error)
	FindCoupleByUserID(ctx context.Context, id uint) (dao.Couple, error)
	FindOfficiantByUserID(ctx context.Context, id uint) (dao.Officiant, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindAll(ctx context.Context, role string) ([]domain.User, error) {
	found, err := r.dao.FindAll(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	users := make([]domain.User, 0, len(found))
	for _, u := range found {
		users = append(users, r.daoToDomain(u))
	}

	return users, nil
}

func (r *UserRepository) CreateCouple(ctx context.Context, couple domain.Couple) (domain.Couple, error) {
	daoUser := dao.User{
		Email:    couple.User.Email,
		Password: couple.User.Password,
		Name:     couple.User.Name,
		Role:     domain.RoleCouple,
	}

	daoCouple := dao.Couple{
		PartnerName: couple.PartnerName,
		WeddingDate: couple.WeddingDate,
	}

	created, err := r.dao.InsertCouple(ctx, daoUser, daoCouple)
	if err != nil {
		return domain.Couple{}, fmt.Errorf("r.dao.InsertCouple -> %w", err)
	}

	return r.coupleDaoToDomain(created), nil
}

func (r *UserRepository) CreateOfficiant(ctx context.Context, officiant domain.Officiant) (domain.Officiant, error) {
	daoUser := dao.User{
		Email:    officiant.User.Email,
		Password: officiant.User.Password,
		Name:     officiant.User.Name,
		Role:     domain.RoleOfficiant,
	}

	daoOfficiant := dao.Officiant{
		Bio:       officiant.Bio,
		BasePrice: officiant.BasePrice,
	}

	created, err := r.dao.InsertOfficiant(ctx, daoUser, daoOfficiant)
	if err != nil {
		return domain.Officiant{}, fmt.Errorf("r.dao.InsertOfficiant -> %w", err)
	}

	return r.officiantDaoToDomain(created), nil
}

func (r *UserRepository) FindCoupleByUserID(ctx context.Context, id uint) (domain.Couple, error) {
	found, err := r.dao.FindCoupleByUserID(ctx, id)
	if err != nil {
		return domain.Couple{}, fmt.Errorf("r.dao.FindCoupleByUserID -> %w", err)
	}

	return r.coupleDaoToDomain(found), nil
}

func (r *UserRepository) FindOfficiantByUserID(ctx context.Context, id uint) (domain.Officiant, error) {
	found, err := r.dao.FindOfficiantByUserID(ctx, id)
	if err != nil {
		return domain.Officiant{}, fmt.Errorf("r.dao.FindOfficiantByUserID -> %w", err)
	}

	return r.officiantDaoToDomain(found), nil
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Password:  u.Password,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r *UserRepository) coupleDaoToDomain(c dao.Couple) domain.Couple {
	return domain.Couple{
		User:        r.daoToDomain(c.User),
		PartnerName: c.PartnerName,
		WeddingDate: c.WeddingDate,
	}
}

func (r *UserRepository) officiantDaoToDomain(o dao.Officiant) domain.Officiant {
	return domain.Officiant{
		User:      r.daoToDomain(o.User),
		Bio:       o.Bio,
		BasePrice: o.BasePrice,
	}
}
