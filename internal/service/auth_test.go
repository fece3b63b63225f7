package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/repository"
)

type memAuthRepo struct {
	nextID uint
	byMail map[string]domain.User
}

func newMemAuthRepo() *memAuthRepo {
	return &memAuthRepo{byMail: make(map[string]domain.User)}
}

func (r *memAuthRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := r.byMail[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (r *memAuthRepo) CreateCouple(_ context.Context, couple domain.Couple) (domain.Couple, error) {
	r.nextID++
	couple.User.ID = r.nextID
	couple.User.Role = domain.RoleCouple
	r.byMail[couple.User.Email] = couple.User
	return couple, nil
}

func (r *memAuthRepo) CreateOfficiant(_ context.Context, officiant domain.Officiant) (domain.Officiant, error) {
	r.nextID++
	officiant.User.ID = r.nextID
	officiant.User.Role = domain.RoleOfficiant
	r.byMail[officiant.User.Email] = officiant.User
	return officiant, nil
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	svc := NewAuthService(newMemAuthRepo())
	ctx := context.Background()

	created, err := svc.SignupCouple(ctx, domain.Couple{
		User:        domain.User{Email: "avery@example.com", Password: "Password1", Name: "Avery"},
		PartnerName: "Riley",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, "Password1", created.Password, "password must be stored hashed")

	user, err := svc.Login(ctx, "avery@example.com", "Password1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Login(ctx, "avery@example.com", "WrongPassword1")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(ctx, "nobody@example.com", "Password1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_SignupRejectsDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newMemAuthRepo())
	ctx := context.Background()

	_, err := svc.SignupOfficiant(ctx, domain.Officiant{
		User: domain.User{Email: "jordan@example.com", Password: "Password1", Name: "Jordan"},
		Bio:  "Celebrant.",
	})
	require.NoError(t, err)

	_, err = svc.SignupCouple(ctx, domain.Couple{
		User: domain.User{Email: "jordan@example.com", Password: "Password1", Name: "Copycat"},
	})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

type memUserListRepo struct {
	users []domain.User
}

func (r *memUserListRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (r *memUserListRepo) FindAll(_ context.Context, role string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserListRepo) FindCoupleByUserID(_ context.Context, id uint) (domain.Couple, error) {
	user, err := r.FindByID(context.Background(), id)
	if err != nil {
		return domain.Couple{}, err
	}
	return domain.Couple{User: user}, nil
}

func (r *memUserListRepo) FindOfficiantByUserID(_ context.Context, id uint) (domain.Officiant, error) {
	user, err := r.FindByID(context.Background(), id)
	if err != nil {
		return domain.Officiant{}, err
	}
	return domain.Officiant{User: user}, nil
}

func TestUserService_ListPartners(t *testing.T) {
	repo := &memUserListRepo{users: []domain.User{
		{ID: 1, Role: domain.RoleCouple, Name: "Avery"},
		{ID: 2, Role: domain.RoleOfficiant, Name: "Jordan"},
		{ID: 3, Role: domain.RoleOfficiant, Name: "Robin"},
	}}
	svc := NewUserService(repo)
	ctx := context.Background()

	partners, err := svc.ListPartners(ctx, domain.User{ID: 1, Role: domain.RoleCouple})
	require.NoError(t, err)
	require.Len(t, partners, 2)
	for _, p := range partners {
		assert.Equal(t, domain.RoleOfficiant, p.Role)
	}

	partners, err = svc.ListPartners(ctx, domain.User{ID: 2, Role: domain.RoleOfficiant})
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, "Avery", partners[0].Name)
}
