package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`

	Role      string `gorm:"not null"` // "couple" or "officiant"
	Name      string `gorm:"not null"`
	AvatarURL string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Couple struct {
	UserID uint `gorm:"primaryKey"`
	User   User `gorm:"foreignKey:UserID"`

	PartnerName string
	WeddingDate time.Time
}

type Officiant struct {
	UserID uint `gorm:"primaryKey"`
	User   User `gorm:"foreignKey:UserID"`

	Bio       string
	BasePrice float64
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_users_email"`) {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User
	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User
	result := d.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

// FindAll lists users, optionally filtered by role. Used to build the
// conversation-partner directory.
func (d *UserDAO) FindAll(ctx context.Context, role string) ([]User, error) {
	var users []User
	query := d.db.WithContext(ctx)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if result := query.Order("id asc").Find(&users); result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (d *UserDAO) InsertCouple(ctx context.Context, user User, couple Couple) (Couple, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&user); result.Error != nil {
			var pgErr *pgconn.PgError
			if errors.As(result.Error, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return ErrUserEmailExists
			}

			return result.Error
		}

		couple.UserID = user.ID
		if result := tx.Create(&couple); result.Error != nil {
			return result.Error
		}

		return nil
	})
	if err != nil {
		return Couple{}, err
	}

	couple.User = user

	return couple, nil
}

func (d *UserDAO) InsertOfficiant(ctx context.Context, user User, officiant Officiant) (Officiant, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&user); result.Error != nil {
			var pgErr *pgconn.PgError
			if errors.As(result.Error, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return ErrUserEmailExists
			}

			return result.Error
		}

		officiant.UserID = user.ID
		if result := tx.Create(&officiant); result.Error != nil {
			return result.Error
		}

		return nil
	})
	if err != nil {
		return Officiant{}, err
	}

	officiant.User = user

	return officiant, nil
}

func (d *UserDAO) FindCoupleByUserID(ctx context.Context, id uint) (Couple, error) {
	var couple Couple
	result := d.db.WithContext(ctx).Preload("User").Where("user_id = ?", id).First(&couple)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Couple{}, ErrUserNotFound
		}

		return Couple{}, result.Error
	}

	return couple, nil
}

func (d *UserDAO) FindOfficiantByUserID(ctx context.Context, id uint) (Officiant, error) {
	var officiant Officiant
	result := d.db.WithContext(ctx).Preload("User").Where("user_id = ?", id).First(&officiant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Officiant{}, ErrUserNotFound
		}

		return Officiant{}, result.Error
	}

	return officiant, nil
}
