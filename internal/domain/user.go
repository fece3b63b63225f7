package domain

import "time"

const (
	RoleCouple    = "couple"
	RoleOfficiant = "officiant"
)

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Couple struct {
	User
	PartnerName string    `json:"partner_name"`
	WeddingDate time.Time `json:"wedding_date"`
}

type Officiant struct {
	User
	Bio       string  `json:"bio"`
	BasePrice float64 `json:"base_price"`
}
