package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Name        string    `gorm:"not null"              json:"name"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey"         json:"id"`
	Name           string            `gorm:"not null;index"               json:"name"`
	Description    string            `json:"description"`
	Price          decimal.Decimal   `gorm:"type:decimal(10,2);not null"  json:"price"`
	ImageURL       string            `json:"image_url"`
	Stock          int               `gorm:"not null;default:0"           json:"stock"`
	CategoryID     *uuid.UUID        `gorm:"type:uuid;index"              json:"category_id"`
	Category       *Category         `json:"category,omitempty"`
	Specifications datatypes.JSONMap `json:"specifications"`
	CreatedAt      time.Time         `json:"created_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}

type PCBuild struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey"         json:"id"`
	UserID       uuid.UUID                   `gorm:"type:uuid;index;not null"     json:"user_id"`
	Name         string                      `gorm:"not null"                     json:"name"`
	ComponentIDs datatypes.JSONSlice[string] `json:"component_ids"`
	TotalPrice   decimal.Decimal             `gorm:"type:decimal(10,2);not null"  json:"total_price"`
	CreatedAt    time.Time                   `json:"created_at"`
}

func (b *PCBuild) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (PCBuild) TableName() string {
	return "pc_builds"
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"    json:"id"`
	Email     string    `gorm:"uniqueIndex;not null"    json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	IsAdmin   bool      `gorm:"not null;default:false"  json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

// Identity is the credential record owned by the session provider. It shares its id with the User profile row.
type Identity struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"  json:"id"`
	Email            string     `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash     string     `gorm:"not null"              json:"-"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	LastSignInAt     *time.Time `json:"last_sign_in_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (i *Identity) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (Identity) TableName() string {
	return "auth_identities"
}

type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"  json:"user_id"`
	TokenHash string    `gorm:"uniqueIndex;not null"      json:"-"`
	ExpiresAt time.Time `gorm:"not null"                  json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false"    json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

func (Session) TableName() string {
	return "auth_sessions"
}

func All() []any {
	return []any{
		&Category{},
		&Product{},
		&User{},
		&Identity{},
		&Session{},
		&PCBuild{},
		&Order{},
		&OrderItem{},
	}
}
