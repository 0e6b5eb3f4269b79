package repo

import (
	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

// Column allowlists for generic queries.
var (
	ProductColumns  = []string{"id", "name", "description", "price", "stock", "category_id", "created_at"}
	CategoryColumns = []string{"id", "name", "description", "created_at"}
	OrderColumns    = []string{"id", "user_id", "status", "total_price", "created_at", "updated_at"}
	UserColumns     = []string{"id", "email", "first_name", "last_name", "is_admin", "created_at"}
)
