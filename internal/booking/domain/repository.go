package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	Insert(ctx context.Context, db *gorm.DB, booking *Booking) error
	Update(ctx context.Context, db *gorm.DB, booking *Booking) error
}
