package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, req *PayoutRequest) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PayoutRequest, error)
	ListByProvider(ctx context.Context, db *gorm.DB, providerID snowflake.ID) ([]PayoutRequest, error)
	// Transition flips status with a guard on the expected current
	// status and reports whether a row moved.
	Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to Status, at time.Time, transferRef, failReason string) (bool, error)
}
