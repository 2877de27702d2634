package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Request reserves the amount out of the provider's available
	// balance and opens a pending payout.
	Request(ctx context.Context, providerID snowflake.ID, amount int64) (*PayoutRequest, error)
	Approve(ctx context.Context, id snowflake.ID) (*PayoutRequest, error)
	Complete(ctx context.Context, id snowflake.ID, transferRef string) (*PayoutRequest, error)
	// Fail aborts a pending or approved payout and returns the
	// reserved funds to the provider's available balance.
	Fail(ctx context.Context, id snowflake.ID, reason string) (*PayoutRequest, error)
	Get(ctx context.Context, id snowflake.ID) (*PayoutRequest, error)
	ListByProvider(ctx context.Context, providerID snowflake.ID) ([]PayoutRequest, error)
}
