package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/serbiz/internal/ledger/domain"
	"github.com/smallbiznis/serbiz/internal/ledger/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	err = db.Exec(`CREATE TABLE transactions (
		id BIGINT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		client_id BIGINT NOT NULL,
		provider_id BIGINT NOT NULL,
		type TEXT NOT NULL,
		amount BIGINT NOT NULL,
		provider_share BIGINT NOT NULL,
		platform_commission BIGINT NOT NULL,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		UNIQUE (booking_id, type)
	)`).Error
	require.NoError(t, err)
	return db
}

func entry(node *snowflake.Node, bookingID snowflake.ID, txType domain.TransactionType, status domain.TransactionStatus, at time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:                 node.Generate(),
		BookingID:          bookingID,
		ClientID:           node.Generate(),
		ProviderID:         node.Generate(),
		Type:               txType,
		Amount:             500,
		ProviderShare:      476,
		PlatformCommission: 24,
		Status:             status,
		CreatedAt:          at,
	}
}

func TestInsertIsOncePerBookingAndType(t *testing.T) {
	db := openDB(t)
	repo := repository.Provide()
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()
	bookingID := node.Generate()
	now := time.Now().UTC()

	inserted, err := repo.Insert(ctx, db, entry(node, bookingID, domain.TypePayment, domain.StatusCompleted, now))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same booking and type again: silently absorbed.
	inserted, err = repo.Insert(ctx, db, entry(node, bookingID, domain.TypePayment, domain.StatusCompleted, now))
	require.NoError(t, err)
	assert.False(t, inserted)

	// A different type for the same booking is a distinct row.
	inserted, err = repo.Insert(ctx, db, entry(node, bookingID, domain.TypeRefund, domain.StatusCompleted, now.Add(time.Minute)))
	require.NoError(t, err)
	assert.True(t, inserted)

	items, err := repo.FindByBooking(ctx, db, bookingID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.TypePayment, items[0].Type)
	assert.Equal(t, domain.TypeRefund, items[1].Type)
}

func TestFindByBookingAndType(t *testing.T) {
	db := openDB(t)
	repo := repository.Provide()
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()
	bookingID := node.Generate()

	_, err := repo.Insert(ctx, db, entry(node, bookingID, domain.TypeEscrowPayment, domain.StatusHeld, time.Now().UTC()))
	require.NoError(t, err)

	found, err := repo.FindByBookingAndType(ctx, db, bookingID, domain.TypeEscrowPayment)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(476), found.ProviderShare)

	missing, err := repo.FindByBookingAndType(ctx, db, bookingID, domain.TypePayment)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMarkCompletedFlipsHeldExactlyOnce(t *testing.T) {
	db := openDB(t)
	repo := repository.Provide()
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()
	bookingID := node.Generate()

	_, err := repo.Insert(ctx, db, entry(node, bookingID, domain.TypeEscrowPayment, domain.StatusHeld, time.Now().UTC()))
	require.NoError(t, err)

	flipped, err := repo.MarkCompleted(ctx, db, bookingID)
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = repo.MarkCompleted(ctx, db, bookingID)
	require.NoError(t, err)
	assert.False(t, flipped, "second completion must find no held row")

	found, err := repo.FindByBookingAndType(ctx, db, bookingID, domain.TypeEscrowPayment)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.StatusCompleted, found.Status)
}
