package service_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountrepo "github.com/smallbiznis/serbiz/internal/account/repository"
	bookingdomain "github.com/smallbiznis/serbiz/internal/booking/domain"
	bookingrepo "github.com/smallbiznis/serbiz/internal/booking/repository"
	"github.com/smallbiznis/serbiz/internal/clock"
	"github.com/smallbiznis/serbiz/internal/config"
	"github.com/smallbiznis/serbiz/internal/gateway"
	ledgerrepo "github.com/smallbiznis/serbiz/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/serbiz/internal/ledger/service"
	"github.com/smallbiznis/serbiz/internal/notify"
	paymentdomain "github.com/smallbiznis/serbiz/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/serbiz/internal/payment/repository"
	paymentservice "github.com/smallbiznis/serbiz/internal/payment/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const webhookSecret = "whsk_test"

type fakeGateway struct {
	sources int
	charges int
	refunds int

	failCharge bool
}

func (g *fakeGateway) CreateSource(ctx context.Context, req gateway.CreateSourceRequest) (gateway.Source, error) {
	g.sources++
	id := fmt.Sprintf("src_%d", g.sources)
	return gateway.Source{
		ID:          id,
		Status:      "pending",
		Amount:      req.Amount,
		Type:        req.Type,
		CheckoutURL: "https://checkout.example/" + id,
	}, nil
}

func (g *fakeGateway) CreateCharge(ctx context.Context, sourceID string, amount int64) (gateway.Payment, error) {
	if g.failCharge {
		return gateway.Payment{}, &gateway.Error{StatusCode: 500, Detail: "charge failed"}
	}
	g.charges++
	return gateway.Payment{
		ID:       fmt.Sprintf("pay_%d", g.charges),
		SourceID: sourceID,
		Status:   "paid",
		Amount:   amount,
	}, nil
}

func (g *fakeGateway) CreateRefund(ctx context.Context, req gateway.CreateRefundRequest) (gateway.Refund, error) {
	g.refunds++
	return gateway.Refund{
		ID:        fmt.Sprintf("ref_%d", g.refunds),
		PaymentID: req.PaymentID,
		Status:    "succeeded",
		Amount:    req.Amount,
		Reason:    req.Reason,
	}, nil
}

type captureDispatcher struct {
	notify.NoOpDispatcher
	payments chan int64
}

func (d *captureDispatcher) PaymentReceived(ctx context.Context, bookingID, userID snowflake.ID, amount int64) error {
	d.payments <- amount
	return nil
}

type testEnv struct {
	db          *gorm.DB
	node        *snowflake.Node
	gw          *fakeGateway
	svc         paymentdomain.Service
	bookingRepo bookingdomain.Repository
	dispatcher  *captureDispatcher
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(10)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	gw := &fakeGateway{}
	dispatcher := &captureDispatcher{payments: make(chan int64, 8)}
	bookings := bookingrepo.Provide()

	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  ledgerrepo.Provide(),
	})

	svc := paymentservice.NewService(paymentservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Cfg:         config.Config{GatewayWebhookSecret: webhookSecret},
		Gateway:     gw,
		Repo:        paymentrepo.Provide(),
		BookingRepo: bookings,
		AccountRepo: accountrepo.Provide(),
		LedgerSvc:   ledgerSvc,
		Dispatcher:  dispatcher,
	})

	return &testEnv{
		db:          db,
		node:        node,
		gw:          gw,
		svc:         svc,
		bookingRepo: bookings,
		dispatcher:  dispatcher,
	}
}

func (e *testEnv) seedBooking(t *testing.T, b *bookingdomain.Booking) *bookingdomain.Booking {
	t.Helper()
	if b.ID == 0 {
		b.ID = e.node.Generate()
	}
	if b.ClientID == 0 {
		b.ClientID = e.node.Generate()
	}
	if b.ProviderID == 0 {
		b.ProviderID = e.node.Generate()
	}
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := e.bookingRepo.Insert(context.Background(), e.db, b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func (e *testEnv) availableBalance(t *testing.T, providerID snowflake.ID) int64 {
	t.Helper()
	var balance int64
	err := e.db.Raw(
		`SELECT COALESCE(available_balance, 0) FROM provider_accounts WHERE provider_id = ?`,
		providerID,
	).Scan(&balance).Error
	if err != nil {
		t.Fatalf("read balance: %v", err)
	}
	return balance
}

func (e *testEnv) transactionCount(t *testing.T, bookingID snowflake.ID) int64 {
	t.Helper()
	var count int64
	err := e.db.Raw(`SELECT COUNT(*) FROM transactions WHERE booking_id = ?`, bookingID).Scan(&count).Error
	if err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return count
}

func signedWebhook(eventID, sourceID string, amount int64) ([]byte, string) {
	body := []byte(fmt.Sprintf(`{
		"data": {
			"id": %q,
			"attributes": {
				"type": "source.chargeable",
				"data": {
					"id": %q,
					"attributes": {"amount": %d, "status": "chargeable"}
				}
			}
		}
	}`, eventID, sourceID, amount))

	ts := "1750000000"
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	header := fmt.Sprintf("t=%s,te=%s,li=", ts, hex.EncodeToString(mac.Sum(nil)))
	return body, header
}

func TestCreateSourceReusesPendingSession(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	booking := env.seedBooking(t, &bookingdomain.Booking{
		Status:            bookingdomain.StatusInProgress,
		PaymentPreference: bookingdomain.PayLater,
	})

	in := paymentdomain.CreateSourceInput{
		BookingID: booking.ID,
		UserID:    booking.ClientID,
		Amount:    500,
		Method:    "gcash",
	}

	first, err := env.svc.CreateSource(ctx, in)
	if err != nil {
		t.Fatalf("first create source: %v", err)
	}
	if first.Existing {
		t.Fatalf("first call should create a new source")
	}

	second, err := env.svc.CreateSource(ctx, in)
	if err != nil {
		t.Fatalf("second create source: %v", err)
	}
	if !second.Existing {
		t.Fatalf("second call should reuse pending source")
	}
	if second.Source.SourceID != first.Source.SourceID {
		t.Fatalf("source id changed: %q != %q", second.Source.SourceID, first.Source.SourceID)
	}
	if second.Source.CheckoutURL != first.Source.CheckoutURL {
		t.Fatalf("checkout url changed")
	}
	if env.gw.sources != 1 {
		t.Fatalf("gateway sessions opened = %d, want 1", env.gw.sources)
	}
}

func TestWebhookSettlesPayLaterBooking(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	booking := env.seedBooking(t, &bookingdomain.Booking{
		Status:            bookingdomain.StatusInProgress,
		PaymentPreference: bookingdomain.PayLater,
	})

	created, err := env.svc.CreateSource(ctx, paymentdomain.CreateSourceInput{
		BookingID: booking.ID,
		UserID:    booking.ClientID,
		Amount:    500,
		Method:    "gcash",
	})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	body, header := signedWebhook("evt_1", created.Source.SourceID, 500)
	result, err := env.svc.HandleWebhook(ctx, body, header)
	if err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if result.Skipped || result.Ignored {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Settlement == nil || result.Settlement.BookingStatus != string(bookingdomain.StatusPaymentReceived) {
		t.Fatalf("settlement = %+v", result.Settlement)
	}

	updated, err := env.bookingRepo.FindByID(ctx, env.db, booking.ID)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if updated.Status != bookingdomain.StatusPaymentReceived {
		t.Fatalf("booking status = %s", updated.Status)
	}

	if got := env.availableBalance(t, booking.ProviderID); got != 476 {
		t.Fatalf("available balance = %d, want 476", got)
	}
	if got := env.transactionCount(t, booking.ID); got != 1 {
		t.Fatalf("transactions = %d, want 1", got)
	}
}

func TestWebhookReplayIsSkipped(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	booking := env.seedBooking(t, &bookingdomain.Booking{
		Status:            bookingdomain.StatusInProgress,
		PaymentPreference: bookingdomain.PayLater,
	})

	created, err := env.svc.CreateSource(ctx, paymentdomain.CreateSourceInput{
		BookingID: booking.ID,
		UserID:    booking.ClientID,
		Amount:    500,
		Method:    "gcash",
	})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	body, header := signedWebhook("evt_replay", created.Source.SourceID, 500)
	if _, err := env.svc.HandleWebhook(ctx, body, header); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	balanceAfterFirst := env.availableBalance(t, booking.ProviderID)

	replay, err := env.svc.HandleWebhook(ctx, body, header)
	if err != nil {
		t.Fatalf("replay delivery: %v", err)
	}
	if !replay.Skipped {
		t.Fatalf("replay should be skipped, got %+v", replay)
	}

	if got := env.availableBalance(t, booking.ProviderID); got != balanceAfterFirst {
		t.Fatalf("balance changed on replay: %d -> %d", balanceAfterFirst, got)
	}
	if got := env.transactionCount(t, booking.ID); got != 1 {
		t.Fatalf("transactions = %d, want 1", got)
	}
	if env.gw.charges != 1 {
		t.Fatalf("gateway charges = %d, want 1", env.gw.charges)
	}
}

func TestWebhookRetryAfterFailedDeliverySettles(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	booking := env.seedBooking(t, &bookingdomain.Booking{
		Status:            bookingdomain.StatusInProgress,
		PaymentPreference: bookingdomain.PayLater,
	})

	created, err := env.svc.CreateSource(ctx, paymentdomain.CreateSourceInput{
		BookingID: booking.ID,
		UserID:    booking.ClientID,
		Amount:    500,
		Method:    "gcash",
	})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	body, header := signedWebhook("evt_retry", created.Source.SourceID, 500)

	env.gw.failCharge = true
	if _, err := env.svc.HandleWebhook(ctx, body, header); err == nil {
		t.Fatalf("delivery should fail while the gateway is down")
	}
	if got := env.availableBalance(t, booking.ProviderID); got != 0 {
		t.Fatalf("failed delivery must not credit, balance = %d", got)
	}

	// The event row was claimed but never marked processed; a retry
	// of the same delivery must run the settlement, not skip it.
	env.gw.failCharge = false
	retry, err := env.svc.HandleWebhook(ctx, body, header)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retry.Skipped {
		t.Fatalf("retry of an unfinished delivery reported skipped")
	}
	if retry.Settlement == nil || retry.Settlement.Skipped {
		t.Fatalf("settlement = %+v", retry.Settlement)
	}
	if got := env.availableBalance(t, booking.ProviderID); got != 476 {
		t.Fatalf("available balance = %d, want 476", got)
	}

	// Once processed, a further replay short-circuits as usual.
	again, err := env.svc.HandleWebhook(ctx, body, header)
	if err != nil {
		t.Fatalf("replay after success: %v", err)
	}
	if !again.Skipped {
		t.Fatalf("processed event should be skipped, got %+v", again)
	}
	if env.gw.charges != 1 {
		t.Fatalf("gateway charges = %d, want 1", env.gw.charges)
	}
}

func TestCreateSourceAbsorbsDuplicateGatewayID(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	booking := env.seedBooking(t, &bookingdomain.Booking{
		Status:            bookingdomain.StatusInProgress,
		PaymentPreference: bookingdomain.PayLater,
	})

	// A chargeable row for the gateway id the next session will get
	// dodges the pending-source reuse check but still owns the unique
	// key, so the insert collides.
	repo := paymentrepo.Provide()
	if err := repo.InsertSource(ctx, env.db, &paymentdomain.Source{
		ID:        env.node.Generate(),
		SourceID:  "src_1",
		BookingID: booking.ID,
		UserID:    booking.ClientID,
		Amount:    500,
		Method:    "gcash",
		Status:    paymentdomain.SourceChargeable,
		CreatedAt: time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	result, err := env.svc.CreateSource(ctx, paymentdomain.CreateSourceInput{
		BookingID: booking.ID,
		UserID:    booking.ClientID,
		Amount:    500,
		Method:    "gcash",
	})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	if !result.Existing {
		t.Fatalf("colliding insert should hand back the existing row")
	}
	if result.Source.Status != paymentdomain.SourceChargeable {
		t.Fatalf("source = %+v", result.Source)
	}
}

func TestSettlementNotifiesClient(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	booking := env.seedBooking(t, &bookingdomain.Booking{
		Status:            bookingdomain.StatusInProgress,
		PaymentPreference: bookingdomain.PayLater,
	})

	created, err := env.svc.CreateSource(ctx, paymentdomain.CreateSourceInput{
		BookingID: booking.ID,
		UserID:    booking.ClientID,
		Amount:    500,
		Method:    "gcash",
	})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	body, header := signedWebhook("evt_notify", created.Source.SourceID, 500)
	if _, err := env.svc.HandleWebhook(ctx, body, header); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}

	select {
	case amount := <-env.dispatcher.payments:
		if amount != 500 {
			t.Fatalf("notified amount = %d, want 500", amount)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no payment notification dispatched")
	}
}

func TestWebhookHoldsEscrowBookingWithoutCredit(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	booking := env.seedBooking(t, &bookingdomain.Booking{
		Status:            bookingdomain.StatusAwaitingPayment,
		PaymentPreference: bookingdomain.PayFirst,
	})

	created, err := env.svc.CreateSource(ctx, paymentdomain.CreateSourceInput{
		BookingID: booking.ID,
		UserID:    booking.ClientID,
		Amount:    500,
		Method:    "gcash",
	})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	body, header := signedWebhook("evt_hold", created.Source.SourceID, 500)
	result, err := env.svc.HandleWebhook(ctx, body, header)
	if err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if result.Settlement == nil || !result.Settlement.Held {
		t.Fatalf("settlement should hold funds, got %+v", result.Settlement)
	}

	updated, err := env.bookingRepo.FindByID(ctx, env.db, booking.ID)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if updated.Status != bookingdomain.StatusPending {
		t.Fatalf("booking status = %s, want pending", updated.Status)
	}
	if updated.PaymentStatus != bookingdomain.PaymentStatusHeld {
		t.Fatalf("payment status = %s, want held", updated.PaymentStatus)
	}
	if !updated.IsPaidUpfront {
		t.Fatalf("booking should be marked paid upfront")
	}
	if updated.UpfrontPaidAmount != 500 {
		t.Fatalf("upfront paid amount = %d", updated.UpfrontPaidAmount)
	}

	if got := env.availableBalance(t, booking.ProviderID); got != 0 {
		t.Fatalf("held funds must not credit the provider, balance = %d", got)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	env := setupEnv(t)
	body, _ := signedWebhook("evt_bad", "src_none", 500)

	_, err := env.svc.HandleWebhook(context.Background(), body, "t=1750000000,te=deadbeef,li=")
	if !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
}

func TestWebhookIgnoresUnhandledEventTypes(t *testing.T) {
	env := setupEnv(t)

	body := []byte(`{"data":{"id":"evt_other","attributes":{"type":"source.expired","data":{"id":"src_x","attributes":{}}}}}`)
	ts := "1750000000"
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	header := fmt.Sprintf("t=%s,te=%s,li=", ts, hex.EncodeToString(mac.Sum(nil)))

	result, err := env.svc.HandleWebhook(context.Background(), body, header)
	if err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if !result.Ignored {
		t.Fatalf("result = %+v, want ignored", result)
	}
}

func TestReconcileReplaysMissedWebhook(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	booking := env.seedBooking(t, &bookingdomain.Booking{
		Status:            bookingdomain.StatusInProgress,
		PaymentPreference: bookingdomain.PayLater,
	})

	if _, err := env.svc.CreateSource(ctx, paymentdomain.CreateSourceInput{
		BookingID: booking.ID,
		UserID:    booking.ClientID,
		Amount:    500,
		Method:    "gcash",
	}); err != nil {
		t.Fatalf("create source: %v", err)
	}

	result, err := env.svc.Reconcile(ctx, booking.ID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Skipped {
		t.Fatalf("first reconcile should settle")
	}
	if got := env.availableBalance(t, booking.ProviderID); got != 476 {
		t.Fatalf("available balance = %d, want 476", got)
	}

	// A second pass must observe the existing settlement and move no
	// money.
	again, err := env.svc.Reconcile(ctx, booking.ID)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if !again.Skipped {
		t.Fatalf("second reconcile should be skipped")
	}
	if got := env.availableBalance(t, booking.ProviderID); got != 476 {
		t.Fatalf("balance changed on second reconcile: %d", got)
	}
	if env.gw.charges != 1 {
		t.Fatalf("gateway charges = %d, want 1", env.gw.charges)
	}
}

func TestStatusReturnsLatestPayment(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	booking := env.seedBooking(t, &bookingdomain.Booking{
		Status:            bookingdomain.StatusInProgress,
		PaymentPreference: bookingdomain.PayLater,
	})

	if _, err := env.svc.Status(ctx, booking.ID); !errors.Is(err, paymentdomain.ErrPaymentNotFound) {
		t.Fatalf("err = %v, want ErrPaymentNotFound", err)
	}

	if _, err := env.svc.CreateSource(ctx, paymentdomain.CreateSourceInput{
		BookingID: booking.ID,
		UserID:    booking.ClientID,
		Amount:    500,
		Method:    "gcash",
	}); err != nil {
		t.Fatalf("create source: %v", err)
	}
	if _, err := env.svc.Reconcile(ctx, booking.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	payment, err := env.svc.Status(ctx, booking.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if payment.Amount != 500 || payment.Status != "paid" {
		t.Fatalf("payment = %+v", payment)
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}
	return db
}

var testSchema = []string{
	`CREATE TABLE bookings (
		id BIGINT PRIMARY KEY,
		client_id BIGINT NOT NULL,
		provider_id BIGINT NOT NULL,
		status TEXT NOT NULL,
		payment_preference TEXT NOT NULL DEFAULT 'pay_later',
		is_paid_upfront BOOLEAN NOT NULL DEFAULT FALSE,
		payment_status TEXT NOT NULL DEFAULT '',
		provider_price BIGINT NOT NULL DEFAULT 0,
		provider_fixed_price BIGINT NOT NULL DEFAULT 0,
		offered_price BIGINT NOT NULL DEFAULT 0,
		total_amount BIGINT NOT NULL DEFAULT 0,
		upfront_paid_amount BIGINT NOT NULL DEFAULT 0,
		refunded BOOLEAN NOT NULL DEFAULT FALSE,
		refund_pending BOOLEAN NOT NULL DEFAULT FALSE,
		refund_error TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE payment_sources (
		id BIGINT PRIMARY KEY,
		source_id TEXT NOT NULL UNIQUE,
		booking_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		amount BIGINT NOT NULL,
		method TEXT NOT NULL,
		status TEXT NOT NULL,
		checkout_url TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE payments (
		id BIGINT PRIMARY KEY,
		payment_id TEXT NOT NULL UNIQUE,
		source_id TEXT NOT NULL,
		booking_id BIGINT NOT NULL,
		amount BIGINT NOT NULL,
		status TEXT NOT NULL,
		refunded BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE webhook_events (
		id BIGINT PRIMARY KEY,
		event_id TEXT NOT NULL UNIQUE,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		received_at DATETIME NOT NULL,
		processed_at DATETIME
	)`,
	`CREATE TABLE transactions (
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
		CONSTRAINT ux_transactions_booking_type UNIQUE (booking_id, type)
	)`,
	`CREATE TABLE provider_accounts (
		provider_id BIGINT PRIMARY KEY,
		available_balance BIGINT NOT NULL DEFAULT 0,
		pending_payout BIGINT NOT NULL DEFAULT 0,
		total_earnings BIGINT NOT NULL DEFAULT 0,
		total_payouts BIGINT NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE payout_requests (
		id BIGINT PRIMARY KEY,
		provider_id BIGINT NOT NULL,
		amount BIGINT NOT NULL,
		status TEXT NOT NULL,
		transfer_ref TEXT NOT NULL DEFAULT '',
		fail_reason TEXT NOT NULL DEFAULT '',
		requested_at DATETIME NOT NULL,
		approved_at DATETIME,
		completed_at DATETIME,
		failed_at DATETIME
	)`,
}
