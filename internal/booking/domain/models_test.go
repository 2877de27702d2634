package domain_test

import (
	"errors"
	"testing"

	"github.com/smallbiznis/serbiz/internal/booking/domain"
)

func TestDecideChargeTransitionTable(t *testing.T) {
	cases := []struct {
		name       string
		booking    domain.Booking
		wantStatus domain.Status
		wantHold   bool
		wantAdd    bool
		wantErr    error
	}{
		{
			name:       "escrow booking enters admin review",
			booking:    domain.Booking{Status: domain.StatusAwaitingPayment},
			wantStatus: domain.StatusPending,
			wantHold:   true,
		},
		{
			name: "pay first upfront charge holds funds",
			booking: domain.Booking{
				Status:            domain.StatusPendingPayment,
				PaymentPreference: domain.PayFirst,
			},
			wantStatus: domain.StatusPendingPayment,
			wantHold:   true,
		},
		{
			name: "pay first additional charge after upfront",
			booking: domain.Booking{
				Status:            domain.StatusPendingCompletion,
				PaymentPreference: domain.PayFirst,
				IsPaidUpfront:     true,
			},
			wantStatus: domain.StatusPaymentReceived,
			wantAdd:    true,
		},
		{
			name: "pay first additional charge from pending payment",
			booking: domain.Booking{
				Status:            domain.StatusPendingPayment,
				PaymentPreference: domain.PayFirst,
				IsPaidUpfront:     true,
			},
			wantStatus: domain.StatusPaymentReceived,
			wantAdd:    true,
		},
		{
			name: "pay first additional charge from wrong status",
			booking: domain.Booking{
				Status:            domain.StatusInProgress,
				PaymentPreference: domain.PayFirst,
				IsPaidUpfront:     true,
			},
			wantErr: domain.ErrInvalidTransition,
		},
		{
			name: "pay later final payment",
			booking: domain.Booking{
				Status:            domain.StatusInProgress,
				PaymentPreference: domain.PayLater,
			},
			wantStatus: domain.StatusPaymentReceived,
		},
		{
			name:    "completed booking rejects payment",
			booking: domain.Booking{Status: domain.StatusCompleted},
			wantErr: domain.ErrTerminalStatus,
		},
		{
			name:    "cancelled booking rejects payment",
			booking: domain.Booking{Status: domain.StatusCancelled, PaymentPreference: domain.PayLater},
			wantErr: domain.ErrTerminalStatus,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, err := domain.DecideCharge(&tc.booking)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("decide charge: %v", err)
			}
			if outcome.NextStatus != tc.wantStatus {
				t.Fatalf("next status = %s, want %s", outcome.NextStatus, tc.wantStatus)
			}
			if outcome.Hold != tc.wantHold {
				t.Fatalf("hold = %v, want %v", outcome.Hold, tc.wantHold)
			}
			if outcome.Additional != tc.wantAdd {
				t.Fatalf("additional = %v, want %v", outcome.Additional, tc.wantAdd)
			}
		})
	}
}

func TestDecideChargeNilBooking(t *testing.T) {
	if _, err := domain.DecideCharge(nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []domain.Status{
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusDeclined,
		domain.StatusRejected,
	}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}

	open := []domain.Status{
		domain.StatusPending,
		domain.StatusAwaitingPayment,
		domain.StatusInProgress,
		domain.StatusPendingCompletion,
		domain.StatusPaymentReceived,
	}
	for _, s := range open {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}
