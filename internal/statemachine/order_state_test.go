package statemachine

import (
	"testing"

	"catering-backend/internal/models"
)

func TestCanTransitionHappyPath(t *testing.T) {
	steps := []Transition{
		{From: models.OrderStatusPending, To: models.OrderStatusProcessing},
		{From: models.OrderStatusProcessing, To: models.OrderStatusReady},
		{From: models.OrderStatusReady, To: models.OrderStatusCompleted},
	}
	for _, step := range steps {
		if err := CanTransition(step.From, step.To); err != nil {
			t.Fatalf("expected %s -> %s to be valid, got %v", step.From, step.To, err)
		}
	}
}

func TestCanTransitionRejectsSkippingProcessing(t *testing.T) {
	if err := CanTransition(models.OrderStatusPending, models.OrderStatusCompleted); err == nil {
		t.Fatal("expected pending -> completed to be rejected")
	}
}

func TestCanTransitionTerminalStates(t *testing.T) {
	for _, from := range []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusCancelled} {
		if !IsTerminal(from) {
			t.Fatalf("expected %s to be terminal", from)
		}
		for _, to := range []models.OrderStatus{
			models.OrderStatusPending,
			models.OrderStatusProcessing,
			models.OrderStatusReady,
			models.OrderStatusCompleted,
			models.OrderStatusCancelled,
		} {
			if err := CanTransition(from, to); err == nil {
				t.Fatalf("expected %s -> %s to be rejected", from, to)
			}
		}
	}
}

func TestCancellableFromEveryNonTerminalState(t *testing.T) {
	for _, from := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusReady,
	} {
		if err := CanTransition(from, models.OrderStatusCancelled); err != nil {
			t.Fatalf("expected %s -> cancelled to be valid, got %v", from, err)
		}
	}
}

func TestIsAdminTargetExcludesPending(t *testing.T) {
	if IsAdminTarget(models.OrderStatusPending) {
		t.Fatal("pending must not be an admin-settable target")
	}
	for _, target := range []models.OrderStatus{
		models.OrderStatusProcessing,
		models.OrderStatusReady,
		models.OrderStatusCompleted,
		models.OrderStatusCancelled,
	} {
		if !IsAdminTarget(target) {
			t.Fatalf("expected %s to be an admin target", target)
		}
	}
}

func TestCanCompleteRequiresPaid(t *testing.T) {
	if err := CanComplete(models.PaymentStatusPaid); err != nil {
		t.Fatalf("expected paid order to be completable, got %v", err)
	}
	for _, payment := range []models.PaymentStatus{models.PaymentStatusUnpaid, models.PaymentStatusPending} {
		if err := CanComplete(payment); err == nil {
			t.Fatalf("expected completion with payment status %s to be rejected", payment)
		}
	}
}

func TestInitialPaymentStatusByMethod(t *testing.T) {
	status, err := InitialPaymentStatus(models.PaymentMethodCash)
	if err != nil || status != models.PaymentStatusUnpaid {
		t.Fatalf("expected cash to start unpaid, got %s, %v", status, err)
	}

	status, err = InitialPaymentStatus(models.PaymentMethodTransfer)
	if err != nil || status != models.PaymentStatusPending {
		t.Fatalf("expected transfer to start pending, got %s, %v", status, err)
	}

	if _, err := InitialPaymentStatus("voucher"); err == nil {
		t.Fatal("expected unknown payment method to be rejected")
	}
}

func TestMarkPaidAllowedFrom(t *testing.T) {
	from, err := MarkPaidAllowedFrom(models.PaymentMethodCash)
	if err != nil || from != models.PaymentStatusUnpaid {
		t.Fatalf("expected cash markPaid to settle unpaid orders, got %s, %v", from, err)
	}

	from, err = MarkPaidAllowedFrom(models.PaymentMethodTransfer)
	if err != nil || from != models.PaymentStatusPending {
		t.Fatalf("expected transfer markPaid to settle pending orders, got %s, %v", from, err)
	}
}

func TestMapGatewayStatusSettlement(t *testing.T) {
	outcome := MapGatewayStatus(GatewayStatusSettlement, "", models.PaymentStatusPending)
	if !outcome.Apply {
		t.Fatal("expected settlement to apply")
	}
	if outcome.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("expected settlement to mark paid, got %s", outcome.PaymentStatus)
	}
	if !outcome.SetOrderStatus || outcome.OrderStatus != models.OrderStatusProcessing {
		t.Fatalf("expected settlement to move order to processing, got %+v", outcome)
	}
}

func TestMapGatewayStatusCaptureFraudChecks(t *testing.T) {
	outcome := MapGatewayStatus(GatewayStatusCapture, "accept", models.PaymentStatusPending)
	if !outcome.Apply || outcome.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("expected accepted capture to mark paid, got %+v", outcome)
	}

	outcome = MapGatewayStatus(GatewayStatusCapture, "challenge", models.PaymentStatusPending)
	if outcome.Apply {
		t.Fatalf("expected challenged capture to be ignored, got %+v", outcome)
	}
}

func TestMapGatewayStatusExpireCancels(t *testing.T) {
	for _, status := range []string{GatewayStatusDeny, GatewayStatusCancel, GatewayStatusExpire, GatewayStatusFailure} {
		outcome := MapGatewayStatus(status, "", models.PaymentStatusPending)
		if !outcome.Apply || !outcome.Cancel {
			t.Fatalf("expected %s to cancel the order, got %+v", status, outcome)
		}
		if outcome.PaymentStatus != models.PaymentStatusUnpaid {
			t.Fatalf("expected %s to mark unpaid, got %s", status, outcome.PaymentStatus)
		}
		if outcome.OrderStatus != models.OrderStatusCancelled {
			t.Fatalf("expected %s to set cancelled, got %s", status, outcome.OrderStatus)
		}
	}
}

func TestMapGatewayStatusNeverRevertsSettledPayment(t *testing.T) {
	for _, status := range []string{GatewayStatusDeny, GatewayStatusCancel, GatewayStatusExpire, GatewayStatusFailure, GatewayStatusPending} {
		outcome := MapGatewayStatus(status, "", models.PaymentStatusPaid)
		if outcome.Apply {
			t.Fatalf("expected %s after settlement to be ignored, got %+v", status, outcome)
		}
	}
}

func TestMapGatewayStatusUnknownIgnored(t *testing.T) {
	if outcome := MapGatewayStatus("refund", "", models.PaymentStatusPending); outcome.Apply {
		t.Fatalf("expected unknown gateway status to be ignored, got %+v", outcome)
	}
}
