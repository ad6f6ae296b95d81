package handlers

import (
	"errors"
	"testing"

	"catering-backend/internal/models"
)

func TestCancelPlanRestoresStockOnFirstCancel(t *testing.T) {
	order := models.Order{OrderStatus: models.OrderStatusProcessing}

	restore, err := cancelPlan(order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !restore {
		t.Fatal("expected first cancellation to restore stock")
	}
}

func TestCancelPlanNeverRestoresTwice(t *testing.T) {
	order := models.Order{
		OrderStatus:   models.OrderStatusPending,
		StockRestored: true,
	}

	restore, err := cancelPlan(order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restore {
		t.Fatal("expected restored stock to stay untouched")
	}
}

func TestCancelPlanRejectsCancelledOrder(t *testing.T) {
	order := models.Order{
		OrderStatus:   models.OrderStatusCancelled,
		StockRestored: true,
	}

	restore, err := cancelPlan(order)
	if !errors.Is(err, errAlreadyCancelled) {
		t.Fatalf("expected errAlreadyCancelled, got %v", err)
	}
	if restore {
		t.Fatal("expected no stock restore for a cancelled order")
	}
}
