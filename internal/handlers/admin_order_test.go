package handlers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"catering-backend/internal/models"
)

func groupOrder(method string, status models.PaymentStatus) models.Order {
	return models.Order{
		ID:            primitive.NewObjectID(),
		PaymentMethod: method,
		PaymentStatus: status,
	}
}

func TestGroupMarkPaidPlanRejectsMixedMethods(t *testing.T) {
	orders := []models.Order{
		groupOrder(models.PaymentMethodCash, models.PaymentStatusUnpaid),
		groupOrder(models.PaymentMethodTransfer, models.PaymentStatusPending),
	}

	_, _, err := groupMarkPaidPlan("grp-1", orders)

	var mixed mixedPaymentMethodsError
	if !errors.As(err, &mixed) {
		t.Fatalf("expected mixedPaymentMethodsError, got %v", err)
	}
	if mixed.GroupID != "grp-1" {
		t.Fatalf("expected group id in error, got %s", mixed.GroupID)
	}
}

func TestGroupMarkPaidPlanCountsEligibleCashOrders(t *testing.T) {
	orders := []models.Order{
		groupOrder(models.PaymentMethodCash, models.PaymentStatusUnpaid),
		groupOrder(models.PaymentMethodCash, models.PaymentStatusPaid),
		groupOrder(models.PaymentMethodCash, models.PaymentStatusUnpaid),
	}

	allowedFrom, eligible, err := groupMarkPaidPlan("grp-1", orders)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowedFrom != models.PaymentStatusUnpaid {
		t.Fatalf("expected cash orders to settle from unpaid, got %s", allowedFrom)
	}
	if eligible != 2 {
		t.Fatalf("expected 2 eligible orders, got %d", eligible)
	}
}

func TestGroupMarkPaidPlanTransferSettlesFromPending(t *testing.T) {
	orders := []models.Order{
		groupOrder(models.PaymentMethodTransfer, models.PaymentStatusPending),
	}

	allowedFrom, eligible, err := groupMarkPaidPlan("grp-1", orders)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowedFrom != models.PaymentStatusPending {
		t.Fatalf("expected transfer orders to settle from pending, got %s", allowedFrom)
	}
	if eligible != 1 {
		t.Fatalf("expected 1 eligible order, got %d", eligible)
	}
}

func TestGroupMarkPaidPlanAllPaidIsNoop(t *testing.T) {
	orders := []models.Order{
		groupOrder(models.PaymentMethodCash, models.PaymentStatusPaid),
		groupOrder(models.PaymentMethodCash, models.PaymentStatusPaid),
	}

	_, eligible, err := groupMarkPaidPlan("grp-1", orders)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eligible != 0 {
		t.Fatalf("expected no eligible orders, got %d", eligible)
	}
}

func TestOrderStatusChangePinsObservedStatus(t *testing.T) {
	order := models.Order{
		ID:          primitive.NewObjectID(),
		OrderStatus: models.OrderStatusProcessing,
	}

	filter, update := orderStatusChange(order, models.OrderStatusReady)

	if filter["_id"] != order.ID {
		t.Fatalf("expected filter to match the order id, got %v", filter["_id"])
	}
	if filter["orderStatus"] != models.OrderStatusProcessing {
		t.Fatalf("expected filter to pin the observed status, got %v", filter["orderStatus"])
	}

	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected a $set update, got %v", update)
	}
	if set["orderStatus"] != models.OrderStatusReady {
		t.Fatalf("expected update to set the target status, got %v", set["orderStatus"])
	}
}

func TestCompletedOrderMessage(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	order := models.Order{
		ID:           primitive.NewObjectID(),
		OrderDates:   models.DateList{date},
		DeliveryTime: models.DeliveryTimeMorning,
	}

	msg := completedOrderMessage("Budi", order)

	for _, want := range []string{"Budi", order.ID.Hex(), "2026-09-10", "Pagi"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected message to contain %q, got %q", want, msg)
		}
	}
}
