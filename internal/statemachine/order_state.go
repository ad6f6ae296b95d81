package statemachine

import (
	"fmt"

	"catering-backend/internal/models"
)

// Transition defines one valid order-status change.
type Transition struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// validTransitions is the authoritative lifecycle definition:
// pending -> processing -> (ready) -> completed, with cancellation reachable
// from every non-terminal state.
var validTransitions = []Transition{
	{From: models.OrderStatusPending, To: models.OrderStatusProcessing},
	{From: models.OrderStatusPending, To: models.OrderStatusCancelled},
	{From: models.OrderStatusProcessing, To: models.OrderStatusReady},
	{From: models.OrderStatusProcessing, To: models.OrderStatusCompleted},
	{From: models.OrderStatusProcessing, To: models.OrderStatusCancelled},
	{From: models.OrderStatusReady, To: models.OrderStatusCompleted},
	{From: models.OrderStatusReady, To: models.OrderStatusCancelled},
}

var transitionMap = func() map[Transition]bool {
	m := make(map[Transition]bool)
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// adminTargets are the statuses an admin may set directly. The initial
// pending status is not a valid target.
var adminTargets = map[models.OrderStatus]bool{
	models.OrderStatusProcessing: true,
	models.OrderStatusReady:      true,
	models.OrderStatusCompleted:  true,
	models.OrderStatusCancelled:  true,
}

// IsAdminTarget reports whether an admin may request this status.
func IsAdminTarget(status models.OrderStatus) bool {
	return adminTargets[status]
}

// IsTerminal reports whether no further status change is allowed.
func IsTerminal(status models.OrderStatus) bool {
	return status == models.OrderStatusCompleted || status == models.OrderStatusCancelled
}

// ValidTransitionsFrom returns all valid next statuses from a given status.
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks whether an order may move between two statuses.
func CanTransition(from, to models.OrderStatus) error {
	if transitionMap[Transition{From: from, To: to}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s to %s is not allowed, valid transitions from %s are: %s",
		from, to, from, describeValidFrom(from))
}

// CanComplete enforces the payment gate on completion: an order may only be
// completed while it is paid.
func CanComplete(payment models.PaymentStatus) error {
	if payment == models.PaymentStatusPaid {
		return nil
	}
	return fmt.Errorf("order must be paid before completing, current payment status is %s", payment)
}

// InitialPaymentStatus returns the payment status a fresh order starts in
// for the given payment method.
func InitialPaymentStatus(method string) (models.PaymentStatus, error) {
	switch method {
	case models.PaymentMethodCash:
		return models.PaymentStatusUnpaid, nil
	case models.PaymentMethodTransfer:
		return models.PaymentStatusPending, nil
	default:
		return "", fmt.Errorf("invalid payment method: %s", method)
	}
}

// MarkPaidAllowedFrom returns the payment statuses a markPaid action may
// move to paid for the given payment method: collected cash settles unpaid
// orders, confirmed transfers settle pending ones.
func MarkPaidAllowedFrom(method string) (models.PaymentStatus, error) {
	switch method {
	case models.PaymentMethodCash:
		return models.PaymentStatusUnpaid, nil
	case models.PaymentMethodTransfer:
		return models.PaymentStatusPending, nil
	default:
		return "", fmt.Errorf("invalid payment method: %s", method)
	}
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}
