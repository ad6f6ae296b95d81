package handlers

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"catering-backend/internal/models"
)

/* =========================
   CHECKOUT VALIDATION
========================= */

type checkoutItem struct {
	MenuID       primitive.ObjectID
	Quantity     int
	SpecialNotes string
}

var errNoItems = errors.New("at least one item is required")

type menuNotFoundError struct {
	MenuID primitive.ObjectID
}

func (e menuNotFoundError) Error() string {
	return fmt.Sprintf("menu not found: %s", e.MenuID.Hex())
}

type menuUnavailableError struct {
	MenuID primitive.ObjectID
	Name   string
}

func (e menuUnavailableError) Error() string {
	return fmt.Sprintf("menu is not available: %s", e.Name)
}

type menuUndatedError struct {
	MenuID primitive.ObjectID
	Name   string
}

func (e menuUndatedError) Error() string {
	return fmt.Sprintf("menu has no delivery date and cannot be ordered: %s", e.Name)
}

type holidayClosedError struct {
	DateKey string
	Name    string
}

func (e holidayClosedError) Error() string {
	return fmt.Sprintf("no delivery on %s (%s)", e.DateKey, e.Name)
}

// insufficientStockError reports a shortage. Available is nil when the
// current count is not reliably known, e.g. after a reservation lost a race.
type insufficientStockError struct {
	MenuID    primitive.ObjectID
	Name      string
	Available *int
	Requested int
}

func (e insufficientStockError) Error() string {
	if e.Available != nil {
		return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", e.Name, *e.Available, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for %s: %d requested", e.Name, e.Requested)
}

// validateCheckoutItems checks the request-level rules: items non-empty,
// positive quantities, no menu referenced twice.
func validateCheckoutItems(items []checkoutItem) error {
	if len(items) == 0 {
		return errNoItems
	}

	seen := map[primitive.ObjectID]struct{}{}
	for _, item := range items {
		if item.Quantity <= 0 {
			return errors.New("quantity must be greater than zero")
		}
		if _, ok := seen[item.MenuID]; ok {
			return fmt.Errorf("duplicate menu in request: %s", item.MenuID.Hex())
		}
		seen[item.MenuID] = struct{}{}
	}
	return nil
}

// validateMenusForCheckout checks every referenced menu against the catalog,
// rule by rule over the whole request so the first broken rule wins:
// existence, availability, delivery date, holiday closure, stock.
func validateMenusForCheckout(items []checkoutItem, menus map[primitive.ObjectID]models.Menu, holidays map[string]models.Holiday) error {
	for _, item := range items {
		if _, ok := menus[item.MenuID]; !ok {
			return menuNotFoundError{MenuID: item.MenuID}
		}
	}

	for _, item := range items {
		menu := menus[item.MenuID]
		if !menu.IsAvailable || menu.IsDeleted {
			return menuUnavailableError{MenuID: item.MenuID, Name: menu.Name}
		}
	}

	for _, item := range items {
		menu := menus[item.MenuID]
		if menu.Date == nil {
			return menuUndatedError{MenuID: item.MenuID, Name: menu.Name}
		}
	}

	for _, item := range items {
		menu := menus[item.MenuID]
		key := models.DateKey(*menu.Date)
		if holiday, ok := holidays[key]; ok {
			return holidayClosedError{DateKey: key, Name: holiday.Name}
		}
	}

	for _, item := range items {
		menu := menus[item.MenuID]
		if menu.Stock != nil && *menu.Stock < item.Quantity {
			return insufficientStockError{
				MenuID:    item.MenuID,
				Name:      menu.Name,
				Available: menu.Stock,
				Requested: item.Quantity,
			}
		}
	}

	return nil
}

/* =========================
   SPLIT PLAN
========================= */

// plannedOrder is one order-to-be for a single delivery date.
type plannedOrder struct {
	DateKey    string
	Date       time.Time
	Items      []models.OrderItem
	TotalPrice float64
}

// buildSplitPlan partitions the validated items by their menu's delivery
// date. The date always comes from the menu, never from client input. Each
// partition carries its own total, priced from the menu at this moment.
func buildSplitPlan(items []checkoutItem, menus map[primitive.ObjectID]models.Menu) []plannedOrder {
	byDate := map[string]*plannedOrder{}

	for _, item := range items {
		menu := menus[item.MenuID]
		key := models.DateKey(*menu.Date)

		plan, ok := byDate[key]
		if !ok {
			plan = &plannedOrder{DateKey: key, Date: *menu.Date}
			byDate[key] = plan
		}

		plan.Items = append(plan.Items, models.OrderItem{
			MenuID:       item.MenuID,
			Name:         menu.Name,
			Price:        menu.Price,
			Quantity:     item.Quantity,
			SpecialNotes: item.SpecialNotes,
		})
		plan.TotalPrice += menu.Price * float64(item.Quantity)
	}

	plans := make([]plannedOrder, 0, len(byDate))
	for _, plan := range byDate {
		plans = append(plans, *plan)
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].DateKey < plans[j].DateKey
	})

	return plans
}

/* =========================
   DELIVERY METADATA
========================= */

// validateDeliveryDetails checks the checkout metadata shared by every
// resulting order.
func validateDeliveryDetails(deliveryType, deliveryAddress, deliveryTime, paymentMethod string) error {
	switch deliveryType {
	case models.DeliveryTypeDelivery:
		if deliveryAddress == "" {
			return errors.New("deliveryAddress is required for delivery orders")
		}
	case models.DeliveryTypePickup:
	default:
		return fmt.Errorf("invalid delivery type: %s", deliveryType)
	}

	switch deliveryTime {
	case models.DeliveryTimeMorning, models.DeliveryTimeAfternoon, models.DeliveryTimeEvening:
	default:
		return fmt.Errorf("invalid delivery time: %s", deliveryTime)
	}

	switch paymentMethod {
	case models.PaymentMethodCash, models.PaymentMethodTransfer:
	default:
		return fmt.Errorf("invalid payment method: %s", paymentMethod)
	}

	return nil
}
