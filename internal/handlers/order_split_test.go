package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"catering-backend/internal/models"
)

func menuOn(date time.Time, name string, price float64, stock *int) models.Menu {
	return models.Menu{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Price:       price,
		Stock:       stock,
		Date:        &date,
		IsAvailable: true,
	}
}

func intPtr(v int) *int { return &v }

func asMap(menus ...models.Menu) map[primitive.ObjectID]models.Menu {
	byID := make(map[primitive.ObjectID]models.Menu, len(menus))
	for _, menu := range menus {
		byID[menu.ID] = menu
	}
	return byID
}

func TestValidateCheckoutItemsRejectsEmptyCart(t *testing.T) {
	if err := validateCheckoutItems(nil); err == nil {
		t.Fatal("expected error for empty cart")
	}
}

func TestValidateCheckoutItemsRejectsZeroQuantity(t *testing.T) {
	items := []checkoutItem{{MenuID: primitive.NewObjectID(), Quantity: 0}}
	if err := validateCheckoutItems(items); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestValidateCheckoutItemsRejectsDuplicateMenu(t *testing.T) {
	id := primitive.NewObjectID()
	items := []checkoutItem{
		{MenuID: id, Quantity: 1},
		{MenuID: id, Quantity: 2},
	}
	if err := validateCheckoutItems(items); err == nil {
		t.Fatal("expected error for duplicate menu")
	}
}

func TestValidateMenusForCheckoutMissingMenu(t *testing.T) {
	missing := primitive.NewObjectID()
	items := []checkoutItem{{MenuID: missing, Quantity: 1}}

	err := validateMenusForCheckout(items, asMap(), map[string]models.Holiday{})

	var notFound menuNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected menuNotFoundError, got %v", err)
	}
	if notFound.MenuID != missing {
		t.Fatalf("expected missing menu id in error, got %s", notFound.MenuID.Hex())
	}
}

func TestValidateMenusForCheckoutUnavailableMenu(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	menu := menuOn(date, "Nasi Box", 25000, nil)
	menu.IsAvailable = false

	err := validateMenusForCheckout(
		[]checkoutItem{{MenuID: menu.ID, Quantity: 1}},
		asMap(menu),
		map[string]models.Holiday{},
	)

	var unavailable menuUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected menuUnavailableError, got %v", err)
	}
}

func TestValidateMenusForCheckoutUndatedMenu(t *testing.T) {
	menu := models.Menu{
		ID:          primitive.NewObjectID(),
		Name:        "Snack Box",
		Price:       10000,
		IsAvailable: true,
	}

	err := validateMenusForCheckout(
		[]checkoutItem{{MenuID: menu.ID, Quantity: 1}},
		asMap(menu),
		map[string]models.Holiday{},
	)

	var undated menuUndatedError
	if !errors.As(err, &undated) {
		t.Fatalf("expected menuUndatedError, got %v", err)
	}
}

func TestValidateMenusForCheckoutHolidayClosure(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	menu := menuOn(date, "Nasi Box", 25000, nil)
	holidays := map[string]models.Holiday{
		"2026-09-10": {Date: date, Name: "Libur Nasional"},
	}

	err := validateMenusForCheckout(
		[]checkoutItem{{MenuID: menu.ID, Quantity: 1}},
		asMap(menu),
		holidays,
	)

	var closed holidayClosedError
	if !errors.As(err, &closed) {
		t.Fatalf("expected holidayClosedError, got %v", err)
	}
}

func TestValidateMenusForCheckoutInsufficientStock(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	menu := menuOn(date, "Nasi Box", 25000, intPtr(2))

	err := validateMenusForCheckout(
		[]checkoutItem{{MenuID: menu.ID, Quantity: 3}},
		asMap(menu),
		map[string]models.Holiday{},
	)

	var stockErr insufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficientStockError, got %v", err)
	}
	if stockErr.Available == nil || *stockErr.Available != 2 || stockErr.Requested != 3 {
		t.Fatalf("expected available=2 requested=3, got %+v", stockErr)
	}
}

func TestValidateMenusForCheckoutUnlimitedStock(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	menu := menuOn(date, "Nasi Box", 25000, nil)

	err := validateMenusForCheckout(
		[]checkoutItem{{MenuID: menu.ID, Quantity: 500}},
		asMap(menu),
		map[string]models.Holiday{},
	)
	if err != nil {
		t.Fatalf("expected unlimited-stock menu to pass, got %v", err)
	}
}

func TestInsufficientStockErrorWithoutKnownCount(t *testing.T) {
	err := insufficientStockError{Name: "Nasi Box", Requested: 3}
	if strings.Contains(err.Error(), "available") {
		t.Fatalf("expected no availability claim when the count is unknown, got %q", err.Error())
	}

	available := 2
	withCount := insufficientStockError{Name: "Nasi Box", Available: &available, Requested: 3}
	if !strings.Contains(withCount.Error(), "2 available") {
		t.Fatalf("expected the known count in the message, got %q", withCount.Error())
	}
}

func TestRespondSplitErrorOmitsUnknownAvailability(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondSplitError(c, "POST /orders", insufficientStockError{
		MenuID:    primitive.NewObjectID(),
		Name:      "Nasi Box",
		Requested: 3,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := body["available"]; ok {
		t.Fatal("expected no available field when the count is unknown")
	}
	if body["requested"] != float64(3) {
		t.Fatalf("expected requested=3 in payload, got %v", body["requested"])
	}
}

func TestBuildSplitPlanPartitionsByMenuDate(t *testing.T) {
	d1 := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)

	mainCourse := menuOn(d1, "Nasi Box", 25000, nil)
	side := menuOn(d1, "Snack Box", 10000, nil)
	nextDay := menuOn(d2, "Tumpeng Mini", 150000, nil)

	items := []checkoutItem{
		{MenuID: nextDay.ID, Quantity: 1},
		{MenuID: mainCourse.ID, Quantity: 4},
		{MenuID: side.ID, Quantity: 2, SpecialNotes: "tanpa sambal"},
	}

	plans := buildSplitPlan(items, asMap(mainCourse, side, nextDay))

	if len(plans) != 2 {
		t.Fatalf("expected 2 orders for 2 distinct dates, got %d", len(plans))
	}

	first, second := plans[0], plans[1]
	if first.DateKey != "2026-09-10" || second.DateKey != "2026-09-11" {
		t.Fatalf("expected plans sorted by date, got %s then %s", first.DateKey, second.DateKey)
	}

	if len(first.Items) != 2 {
		t.Fatalf("expected 2 items on the first date, got %d", len(first.Items))
	}
	if want := 25000*4 + 10000*2; first.TotalPrice != float64(want) {
		t.Fatalf("expected first total %d, got %v", want, first.TotalPrice)
	}
	if second.TotalPrice != 150000 {
		t.Fatalf("expected second total 150000, got %v", second.TotalPrice)
	}

	for _, item := range first.Items {
		if item.Name == "Snack Box" && item.SpecialNotes != "tanpa sambal" {
			t.Fatalf("expected special notes preserved, got %q", item.SpecialNotes)
		}
	}
}

func TestBuildSplitPlanCapturesMenuPrice(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	menu := menuOn(date, "Nasi Box", 27500, nil)

	plans := buildSplitPlan(
		[]checkoutItem{{MenuID: menu.ID, Quantity: 2}},
		asMap(menu),
	)

	if len(plans) != 1 {
		t.Fatalf("expected a single order, got %d", len(plans))
	}
	if plans[0].Items[0].Price != 27500 {
		t.Fatalf("expected the menu price captured on the item, got %v", plans[0].Items[0].Price)
	}
	if plans[0].TotalPrice != 55000 {
		t.Fatalf("expected total 55000, got %v", plans[0].TotalPrice)
	}
}

func TestBuildCheckoutItemsRejectsInvalidID(t *testing.T) {
	_, err := buildCheckoutItems([]createOrderItemRequest{{MenuID: "not-an-id", Quantity: 1}})
	if err == nil {
		t.Fatal("expected error for malformed menu id")
	}
}

func TestValidateDeliveryDetails(t *testing.T) {
	err := validateDeliveryDetails(models.DeliveryTypeDelivery, "", models.DeliveryTimeMorning, models.PaymentMethodCash)
	if err == nil {
		t.Fatal("expected error when delivery order has no address")
	}

	err = validateDeliveryDetails(models.DeliveryTypePickup, "", models.DeliveryTimeAfternoon, models.PaymentMethodTransfer)
	if err != nil {
		t.Fatalf("expected pickup without address to pass, got %v", err)
	}

	if err := validateDeliveryDetails(models.DeliveryTypePickup, "", "Malam", models.PaymentMethodCash); err == nil {
		t.Fatal("expected error for invalid delivery time")
	}

	if err := validateDeliveryDetails(models.DeliveryTypePickup, "", models.DeliveryTimeEvening, "voucher"); err == nil {
		t.Fatal("expected error for invalid payment method")
	}
}
