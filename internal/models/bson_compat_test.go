package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestStringListDecodesLegacyString(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"category": "  Nasi Box  "})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var doc struct {
		Category StringList `bson:"category"`
	}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(doc.Category) != 1 || doc.Category[0] != "Nasi Box" {
		t.Fatalf("expected single trimmed category, got %v", doc.Category)
	}
}

func TestDateListDecodesLegacyBareDate(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	raw, err := bson.Marshal(bson.M{"orderDates": date})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var doc struct {
		OrderDates DateList `bson:"orderDates"`
	}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(doc.OrderDates) != 1 || !doc.OrderDates[0].Equal(date) {
		t.Fatalf("expected the bare datetime wrapped in a list, got %v", doc.OrderDates)
	}
}

func TestDateListDecodesArray(t *testing.T) {
	dates := []time.Time{
		time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
	}
	raw, err := bson.Marshal(bson.M{"orderDates": dates})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var doc struct {
		OrderDates DateList `bson:"orderDates"`
	}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(doc.OrderDates) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(doc.OrderDates))
	}
}
