package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Holiday marks a calendar day the kitchen does not deliver on. Orders for
// menus dated on a holiday are rejected at checkout.
type Holiday struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date      time.Time          `bson:"date" json:"date"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
