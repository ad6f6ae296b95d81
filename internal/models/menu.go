package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-day format used to match menus, holidays and
// order delivery dates.
const DateLayout = "2006-01-02"

// Menu is one orderable dish for one calendar date. A nil Stock means
// unlimited portions; a nil Date means the menu is not orderable yet.
type Menu struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Category    StringList         `bson:"category,omitempty" json:"category,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Stock       *int               `bson:"stock" json:"stock"`
	Date        *time.Time         `bson:"date" json:"date"`
	IsAvailable bool               `bson:"isAvailable" json:"isAvailable"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// DateKey returns the calendar-day key for a delivery date.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}
