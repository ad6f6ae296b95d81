package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
)

const (
	DeliveryTypeDelivery = "Delivery"
	DeliveryTypePickup   = "Pickup"
)

const (
	DeliveryTimeMorning   = "Pagi"
	DeliveryTimeAfternoon = "Siang"
	DeliveryTimeEvening   = "Sore"
)

// OrderItem is one menu line inside an order. Name and Price are captured
// from the menu at order-creation time and never change afterwards.
type OrderItem struct {
	MenuID       primitive.ObjectID `bson:"menuId" json:"menuId"`
	Name         string             `bson:"name" json:"name"`
	Price        float64            `bson:"price" json:"price"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	SpecialNotes string             `bson:"specialNotes,omitempty" json:"specialNotes,omitempty"`
}

// Order is one persisted order for exactly one delivery date. Orders created
// from a multi-date checkout share a GroupID with their siblings.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	GroupID         *string            `bson:"groupId,omitempty" json:"groupId,omitempty"`
	Items           []OrderItem        `bson:"items" json:"items"`
	OrderDates      DateList           `bson:"orderDates" json:"orderDates"`
	DeliveryType    string             `bson:"deliveryType" json:"deliveryType"`
	DeliveryAddress string             `bson:"deliveryAddress,omitempty" json:"deliveryAddress,omitempty"`
	DeliveryTime    string             `bson:"deliveryTime" json:"deliveryTime"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	PaymentStatus   PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus     OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	StockRestored   bool               `bson:"stockRestored" json:"stockRestored"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DeliveryDate returns the single delivery date of a post-split order.
func (o Order) DeliveryDate() (time.Time, bool) {
	if len(o.OrderDates) == 0 {
		return time.Time{}, false
	}
	return o.OrderDates[0], true
}
