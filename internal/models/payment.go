package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment records one gateway transaction. GatewayOrderID is the generated id
// sent to Midtrans; webhook callbacks are matched back through it and applied
// to every linked order.
type Payment struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	GatewayOrderID    string               `bson:"gatewayOrderId" json:"gatewayOrderId"`
	OrderIDs          []primitive.ObjectID `bson:"orderIds" json:"orderIds"`
	GroupID           *string              `bson:"groupId,omitempty" json:"groupId,omitempty"`
	GrossAmount       float64              `bson:"grossAmount" json:"grossAmount"`
	Token             string               `bson:"token" json:"token"`
	RedirectURL       string               `bson:"redirectUrl" json:"redirectUrl"`
	TransactionStatus string               `bson:"transactionStatus" json:"transactionStatus"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt" json:"updatedAt"`
}
