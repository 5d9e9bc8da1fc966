package models

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusHeld     PaymentStatus = "held"
	PaymentStatusReleased PaymentStatus = "released"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment is the escrow record for an accepted parcel. Funds are held at
// acceptance and released exactly once when the parcel completes.
type Payment struct {
	gorm.Model
	ParcelID   uint          `json:"parcelId" gorm:"not null;uniqueIndex"`
	Parcel     Parcel        `json:"parcel" gorm:"foreignKey:ParcelID"`
	SenderID   uint          `json:"senderId" gorm:"not null;index"`
	Sender     User          `json:"sender" gorm:"foreignKey:SenderID"`
	TravelerID uint          `json:"travelerId" gorm:"not null;index"`
	Traveler   User          `json:"traveler" gorm:"foreignKey:TravelerID"`
	Amount     float64       `json:"amount" gorm:"not null"`
	Status     PaymentStatus `json:"status" gorm:"type:text;not null;default:'held';index"`

	// Reference supplied by the external payment-intent service; opaque here.
	PaymentIntentID string `json:"paymentIntentId" gorm:"column:payment_intent_id"`

	HeldAt     time.Time  `json:"heldAt"`
	ReleasedAt *time.Time `json:"releasedAt"`
}

func (Payment) TableName() string {
	return "payments"
}
