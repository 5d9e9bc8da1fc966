package models

import "gorm.io/gorm"

// Message belongs to a parcel conversation between sender and traveler.
type Message struct {
	gorm.Model
	ParcelID   uint   `json:"parcelId" gorm:"not null;index"`
	Parcel     Parcel `json:"parcel" gorm:"foreignKey:ParcelID"`
	SenderID   uint   `json:"senderId" gorm:"not null;index"`
	Sender     User   `json:"sender" gorm:"foreignKey:SenderID"`
	ReceiverID uint   `json:"receiverId" gorm:"not null;index"`
	Receiver   User   `json:"receiver" gorm:"foreignKey:ReceiverID"`
	Message    string `json:"message" gorm:"not null"`
	IsRead     bool   `json:"isRead" gorm:"default:false"`
}

func (Message) TableName() string {
	return "messages"
}
