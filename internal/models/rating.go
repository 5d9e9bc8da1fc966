package models

import "gorm.io/gorm"

// Rating is given by the sender to the traveler, one per completed parcel.
type Rating struct {
	gorm.Model
	ParcelID   uint    `json:"parcelId" gorm:"not null;uniqueIndex"`
	Parcel     Parcel  `json:"parcel" gorm:"foreignKey:ParcelID"`
	SenderID   uint    `json:"senderId" gorm:"not null"`
	Sender     User    `json:"sender" gorm:"foreignKey:SenderID"`
	TravelerID uint    `json:"travelerId" gorm:"not null;index"`
	Traveler   User    `json:"traveler" gorm:"foreignKey:TravelerID"`
	Rating     float64 `json:"rating" gorm:"not null"`
	Review     string  `json:"review" gorm:"size:500"`
}

func (Rating) TableName() string {
	return "ratings"
}
