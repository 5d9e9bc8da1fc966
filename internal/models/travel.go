package models

import (
	"time"

	"gorm.io/gorm"
)

type TravelStatus string

const (
	TravelStatusActive    TravelStatus = "active"
	TravelStatusInactive  TravelStatus = "inactive"
	TravelStatusCompleted TravelStatus = "completed"
)

type VehicleType string

const (
	VehicleTypeCar    VehicleType = "car"
	VehicleTypeTrain  VehicleType = "train"
	VehicleTypeBus    VehicleType = "bus"
	VehicleTypeFlight VehicleType = "flight"
)

type Travel struct {
	gorm.Model
	TravelerID     uint         `json:"travelerId" gorm:"not null;index"`
	Traveler       User         `json:"traveler" gorm:"foreignKey:TravelerID"`
	FromCity       string       `json:"fromCity" gorm:"not null"`
	ToCity         string       `json:"toCity" gorm:"not null"`
	Date           time.Time    `json:"date" gorm:"not null"`
	Time           string       `json:"time" gorm:"not null"`
	VehicleType    VehicleType  `json:"vehicleType" gorm:"type:text;not null"`
	AvailableSpace ParcelSize   `json:"availableSpace" gorm:"type:text;not null"`
	Status         TravelStatus `json:"status" gorm:"type:text;not null;default:'active';index"`

	// Parcels bound to this post at acceptance; append-only while active.
	AcceptedParcels []Parcel `json:"acceptedParcels" gorm:"foreignKey:TravelPostID"`
}

func (Travel) TableName() string {
	return "travels"
}

// IsValidVehicleType reports whether v is one of the supported vehicle types.
func IsValidVehicleType(v VehicleType) bool {
	switch v {
	case VehicleTypeCar, VehicleTypeTrain, VehicleTypeBus, VehicleTypeFlight:
		return true
	}
	return false
}
