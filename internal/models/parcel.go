package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type ParcelSize string

const (
	ParcelSizeSmall  ParcelSize = "small"
	ParcelSizeMedium ParcelSize = "medium"
)

type ParcelStatus string

const (
	ParcelStatusRequested ParcelStatus = "requested"
	ParcelStatusAccepted  ParcelStatus = "accepted"
	ParcelStatusPickedUp  ParcelStatus = "picked_up"
	ParcelStatusDelivered ParcelStatus = "delivered"
	ParcelStatusCompleted ParcelStatus = "completed"
	ParcelStatusCancelled ParcelStatus = "cancelled"
)

// parcelTransitions is the single authoritative lifecycle table.
// requested is only left through Accept, never through a status update.
var parcelTransitions = map[ParcelStatus][]ParcelStatus{
	ParcelStatusAccepted:  {ParcelStatusPickedUp, ParcelStatusCancelled},
	ParcelStatusPickedUp:  {ParcelStatusDelivered},
	ParcelStatusDelivered: {ParcelStatusCompleted},
}

// CanTransitionTo reports whether the lifecycle table allows moving to target.
func (s ParcelStatus) CanTransitionTo(target ParcelStatus) bool {
	for _, allowed := range parcelTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Reward bounds for a parcel request.
const (
	MinRewardAmount = 1.0
	MaxRewardAmount = 10000.0
)

var blockedKeywords = []string{"drugs", "weapon", "alcohol", "explosive", "gun", "knife"}

// ProhibitedKeyword returns the first blocked keyword found in the
// description, if any.
func ProhibitedKeyword(description string) (string, bool) {
	lowered := strings.ToLower(description)
	for _, keyword := range blockedKeywords {
		if strings.Contains(lowered, keyword) {
			return keyword, true
		}
	}
	return "", false
}

type Parcel struct {
	gorm.Model
	SenderID          uint         `json:"senderId" gorm:"not null;index"`
	Sender            User         `json:"sender" gorm:"foreignKey:SenderID"`
	PickupCity        string       `json:"pickupCity" gorm:"not null"`
	DropCity          string       `json:"dropCity" gorm:"not null"`
	ParcelSize        ParcelSize   `json:"parcelSize" gorm:"type:text;not null"`
	ParcelDescription string       `json:"parcelDescription" gorm:"not null"`
	RewardAmount      float64      `json:"rewardAmount" gorm:"not null"`
	ParcelImage       string       `json:"parcelImage"`
	Status            ParcelStatus `json:"status" gorm:"type:text;not null;default:'requested';index"`

	// Null until acceptance, then fixed for the life of the parcel.
	TravelerID   *uint   `json:"travelerId" gorm:"index"`
	Traveler     *User   `json:"traveler,omitempty" gorm:"foreignKey:TravelerID"`
	TravelPostID *uint   `json:"travelPostId"`
	TravelPost   *Travel `json:"travelPost,omitempty" gorm:"foreignKey:TravelPostID"`

	AcceptedAt  *time.Time `json:"acceptedAt"`
	PickedUpAt  *time.Time `json:"pickedUpAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (Parcel) TableName() string {
	return "parcels"
}

// Validate screens a parcel request before it is persisted.
func (p *Parcel) Validate() error {
	if p.ParcelSize != ParcelSizeSmall && p.ParcelSize != ParcelSizeMedium {
		return fmt.Errorf("parcel size must be small or medium")
	}
	if p.RewardAmount < MinRewardAmount || p.RewardAmount > MaxRewardAmount {
		return fmt.Errorf("reward amount must be between %.0f and %.0f", MinRewardAmount, MaxRewardAmount)
	}
	if keyword, found := ProhibitedKeyword(p.ParcelDescription); found {
		return fmt.Errorf("parcel description contains prohibited keyword: %s", keyword)
	}
	return nil
}
