package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type KYCStatus string

const (
	KYCStatusNone     KYCStatus = "none"
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusVerified KYCStatus = "verified"
)

type User struct {
	gorm.Model
	Name         string `json:"name" gorm:"column:name;not null"`
	Email        string `json:"email" gorm:"column:email;unique;not null"`
	Password     string `json:"-" gorm:"-"` // Temporary field for password handling
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	Phone        string `json:"phone" gorm:"column:phone"`
	GovernmentID string `json:"governmentId" gorm:"column:government_id"`

	// Aggregates maintained by rating creation and payment release.
	Rating       float64 `json:"rating" gorm:"column:rating;default:0"`
	TotalRatings int     `json:"totalRatings" gorm:"column:total_ratings;default:0"`
	Earnings     float64 `json:"earnings" gorm:"column:earnings;default:0"`

	KYCStatus   KYCStatus `json:"kycStatus" gorm:"column:kyc_status;default:'none'"`
	KYCDocument string    `json:"kycDocument" gorm:"column:kyc_document"`

	TermsAccepted   bool       `json:"termsAccepted" gorm:"column:terms_accepted;default:false"`
	TermsAcceptedAt *time.Time `json:"termsAcceptedAt" gorm:"column:terms_accepted_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
