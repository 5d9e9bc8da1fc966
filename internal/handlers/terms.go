package handlers

import (
	"time"

	"github.com/carryalong/carryalong-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const termsVersion = "1.0.0"

const termsContent = `# Terms and Conditions - CarryAlong

## 1. Acceptance of Terms
By using CarryAlong, you agree to these terms and conditions.

## 2. User Responsibilities
Senders must provide accurate information about the parcel and are responsible
for its contents. Prohibited items include weapons, illegal substances,
hazardous materials and perishable goods without proper packaging. Travelers
must handle parcels with reasonable care, are responsible for the parcel from
pickup until delivery, and must not open or tamper with parcels.

## 3. Liability
CarryAlong acts as a platform connecting users and is not responsible for
lost, damaged, or delayed parcels, nor for disputes between users. Maximum
compensation claim is limited to the reward amount.

## 4. Payment Terms
All payments are held in escrow until delivery confirmation. Refunds are
provided only for cancelled deliveries. Disputes must be reported within
48 hours.

## 5. Privacy and Data
We collect and store user information as per our Privacy Policy and may share
necessary information between senders and travelers.

By clicking "I Accept", you acknowledge that you have read, understood, and
agree to be bound by these Terms and Conditions.`

// GetTerms returns the current terms and conditions text
func GetTerms() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":     termsVersion,
			"lastUpdated": "2024-01-01",
			"content":     termsContent,
		})
	}
}

// AcceptTerms records the user's acceptance of the current terms
func AcceptTerms(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		now := time.Now()
		if err := db.Model(&user).Updates(map[string]interface{}{
			"terms_accepted":    true,
			"terms_accepted_at": now,
		}).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to record terms acceptance"})
			return
		}

		c.JSON(200, gin.H{
			"message":         "Terms accepted successfully",
			"termsAccepted":   true,
			"termsAcceptedAt": now,
		})
	}
}
