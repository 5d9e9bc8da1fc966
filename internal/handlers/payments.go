package handlers

import (
	"github.com/carryalong/carryalong-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetPaymentByParcel retrieves the escrow record for a parcel
func GetPaymentByParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var payment models.Payment
		if err := db.Preload("Sender").Preload("Traveler").
			Where("parcel_id = ?", c.Param("parcelId")).
			First(&payment).Error; err != nil {
			c.JSON(404, gin.H{"error": "Payment not found"})
			return
		}

		if payment.SenderID != userId && payment.TravelerID != userId {
			c.JSON(403, gin.H{"error": "Not authorized to view this payment"})
			return
		}

		c.JSON(200, payment)
	}
}

// GetMyEarnings summarizes held and released amounts for a traveler
func GetMyEarnings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var payments []models.Payment
		if err := db.Preload("Parcel").
			Where("traveler_id = ?", userId).
			Order("created_at DESC").
			Find(&payments).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch payments"})
			return
		}

		var totalHeld, totalReleased float64
		for _, p := range payments {
			switch p.Status {
			case models.PaymentStatusHeld:
				totalHeld += p.Amount
			case models.PaymentStatusReleased:
				totalReleased += p.Amount
			}
		}

		c.JSON(200, gin.H{
			"payments": payments,
			"summary": gin.H{
				"totalHeld":     totalHeld,
				"totalReleased": totalReleased,
				"totalEarnings": totalReleased,
			},
		})
	}
}

// GetMySentPayments lists payments the current user funded as sender
func GetMySentPayments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var payments []models.Payment
		if err := db.Preload("Parcel").Preload("Traveler").
			Where("sender_id = ?", userId).
			Order("created_at DESC").
			Find(&payments).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch payments"})
			return
		}

		c.JSON(200, payments)
	}
}

// ConfirmPayment attaches an external payment-intent reference to the held
// escrow record for a parcel. Card processing happens outside this service;
// the intent id is stored as an opaque reference.
func ConfirmPayment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			ParcelID        uint   `json:"parcelId" binding:"required"`
			PaymentIntentID string `json:"paymentIntentId" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var payment models.Payment
		if err := db.Where("parcel_id = ?", input.ParcelID).First(&payment).Error; err != nil {
			c.JSON(404, gin.H{"error": "Payment not found"})
			return
		}

		if payment.SenderID != userId {
			c.JSON(403, gin.H{"error": "Only the sender can confirm this payment"})
			return
		}

		if payment.Status != models.PaymentStatusHeld {
			c.JSON(400, gin.H{"error": "Payment is not held"})
			return
		}

		if err := db.Model(&payment).Update("payment_intent_id", input.PaymentIntentID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to confirm payment"})
			return
		}

		payment.PaymentIntentID = input.PaymentIntentID
		c.JSON(200, payment)
	}
}
