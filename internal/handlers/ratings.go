package handlers

import (
	"github.com/carryalong/carryalong-backend/internal/models"
	"github.com/carryalong/carryalong-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateRating lets the sender rate the traveler once per completed parcel
func CreateRating(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			ParcelID   uint    `json:"parcelId" binding:"required"`
			TravelerID uint    `json:"travelerId" binding:"required"`
			Rating     float64 `json:"rating" binding:"required"`
			Review     string  `json:"review"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.Rating < 1 || input.Rating > 5 {
			c.JSON(400, gin.H{"error": "Rating must be between 1 and 5"})
			return
		}

		if len(input.Review) > 500 {
			c.JSON(400, gin.H{"error": "Review cannot exceed 500 characters"})
			return
		}

		var parcel models.Parcel
		if err := db.First(&parcel, input.ParcelID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		if parcel.SenderID != userId {
			c.JSON(403, gin.H{"error": "Only sender can rate the traveler"})
			return
		}

		if parcel.Status != models.ParcelStatusCompleted {
			c.JSON(400, gin.H{"error": "Can only rate after parcel is completed"})
			return
		}

		if parcel.TravelerID == nil || *parcel.TravelerID != input.TravelerID {
			c.JSON(400, gin.H{"error": "Traveler does not match this delivery"})
			return
		}

		var existing models.Rating
		if result := db.Where("parcel_id = ?", input.ParcelID).First(&existing); result.Error == nil {
			c.JSON(400, gin.H{"error": "You have already rated this delivery"})
			return
		}

		rating := models.Rating{
			ParcelID:   input.ParcelID,
			SenderID:   userId,
			TravelerID: input.TravelerID,
			Rating:     input.Rating,
			Review:     input.Review,
		}

		// The unique index on parcel_id backs the duplicate check above, so
		// a concurrent second rating fails here instead of slipping through.
		if err := db.Create(&rating).Error; err != nil {
			c.JSON(400, gin.H{"error": "You have already rated this delivery"})
			return
		}

		if err := updateTravelerRating(db, input.TravelerID); err != nil {
			c.JSON(500, gin.H{"error": "Failed to update traveler rating"})
			return
		}

		var created models.Rating
		if err := db.Preload("Sender").Preload("Traveler").First(&created, rating.ID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to reload rating"})
			return
		}

		c.JSON(201, created)
	}
}

// GetTravelerRatings lists all ratings received by a traveler
func GetTravelerRatings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ratings []models.Rating
		if err := db.Preload("Sender").Preload("Parcel").
			Where("traveler_id = ?", c.Param("travelerId")).
			Order("created_at DESC").
			Find(&ratings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch ratings"})
			return
		}

		c.JSON(200, ratings)
	}
}

// GetRatingByParcel retrieves the rating attached to a parcel
func GetRatingByParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rating models.Rating
		if err := db.Preload("Sender").Preload("Traveler").
			Where("parcel_id = ?", c.Param("parcelId")).
			First(&rating).Error; err != nil {
			c.JSON(404, gin.H{"error": "Rating not found"})
			return
		}

		c.JSON(200, rating)
	}
}

// updateTravelerRating recomputes the traveler's aggregate from all of their
// ratings. Full rescan rather than a running average, so repeated updates
// cannot drift.
func updateTravelerRating(db *gorm.DB, travelerID uint) error {
	var ratings []models.Rating
	if err := db.Where("traveler_id = ?", travelerID).Find(&ratings).Error; err != nil {
		return err
	}

	if len(ratings) == 0 {
		return nil
	}

	var total float64
	for _, r := range ratings {
		total += r.Rating
	}
	average := utils.RoundRating(total / float64(len(ratings)))

	return db.Model(&models.User{}).
		Where("id = ?", travelerID).
		Updates(map[string]interface{}{
			"rating":        average,
			"total_ratings": len(ratings),
		}).Error
}
