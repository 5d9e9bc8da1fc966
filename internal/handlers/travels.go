package handlers

import (
	"strings"
	"time"

	"github.com/carryalong/carryalong-backend/internal/models"
	"github.com/carryalong/carryalong-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateTravel handles the creation of a new travel post
func CreateTravel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			FromCity       string    `json:"fromCity" binding:"required"`
			ToCity         string    `json:"toCity" binding:"required"`
			Date           time.Time `json:"date" binding:"required"`
			Time           string    `json:"time" binding:"required"`
			VehicleType    string    `json:"vehicleType" binding:"required,oneof=car train bus flight"`
			AvailableSpace string    `json:"availableSpace" binding:"required,oneof=small medium"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		travel := models.Travel{
			TravelerID:     userId,
			FromCity:       strings.TrimSpace(input.FromCity),
			ToCity:         strings.TrimSpace(input.ToCity),
			Date:           input.Date,
			Time:           input.Time,
			VehicleType:    models.VehicleType(input.VehicleType),
			AvailableSpace: models.ParcelSize(input.AvailableSpace),
			Status:         models.TravelStatusActive,
		}

		if err := db.Create(&travel).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create travel post"})
			return
		}

		db.Preload("Traveler").First(&travel, travel.ID)
		c.JSON(201, travel)
	}
}

// GetAllTravels retrieves all active travel posts, soonest first
func GetAllTravels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var travels []models.Travel
		if err := db.Preload("Traveler").
			Where("status = ?", models.TravelStatusActive).
			Order("date ASC").
			Find(&travels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch travel posts"})
			return
		}

		c.JSON(200, travels)
	}
}

// SearchTravels searches active travel posts by city substring
func SearchTravels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		from := c.Query("from")
		to := c.Query("to")

		query := db.Preload("Traveler").Where("status = ?", models.TravelStatusActive)

		if from != "" {
			query = query.Where("LOWER(from_city) LIKE ?", "%"+strings.ToLower(from)+"%")
		}
		if to != "" {
			query = query.Where("LOWER(to_city) LIKE ?", "%"+strings.ToLower(to)+"%")
		}

		var travels []models.Travel
		if err := query.Order("date ASC").Find(&travels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to search travel posts"})
			return
		}

		c.JSON(200, travels)
	}
}

// GetTravelByID retrieves a travel post with its accepted parcels
func GetTravelByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var travel models.Travel
		if err := db.Preload("Traveler").Preload("AcceptedParcels").Preload("AcceptedParcels.Sender").
			First(&travel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Travel post not found"})
			return
		}

		c.JSON(200, travel)
	}
}

// GetMyTravels retrieves the current user's travel posts
func GetMyTravels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var travels []models.Travel
		if err := db.Preload("AcceptedParcels").Preload("AcceptedParcels.Sender").
			Where("traveler_id = ?", userId).
			Order("date DESC").
			Find(&travels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch travel posts"})
			return
		}

		c.JSON(200, travels)
	}
}

// UpdateTravelStatus lets the owner activate, deactivate or complete a post
func UpdateTravelStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Status models.TravelStatus `json:"status" binding:"required,oneof=active inactive completed"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var travel models.Travel
		if err := db.First(&travel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Travel post not found"})
			return
		}

		if travel.TravelerID != userId {
			c.JSON(403, gin.H{"error": "Not authorized to update this travel post"})
			return
		}

		travel.Status = input.Status
		if err := db.Save(&travel).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update travel post"})
			return
		}

		c.JSON(200, travel)
	}
}

// DeleteTravel removes a travel post that has no accepted parcels
func DeleteTravel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var travel models.Travel
		if err := db.First(&travel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Travel post not found"})
			return
		}

		if travel.TravelerID != userId {
			c.JSON(403, gin.H{"error": "Not authorized to delete this travel post"})
			return
		}

		var accepted int64
		db.Model(&models.Parcel{}).Where("travel_post_id = ?", travel.ID).Count(&accepted)
		if accepted > 0 {
			c.JSON(400, gin.H{"error": "Cannot delete travel post with accepted parcels"})
			return
		}

		if err := db.Delete(&travel).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete travel post"})
			return
		}

		c.JSON(200, gin.H{"message": "Travel post deleted"})
	}
}

// FindMatchingParcels lists open parcels this travel post could carry.
// Small parcels fit any space; medium parcels need medium space.
func FindMatchingParcels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var travel models.Travel
		if err := db.First(&travel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Travel post not found"})
			return
		}

		var parcels []models.Parcel
		if err := db.Preload("Sender").
			Where("status = ?", models.ParcelStatusRequested).
			Where("LOWER(pickup_city) LIKE ?", "%"+strings.ToLower(travel.FromCity)+"%").
			Where("LOWER(drop_city) LIKE ?", "%"+strings.ToLower(travel.ToCity)+"%").
			Where("parcel_size IN ?", utils.MatchableSizes(travel.AvailableSpace)).
			Order("created_at DESC").
			Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to find matching parcels"})
			return
		}

		c.JSON(200, parcels)
	}
}
