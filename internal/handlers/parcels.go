package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/carryalong/carryalong-backend/internal/models"
	"github.com/carryalong/carryalong-backend/internal/services"
	"github.com/carryalong/carryalong-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateParcel handles the creation of a new parcel request
func CreateParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			PickupCity        string  `json:"pickupCity" binding:"required"`
			DropCity          string  `json:"dropCity" binding:"required"`
			ParcelSize        string  `json:"parcelSize" binding:"required,oneof=small medium"`
			ParcelDescription string  `json:"parcelDescription" binding:"required"`
			RewardAmount      float64 `json:"rewardAmount" binding:"required"`
			ParcelImage       string  `json:"parcelImage"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		parcel := models.Parcel{
			SenderID:          userId,
			PickupCity:        strings.TrimSpace(input.PickupCity),
			DropCity:          strings.TrimSpace(input.DropCity),
			ParcelSize:        models.ParcelSize(input.ParcelSize),
			ParcelDescription: input.ParcelDescription,
			RewardAmount:      input.RewardAmount,
			ParcelImage:       input.ParcelImage,
			Status:            models.ParcelStatusRequested,
		}

		// Screen the request before anything touches the database
		if err := parcel.Validate(); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if err := db.Create(&parcel).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create parcel"})
			return
		}

		db.Preload("Sender").First(&parcel, parcel.ID)
		c.JSON(201, parcel)
	}
}

// UploadParcelImage attaches an uploaded photo to the sender's parcel
func UploadParcelImage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		if parcel.SenderID != userId {
			c.JSON(403, gin.H{"error": "Not authorized to update this parcel"})
			return
		}

		file, err := c.FormFile("parcelImage")
		if err != nil {
			c.JSON(400, gin.H{"error": "Parcel image is required"})
			return
		}

		imageURL, err := services.UploadFile(file, "parcels")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload image", "details": err.Error()})
			return
		}

		if err := db.Model(&parcel).Update("parcel_image", imageURL).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update parcel"})
			return
		}

		c.JSON(200, gin.H{"parcelImage": services.GetFileURL(imageURL)})
	}
}

// GetAllParcels retrieves all open parcel requests, newest first
func GetAllParcels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var parcels []models.Parcel
		if err := db.Preload("Sender").
			Where("status = ?", models.ParcelStatusRequested).
			Order("created_at DESC").
			Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch parcels"})
			return
		}

		c.JSON(200, parcels)
	}
}

// SearchParcels searches parcels by pickup/drop city substring
func SearchParcels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		from := c.Query("from")
		to := c.Query("to")
		status := c.DefaultQuery("status", string(models.ParcelStatusRequested))

		query := db.Preload("Sender").Where("status = ?", status)

		if from != "" {
			query = query.Where("LOWER(pickup_city) LIKE ?", "%"+strings.ToLower(from)+"%")
		}
		if to != "" {
			query = query.Where("LOWER(drop_city) LIKE ?", "%"+strings.ToLower(to)+"%")
		}

		var parcels []models.Parcel
		if err := query.Order("created_at DESC").Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to search parcels"})
			return
		}

		c.JSON(200, parcels)
	}
}

// GetParcelByID retrieves a parcel with its sender, traveler and travel post
func GetParcelByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var parcel models.Parcel
		if err := db.Preload("Sender").Preload("Traveler").Preload("TravelPost").
			First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		c.JSON(200, parcel)
	}
}

// GetMySentParcels retrieves the parcels posted by the current user
func GetMySentParcels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var parcels []models.Parcel
		if err := db.Preload("Traveler").Preload("TravelPost").
			Where("sender_id = ?", userId).
			Order("created_at DESC").
			Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch parcels"})
			return
		}

		c.JSON(200, parcels)
	}
}

// GetMyCarryingParcels retrieves parcels the current user is carrying
func GetMyCarryingParcels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var parcels []models.Parcel
		if err := db.Preload("Sender").Preload("TravelPost").
			Where("traveler_id = ? AND status IN ?", userId, []models.ParcelStatus{
				models.ParcelStatusAccepted,
				models.ParcelStatusPickedUp,
				models.ParcelStatusDelivered,
			}).
			Order("accepted_at DESC").
			Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch parcels"})
			return
		}

		c.JSON(200, parcels)
	}
}

// AcceptParcel binds a requested parcel to the traveler's travel post and
// escrows the reward. The requested->accepted flip is a conditional update,
// so of two concurrent accepts exactly one wins.
func AcceptParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			TravelPostID uint `json:"travelPostId" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		var travel models.Travel
		if err := db.First(&travel, input.TravelPostID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Travel post not found"})
			return
		}

		if parcel.Status != models.ParcelStatusRequested {
			c.JSON(400, gin.H{"error": "Parcel is no longer available"})
			return
		}

		if travel.TravelerID != userId {
			c.JSON(403, gin.H{"error": "Not authorized to accept for this travel post"})
			return
		}

		if !utils.RouteMatches(parcel.PickupCity, parcel.DropCity, travel.FromCity, travel.ToCity) {
			c.JSON(400, gin.H{"error": "Parcel route does not match travel route"})
			return
		}

		if !utils.SpaceFits(travel.AvailableSpace, parcel.ParcelSize) {
			c.JSON(400, gin.H{"error": "Parcel size exceeds available space"})
			return
		}

		now := time.Now()

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		// Conditional flip keyed on the prior status; losers see zero rows
		result := tx.Model(&models.Parcel{}).
			Where("id = ? AND status = ?", parcel.ID, models.ParcelStatusRequested).
			Updates(map[string]interface{}{
				"status":         models.ParcelStatusAccepted,
				"traveler_id":    userId,
				"travel_post_id": travel.ID,
				"accepted_at":    now,
			})
		if result.Error != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to accept parcel"})
			return
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			c.JSON(400, gin.H{"error": "Parcel is no longer available"})
			return
		}

		// Hold the reward in escrow until completion
		payment := models.Payment{
			ParcelID:   parcel.ID,
			SenderID:   parcel.SenderID,
			TravelerID: userId,
			Amount:     parcel.RewardAmount,
			Status:     models.PaymentStatusHeld,
			HeldAt:     now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to create escrow payment"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to complete transaction"})
			return
		}

		var updated models.Parcel
		if err := db.Preload("Sender").Preload("Traveler").Preload("TravelPost").
			First(&updated, parcel.ID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to reload parcel"})
			return
		}

		c.JSON(200, updated)
	}
}

// UpdateParcelStatus drives the parcel lifecycle. Completion releases the
// held escrow payment and credits the traveler's earnings, at most once.
func UpdateParcelStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Status models.ParcelStatus `json:"status" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		isSender := parcel.SenderID == userId
		isTraveler := parcel.TravelerID != nil && *parcel.TravelerID == userId
		if !isSender && !isTraveler {
			c.JSON(403, gin.H{"error": "Not authorized to update this parcel"})
			return
		}

		if !parcel.Status.CanTransitionTo(input.Status) {
			c.JSON(400, gin.H{"error": fmt.Sprintf("Cannot transition from %s to %s", parcel.Status, input.Status)})
			return
		}

		now := time.Now()
		updates := map[string]interface{}{"status": input.Status}
		switch input.Status {
		case models.ParcelStatusPickedUp:
			updates["picked_up_at"] = now
		case models.ParcelStatusDelivered:
			updates["delivered_at"] = now
		case models.ParcelStatusCompleted:
			updates["completed_at"] = now
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		// Guard against a concurrent transition on the same parcel
		result := tx.Model(&models.Parcel{}).
			Where("id = ? AND status = ?", parcel.ID, parcel.Status).
			Updates(updates)
		if result.Error != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to update parcel status"})
			return
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			c.JSON(400, gin.H{"error": "Parcel status has changed, refresh and try again"})
			return
		}

		if input.Status == models.ParcelStatusCompleted {
			if err := releaseEscrow(tx, &parcel, now); err != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to release payment"})
				return
			}
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to complete transaction"})
			return
		}

		var updated models.Parcel
		if err := db.Preload("Sender").Preload("Traveler").Preload("TravelPost").
			First(&updated, parcel.ID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to reload parcel"})
			return
		}

		c.JSON(200, updated)
	}
}

// releaseEscrow moves the parcel's held payment to released and credits the
// traveler. A parcel without a held payment completes with no payout; the
// conditional update makes the release at-most-once under concurrency.
func releaseEscrow(tx *gorm.DB, parcel *models.Parcel, now time.Time) error {
	var payment models.Payment
	if err := tx.Where("parcel_id = ? AND status = ?", parcel.ID, models.PaymentStatusHeld).
		First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	result := tx.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentStatusHeld).
		Updates(map[string]interface{}{
			"status":      models.PaymentStatusReleased,
			"released_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Another completion already released it
		return nil
	}

	return tx.Model(&models.User{}).
		Where("id = ?", payment.TravelerID).
		Update("earnings", gorm.Expr("earnings + ?", payment.Amount)).Error
}

// DeleteParcel removes a parcel before any traveler has committed to it
func DeleteParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		if parcel.SenderID != userId {
			c.JSON(403, gin.H{"error": "Not authorized to delete this parcel"})
			return
		}

		if parcel.Status != models.ParcelStatusRequested {
			c.JSON(400, gin.H{"error": "Cannot delete parcel that has been accepted"})
			return
		}

		if err := db.Delete(&parcel).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete parcel"})
			return
		}

		c.JSON(200, gin.H{"message": "Parcel deleted"})
	}
}

// FindMatchingTravels lists active travel posts that could carry the parcel
func FindMatchingTravels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		var travels []models.Travel
		if err := db.Preload("Traveler").
			Where("status = ?", models.TravelStatusActive).
			Where("LOWER(from_city) LIKE ?", "%"+strings.ToLower(parcel.PickupCity)+"%").
			Where("LOWER(to_city) LIKE ?", "%"+strings.ToLower(parcel.DropCity)+"%").
			Where("available_space IN ?", utils.MatchableSpaces(parcel.ParcelSize)).
			Order("date ASC").
			Find(&travels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to find matching travels"})
			return
		}

		c.JSON(200, travels)
	}
}
