package handlers

import (
	"strconv"

	"github.com/carryalong/carryalong-backend/internal/models"
	"github.com/carryalong/carryalong-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WebSocketHandler joins the authenticated user to a parcel conversation room
func WebSocketHandler(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		parcelID, err := strconv.ParseUint(c.Query("parcelId"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid parcel ID"})
			return
		}

		var parcel models.Parcel
		if err := db.First(&parcel, uint(parcelID)).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		isSender := parcel.SenderID == userId
		isTraveler := parcel.TravelerID != nil && *parcel.TravelerID == userId
		if !isSender && !isTraveler {
			c.JSON(403, gin.H{"error": "Not authorized to join this conversation"})
			return
		}

		services.HandleWebSocket(hub, c.Writer, c.Request, userId, uint(parcelID))
	}
}
