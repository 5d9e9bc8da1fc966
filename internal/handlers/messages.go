package handlers

import (
	"context"
	"log"

	"github.com/carryalong/carryalong-backend/internal/models"
	"github.com/carryalong/carryalong-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SendMessage creates a chat message in a parcel conversation and relays a
// new_message event to the parcel's room
func SendMessage(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			ReceiverID uint   `json:"receiverId" binding:"required"`
			ParcelID   uint   `json:"parcelId" binding:"required"`
			Message    string `json:"message" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var parcel models.Parcel
		if err := db.First(&parcel, input.ParcelID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		isSender := parcel.SenderID == userId
		isTraveler := parcel.TravelerID != nil && *parcel.TravelerID == userId
		if !isSender && !isTraveler {
			c.JSON(403, gin.H{"error": "Not authorized to message about this parcel"})
			return
		}

		message := models.Message{
			ParcelID:   input.ParcelID,
			SenderID:   userId,
			ReceiverID: input.ReceiverID,
			Message:    input.Message,
		}

		if err := db.Create(&message).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to send message"})
			return
		}

		// Relay through Redis so every API instance's room sees it; fall
		// back to the local hub when Redis is not configured.
		event := services.NewMessageEvent{
			MessageID:  message.ID,
			ParcelID:   message.ParcelID,
			SenderID:   message.SenderID,
			ReceiverID: message.ReceiverID,
			Message:    message.Message,
			SentAt:     message.CreatedAt,
		}
		ctx := context.Background()
		if err := services.PublishMessageEvent(ctx, event); err != nil {
			if hub != nil {
				hub.SendNewMessage(event)
			} else {
				log.Printf("Failed to relay message %d: %v", message.ID, err)
			}
		}
		services.InvalidateConversationCache(ctx, message.SenderID, message.ReceiverID)

		var created models.Message
		if err := db.Preload("Sender").Preload("Receiver").First(&created, message.ID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to reload message"})
			return
		}

		c.JSON(201, created)
	}
}

// GetMessagesByParcel returns a parcel's conversation in send order
func GetMessagesByParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("parcelId")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		isSender := parcel.SenderID == userId
		isTraveler := parcel.TravelerID != nil && *parcel.TravelerID == userId
		if !isSender && !isTraveler {
			c.JSON(403, gin.H{"error": "Not authorized to view these messages"})
			return
		}

		var messages []models.Message
		if err := db.Preload("Sender").Preload("Receiver").
			Where("parcel_id = ?", parcel.ID).
			Order("created_at ASC").
			Find(&messages).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch messages"})
			return
		}

		c.JSON(200, messages)
	}
}

// Conversation is one entry of the per-user conversation list
type Conversation struct {
	Parcel      models.Parcel  `json:"parcel"`
	LastMessage models.Message `json:"lastMessage"`
	UnreadCount int            `json:"unreadCount"`
}

// GetConversations returns one entry per parcel the user is chatting about,
// each with the latest message and a count of unread messages addressed to
// the user
func GetConversations(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		ctx := context.Background()

		if cached, err := services.GetCachedConversations(ctx, userId); err == nil {
			c.Data(200, "application/json; charset=utf-8", cached)
			return
		}

		var messages []models.Message
		if err := db.Preload("Sender").Preload("Receiver").Preload("Parcel").
			Where("sender_id = ? OR receiver_id = ?", userId, userId).
			Order("created_at DESC").
			Find(&messages).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch conversations"})
			return
		}

		// Group by parcel; messages arrive newest first, so the first one
		// seen per parcel is the latest.
		index := make(map[uint]int)
		conversations := make([]Conversation, 0)
		for _, msg := range messages {
			i, ok := index[msg.ParcelID]
			if !ok {
				conversations = append(conversations, Conversation{
					Parcel:      msg.Parcel,
					LastMessage: msg,
				})
				i = len(conversations) - 1
				index[msg.ParcelID] = i
			}
			if msg.ReceiverID == userId && !msg.IsRead {
				conversations[i].UnreadCount++
			}
		}

		if err := services.SetCachedConversations(ctx, userId, conversations); err != nil {
			log.Printf("Failed to cache conversations for user %d: %v", userId, err)
		}

		c.JSON(200, conversations)
	}
}

// MarkMessageRead marks a single message as read; only the receiver may
func MarkMessageRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var message models.Message
		if err := db.First(&message, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Message not found"})
			return
		}

		if message.ReceiverID != userId {
			c.JSON(403, gin.H{"error": "Not authorized"})
			return
		}

		if err := db.Model(&message).Update("is_read", true).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to mark message as read"})
			return
		}

		services.InvalidateConversationCache(context.Background(), userId)

		message.IsRead = true
		c.JSON(200, message)
	}
}
