package handlers

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/carryalong/carryalong-backend/internal/models"
	"github.com/carryalong/carryalong-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetProfile retrieves the user's profile
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		view := profileView(&user)
		view["kycDocument"] = services.GetFileURL(user.KYCDocument)
		c.JSON(200, view)
	}
}

// UpdateProfile updates the user's profile information
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Name         *string `json:"name"`
			Phone        *string `json:"phone"`
			GovernmentID *string `json:"governmentId"`
			Email        *string `json:"email"`
			Password     *string `json:"password"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		if input.Name != nil {
			user.Name = *input.Name
		}
		if input.Phone != nil {
			user.Phone = *input.Phone
		}
		if input.GovernmentID != nil {
			user.GovernmentID = *input.GovernmentID
		}
		if input.Email != nil && *input.Email != user.Email {
			var existing models.User
			if result := db.Where("email = ?", *input.Email).First(&existing); result.Error == nil {
				c.JSON(400, gin.H{"error": "Email already exists"})
				return
			}
			user.Email = *input.Email
		}
		if input.Password != nil && *input.Password != "" {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to hash password"})
				return
			}
			user.PasswordHash = string(hashedPassword)
		}

		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(200, profileView(&user))
	}
}

// UploadKYC stores an identity document and marks verification as pending
func UploadKYC(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		file, err := c.FormFile("document")
		if err != nil {
			c.JSON(400, gin.H{"error": "Please upload a file"})
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		documentURL, err := services.UploadFile(file, "kyc")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload document", "details": err.Error()})
			return
		}

		user.KYCDocument = documentURL
		user.KYCStatus = models.KYCStatusPending
		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update KYC status"})
			return
		}

		c.JSON(200, gin.H{
			"message":     "KYC document uploaded successfully",
			"kycStatus":   user.KYCStatus,
			"kycDocument": services.GetFileURL(user.KYCDocument),
		})
	}
}

// VerifyUserKYC marks a user's KYC document as verified (demo admin action)
func VerifyUserKYC(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		if err := db.Model(&user).Update("kyc_status", models.KYCStatusVerified).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update verification status"})
			return
		}

		c.JSON(200, gin.H{
			"message":   "User verification status updated",
			"kycStatus": models.KYCStatusVerified,
		})
	}
}
