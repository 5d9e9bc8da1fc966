package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/carryalong/carryalong-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Travel{},
		&models.Parcel{},
		&models.Payment{},
		&models.Rating{},
		&models.Message{},
	))

	return db
}

// testAuth stands in for the JWT middleware: the acting user is taken from
// the X-User-ID header.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.GetHeader("X-User-ID"), 10, 32)
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}
		c.Set("userId", uint(id))
		c.Next()
	}
}

func newTestRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	api := r.Group("/api", testAuth())

	api.POST("/parcels", CreateParcel(db))
	api.GET("/parcels", GetAllParcels(db))
	api.GET("/parcels/search", SearchParcels(db))
	api.GET("/parcels/:id", GetParcelByID(db))
	api.DELETE("/parcels/:id", DeleteParcel(db))
	api.POST("/parcels/:id/accept", AcceptParcel(db))
	api.PUT("/parcels/:id/status", UpdateParcelStatus(db))
	api.GET("/parcels/:id/matches", FindMatchingTravels(db))

	api.POST("/travel", CreateTravel(db))
	api.GET("/travel/:id/matches", FindMatchingParcels(db))
	api.DELETE("/travel/:id", DeleteTravel(db))

	api.POST("/ratings", CreateRating(db))
	api.GET("/ratings/parcel/:parcelId", GetRatingByParcel(db))

	api.GET("/payments/parcel/:parcelId", GetPaymentByParcel(db))
	api.GET("/payments/my/earnings", GetMyEarnings(db))
	api.POST("/payments/confirm", ConfirmPayment(db))

	api.POST("/messages", SendMessage(db, nil))
	api.GET("/messages/conversations", GetConversations(db))
	api.GET("/messages/parcel/:parcelId", GetMessagesByParcel(db))
	api.PUT("/messages/:id/read", MarkMessageRead(db))

	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, userID uint, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", strconv.FormatUint(uint64(userID), 10))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Phone:        "9999999999",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTravel(t *testing.T, db *gorm.DB, travelerID uint, from, to string, space models.ParcelSize) *models.Travel {
	t.Helper()

	travel := models.Travel{
		TravelerID:     travelerID,
		FromCity:       from,
		ToCity:         to,
		Date:           time.Now().Add(48 * time.Hour),
		Time:           "10:00",
		VehicleType:    models.VehicleTypeTrain,
		AvailableSpace: space,
		Status:         models.TravelStatusActive,
	}
	require.NoError(t, db.Create(&travel).Error)
	return &travel
}

func createParcel(t *testing.T, db *gorm.DB, senderID uint, from, to string, size models.ParcelSize) *models.Parcel {
	t.Helper()

	parcel := models.Parcel{
		SenderID:          senderID,
		PickupCity:        from,
		DropCity:          to,
		ParcelSize:        size,
		ParcelDescription: "a box of books",
		RewardAmount:      500,
		Status:            models.ParcelStatusRequested,
	}
	require.NoError(t, db.Create(&parcel).Error)
	return &parcel
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
