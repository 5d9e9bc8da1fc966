package handlers

import (
	"fmt"
	"testing"
	"time"

	"github.com/carryalong/carryalong-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func completedParcel(t *testing.T, db *gorm.DB, senderID, travelerID uint) *models.Parcel {
	t.Helper()

	parcel := createParcel(t, db, senderID, "Delhi", "Mumbai", models.ParcelSizeSmall)
	now := time.Now()
	require.NoError(t, db.Model(&models.Parcel{}).Where("id = ?", parcel.ID).
		Updates(map[string]interface{}{
			"status":       models.ParcelStatusCompleted,
			"traveler_id":  travelerID,
			"completed_at": now,
		}).Error)
	parcel.Status = models.ParcelStatusCompleted
	parcel.TravelerID = &travelerID
	return parcel
}

func TestCreateRatingRequiresCompletion(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	sender := createUser(t, db, "sender")
	traveler := createUser(t, db, "traveler")
	parcel := createParcel(t, db, sender.ID, "Delhi", "Mumbai", models.ParcelSizeSmall)

	w := doRequest(t, r, "POST", "/api/ratings", sender.ID, gin.H{
		"parcelId":   parcel.ID,
		"travelerId": traveler.ID,
		"rating":     5,
	})
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "Can only rate after parcel is completed", errorMessage(t, w))
}

func TestCreateRatingSenderOnly(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	sender := createUser(t, db, "sender")
	traveler := createUser(t, db, "traveler")
	parcel := completedParcel(t, db, sender.ID, traveler.ID)

	w := doRequest(t, r, "POST", "/api/ratings", traveler.ID, gin.H{
		"parcelId":   parcel.ID,
		"travelerId": traveler.ID,
		"rating":     5,
	})
	assert.Equal(t, 403, w.Code)
}

func TestCreateRatingTravelerMustMatch(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	sender := createUser(t, db, "sender")
	traveler := createUser(t, db, "traveler")
	other := createUser(t, db, "other")
	parcel := completedParcel(t, db, sender.ID, traveler.ID)

	w := doRequest(t, r, "POST", "/api/ratings", sender.ID, gin.H{
		"parcelId":   parcel.ID,
		"travelerId": other.ID,
		"rating":     5,
	})
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "Traveler does not match this delivery", errorMessage(t, w))
}

func TestCreateRatingBounds(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	sender := createUser(t, db, "sender")
	traveler := createUser(t, db, "traveler")
	parcel := completedParcel(t, db, sender.ID, traveler.ID)

	for _, rating := range []float64{0.5, 6} {
		w := doRequest(t, r, "POST", "/api/ratings", sender.ID, gin.H{
			"parcelId":   parcel.ID,
			"travelerId": traveler.ID,
			"rating":     rating,
		})
		assert.Equal(t, 400, w.Code)
		assert.Equal(t, "Rating must be between 1 and 5", errorMessage(t, w))
	}
}

func TestCreateRatingOncePerParcel(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	sender := createUser(t, db, "sender")
	traveler := createUser(t, db, "traveler")
	parcel := completedParcel(t, db, sender.ID, traveler.ID)

	w := doRequest(t, r, "POST", "/api/ratings", sender.ID, gin.H{
		"parcelId":   parcel.ID,
		"travelerId": traveler.ID,
		"rating":     4,
		"review":     "smooth handover",
	})
	require.Equal(t, 201, w.Code, w.Body.String())

	w = doRequest(t, r, "POST", "/api/ratings", sender.ID, gin.H{
		"parcelId":   parcel.ID,
		"travelerId": traveler.ID,
		"rating":     2,
	})
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "You have already rated this delivery", errorMessage(t, w))

	var count int64
	db.Model(&models.Rating{}).Where("parcel_id = ?", parcel.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRatingAggregateRoundsToOneDecimal(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	traveler := createUser(t, db, "traveler")

	for i, rating := range []float64{4, 5, 3} {
		sender := createUser(t, db, fmt.Sprintf("sender%d", i))
		parcel := completedParcel(t, db, sender.ID, traveler.ID)

		w := doRequest(t, r, "POST", "/api/ratings", sender.ID, gin.H{
			"parcelId":   parcel.ID,
			"travelerId": traveler.ID,
			"rating":     rating,
		})
		require.Equal(t, 201, w.Code, w.Body.String())
	}

	var rated models.User
	require.NoError(t, db.First(&rated, traveler.ID).Error)
	assert.Equal(t, 4.0, rated.Rating)
	assert.Equal(t, 3, rated.TotalRatings)
}

func TestGetRatingByParcel(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	sender := createUser(t, db, "sender")
	traveler := createUser(t, db, "traveler")
	parcel := completedParcel(t, db, sender.ID, traveler.ID)

	w := doRequest(t, r, "GET", fmt.Sprintf("/api/ratings/parcel/%d", parcel.ID), sender.ID, nil)
	assert.Equal(t, 404, w.Code)

	w = doRequest(t, r, "POST", "/api/ratings", sender.ID, gin.H{
		"parcelId":   parcel.ID,
		"travelerId": traveler.ID,
		"rating":     5,
		"review":     "arrived intact",
	})
	require.Equal(t, 201, w.Code)

	w = doRequest(t, r, "GET", fmt.Sprintf("/api/ratings/parcel/%d", parcel.ID), sender.ID, nil)
	require.Equal(t, 200, w.Code)

	var rating models.Rating
	decodeBody(t, w, &rating)
	assert.Equal(t, 5.0, rating.Rating)
	assert.Equal(t, "arrived intact", rating.Review)
}
