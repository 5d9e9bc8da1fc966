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

func heldPayment(t *testing.T, db *gorm.DB, parcelID, senderID, travelerID uint, amount float64) *models.Payment {
	t.Helper()

	payment := models.Payment{
		ParcelID:   parcelID,
		SenderID:   senderID,
		TravelerID: travelerID,
		Amount:     amount,
		Status:     models.PaymentStatusHeld,
		HeldAt:     time.Now(),
	}
	require.NoError(t, db.Create(&payment).Error)
	return &payment
}

func TestGetPaymentByParcelParticipantsOnly(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	sender := createUser(t, db, "sender")
	traveler := createUser(t, db, "traveler")
	stranger := createUser(t, db, "stranger")
	parcel := acceptedParcel(t, db, sender.ID, traveler.ID)
	heldPayment(t, db, parcel.ID, sender.ID, traveler.ID, 500)

	w := doRequest(t, r, "GET", fmt.Sprintf("/api/payments/parcel/%d", parcel.ID), stranger.ID, nil)
	assert.Equal(t, 403, w.Code)

	w = doRequest(t, r, "GET", fmt.Sprintf("/api/payments/parcel/%d", parcel.ID), traveler.ID, nil)
	require.Equal(t, 200, w.Code)

	var payment models.Payment
	decodeBody(t, w, &payment)
	assert.Equal(t, models.PaymentStatusHeld, payment.Status)
	assert.Equal(t, 500.0, payment.Amount)
}

func TestGetMyEarningsSummary(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	sender := createUser(t, db, "sender")
	traveler := createUser(t, db, "traveler")

	held := acceptedParcel(t, db, sender.ID, traveler.ID)
	heldPayment(t, db, held.ID, sender.ID, traveler.ID, 300)

	released := acceptedParcel(t, db, sender.ID, traveler.ID)
	payment := heldPayment(t, db, released.ID, sender.ID, traveler.ID, 700)
	now := time.Now()
	require.NoError(t, db.Model(payment).
		Updates(map[string]interface{}{
			"status":      models.PaymentStatusReleased,
			"released_at": now,
		}).Error)

	w := doRequest(t, r, "GET", "/api/payments/my/earnings", traveler.ID, nil)
	require.Equal(t, 200, w.Code)

	var body struct {
		Payments []models.Payment `json:"payments"`
		Summary  struct {
			TotalHeld     float64 `json:"totalHeld"`
			TotalReleased float64 `json:"totalReleased"`
			TotalEarnings float64 `json:"totalEarnings"`
		} `json:"summary"`
	}
	decodeBody(t, w, &body)
	assert.Len(t, body.Payments, 2)
	assert.Equal(t, 300.0, body.Summary.TotalHeld)
	assert.Equal(t, 700.0, body.Summary.TotalReleased)
	assert.Equal(t, 700.0, body.Summary.TotalEarnings)
}

func TestConfirmPayment(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	sender := createUser(t, db, "sender")
	traveler := createUser(t, db, "traveler")
	parcel := acceptedParcel(t, db, sender.ID, traveler.ID)
	heldPayment(t, db, parcel.ID, sender.ID, traveler.ID, 500)

	w := doRequest(t, r, "POST", "/api/payments/confirm", traveler.ID, gin.H{
		"parcelId":        parcel.ID,
		"paymentIntentId": "pi_123",
	})
	assert.Equal(t, 403, w.Code)

	w = doRequest(t, r, "POST", "/api/payments/confirm", sender.ID, gin.H{
		"parcelId":        parcel.ID,
		"paymentIntentId": "pi_123",
	})
	require.Equal(t, 200, w.Code)

	var payment models.Payment
	require.NoError(t, db.Where("parcel_id = ?", parcel.ID).First(&payment).Error)
	assert.Equal(t, "pi_123", payment.PaymentIntentID)
}

func TestConfirmPaymentRequiresHeld(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)
	sender := createUser(t, db, "sender")
	traveler := createUser(t, db, "traveler")
	parcel := acceptedParcel(t, db, sender.ID, traveler.ID)
	payment := heldPayment(t, db, parcel.ID, sender.ID, traveler.ID, 500)
	require.NoError(t, db.Model(payment).Update("status", models.PaymentStatusReleased).Error)

	w := doRequest(t, r, "POST", "/api/payments/confirm", sender.ID, gin.H{
		"parcelId":        parcel.ID,
		"paymentIntentId": "pi_123",
	})
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "Payment is not held", errorMessage(t, w))
}
