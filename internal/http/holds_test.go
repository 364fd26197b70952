package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rujal408/library-management/internal/entities"
)

func TestPlaceHoldEndpoint(t *testing.T) {
	t.Run("queues a hold on a checked out item", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		alice := f.createMember(t, "Alice")
		bob := f.createMember(t, "Bob")
		item := f.createItem(t, "Dracula")

		w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": alice.ID})
		require.Equal(t, http.StatusCreated, w.Code)

		w = f.doJSON(t, "POST", "/api/holds", gin.H{"item_id": item.ID, "borrower_id": bob.ID})
		assert.Equal(t, http.StatusCreated, w.Code)

		var reservation entities.Reservation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reservation))
		assert.Equal(t, entities.ReservationStatusPending, reservation.Status)
	})

	t.Run("available item rejects holds", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		bob := f.createMember(t, "Bob")
		item := f.createItem(t, "Dracula")

		w := f.doJSON(t, "POST", "/api/holds", gin.H{"item_id": item.ID, "borrower_id": bob.ID})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("second hold by the same borrower is rejected", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		alice := f.createMember(t, "Alice")
		bob := f.createMember(t, "Bob")
		item := f.createItem(t, "Dracula")

		w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": alice.ID})
		require.Equal(t, http.StatusCreated, w.Code)

		w = f.doJSON(t, "POST", "/api/holds", gin.H{"item_id": item.ID, "borrower_id": bob.ID})
		require.Equal(t, http.StatusCreated, w.Code)

		w = f.doJSON(t, "POST", "/api/holds", gin.H{"item_id": item.ID, "borrower_id": bob.ID})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestGetHoldEndpoint(t *testing.T) {
	f, cleanup := setupAPITest(t)
	defer cleanup()

	alice := f.createMember(t, "Alice")
	bob := f.createMember(t, "Bob")
	carol := f.createMember(t, "Carol")
	item := f.createItem(t, "Dracula")

	w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": alice.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.doJSON(t, "POST", "/api/holds", gin.H{"item_id": item.ID, "borrower_id": bob.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.doJSON(t, "POST", "/api/holds", gin.H{"item_id": item.ID, "borrower_id": carol.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var carolHold entities.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &carolHold))

	w = f.doJSON(t, "GET", fmt.Sprintf("/api/holds/%d", carolHold.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Reservation   entities.Reservation `json:"reservation"`
		QueuePosition int                  `json:"queue_position"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, carol.ID, response.Reservation.BorrowerID)
	assert.Equal(t, 2, response.QueuePosition)
}

func TestCancelHoldEndpoint(t *testing.T) {
	t.Run("cancels a pending hold", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		alice := f.createMember(t, "Alice")
		bob := f.createMember(t, "Bob")
		item := f.createItem(t, "Dracula")

		w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": alice.ID})
		require.Equal(t, http.StatusCreated, w.Code)

		w = f.doJSON(t, "POST", "/api/holds", gin.H{"item_id": item.ID, "borrower_id": bob.ID})
		require.Equal(t, http.StatusCreated, w.Code)
		var hold entities.Reservation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hold))

		w = f.doJSON(t, "POST", fmt.Sprintf("/api/holds/%d/cancel", hold.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var cancelled entities.Reservation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
		assert.Equal(t, entities.ReservationStatusCancelled, cancelled.Status)
	})

	t.Run("cancelling twice is a conflict", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		alice := f.createMember(t, "Alice")
		bob := f.createMember(t, "Bob")
		item := f.createItem(t, "Dracula")

		w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": alice.ID})
		require.Equal(t, http.StatusCreated, w.Code)

		w = f.doJSON(t, "POST", "/api/holds", gin.H{"item_id": item.ID, "borrower_id": bob.ID})
		require.Equal(t, http.StatusCreated, w.Code)
		var hold entities.Reservation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hold))

		w = f.doJSON(t, "POST", fmt.Sprintf("/api/holds/%d/cancel", hold.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = f.doJSON(t, "POST", fmt.Sprintf("/api/holds/%d/cancel", hold.ID), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown hold is not found", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		w := f.doJSON(t, "POST", "/api/holds/9999/cancel", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
