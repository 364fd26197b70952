package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rujal408/library-management/internal/audit"
	"github.com/rujal408/library-management/internal/database"
	auditrepo "github.com/rujal408/library-management/internal/database/audit"
	itemsrepo "github.com/rujal408/library-management/internal/database/items"
	loansrepo "github.com/rujal408/library-management/internal/database/loans"
	membersrepo "github.com/rujal408/library-management/internal/database/members"
	reservationsrepo "github.com/rujal408/library-management/internal/database/reservations"
	"github.com/rujal408/library-management/internal/entities"
	"github.com/rujal408/library-management/internal/lifecycle"
	"github.com/rujal408/library-management/internal/policy"
	"github.com/rujal408/library-management/internal/reporting"
)

type apiFixture struct {
	db     *database.Database
	router *gin.Engine
	now    time.Time
}

func setupAPITest(t *testing.T) (*apiFixture, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	f := &apiFixture{db: db, now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	pol := policy.Default()
	coordinator := lifecycle.NewCoordinator(db.DB, pol, clock, audit.NewService(auditrepo.NewRepository(db.DB)), 100*time.Millisecond)

	f.router = NewRouter(RouterConfig{
		Database:         db,
		Circulation:      coordinator,
		Holds:            coordinator,
		Lifecycle:        coordinator,
		LoanStore:        loansrepo.NewRepository(db.DB),
		ReservationStore: reservationsrepo.NewRepository(db.DB),
		ItemStore:        itemsrepo.NewRepository(db.DB),
		MemberStore:      membersrepo.NewRepository(db.DB),
		AuditStore:       auditrepo.NewRepository(db.DB),
		Reports:          reporting.NewService(db.DB, pol, clock),
		Version:          "test",
	})

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return f, cleanup
}

func (f *apiFixture) createMember(t *testing.T, name string) *entities.Member {
	t.Helper()
	member := &entities.Member{
		Name:   name,
		Email:  strings.ToLower(name) + "@example.com",
		Status: entities.MemberStatusActive,
	}
	require.NoError(t, membersrepo.NewRepository(f.db.DB).Create(member))
	return member
}

func (f *apiFixture) createItem(t *testing.T, title string) *entities.CatalogItem {
	t.Helper()
	item := &entities.CatalogItem{Title: title, Author: "Author", Status: entities.ItemStatusAvailable}
	require.NoError(t, itemsrepo.NewRepository(f.db.DB).Create(item))
	return item
}

func (f *apiFixture) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCheckoutEndpoint(t *testing.T) {
	t.Run("checks out an available item", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		member := f.createMember(t, "Alice")
		item := f.createItem(t, "Dracula")

		w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": member.ID})
		assert.Equal(t, http.StatusCreated, w.Code)

		var loan entities.Loan
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loan))
		assert.Equal(t, entities.LoanStatusCheckedOut, loan.Status)
		assert.Equal(t, item.ID, loan.ItemID)
	})

	t.Run("missing fields are a bad request", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unavailable item is a conflict", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		alice := f.createMember(t, "Alice")
		bob := f.createMember(t, "Bob")
		item := f.createItem(t, "Dracula")

		w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": alice.ID})
		require.Equal(t, http.StatusCreated, w.Code)

		w = f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": bob.ID})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown member is not found", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		item := f.createItem(t, "Dracula")
		w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": 9999})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReturnEndpoint(t *testing.T) {
	t.Run("returns a loan and reports the promoted hold", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		alice := f.createMember(t, "Alice")
		bob := f.createMember(t, "Bob")
		item := f.createItem(t, "Dracula")

		w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": alice.ID})
		require.Equal(t, http.StatusCreated, w.Code)
		var loan entities.Loan
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loan))

		w = f.doJSON(t, "POST", "/api/holds", gin.H{"item_id": item.ID, "borrower_id": bob.ID})
		require.Equal(t, http.StatusCreated, w.Code)

		w = f.doJSON(t, "POST", fmt.Sprintf("/api/loans/%d/return", loan.ID), gin.H{"condition": "good"})
		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Loan     entities.Loan         `json:"loan"`
			Promoted *entities.Reservation `json:"promoted"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, entities.LoanStatusReturned, response.Loan.Status)
		require.NotNil(t, response.Promoted)
		assert.Equal(t, bob.ID, response.Promoted.BorrowerID)
	})

	t.Run("damaged condition carries the surcharge", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		alice := f.createMember(t, "Alice")
		item := f.createItem(t, "Dracula")

		w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": alice.ID})
		require.Equal(t, http.StatusCreated, w.Code)
		var loan entities.Loan
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loan))

		w = f.doJSON(t, "POST", fmt.Sprintf("/api/loans/%d/return", loan.ID), gin.H{"condition": "damaged"})
		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Loan entities.Loan `json:"loan"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, entities.LoanStatusDamaged, response.Loan.Status)
		assert.InDelta(t, 10.00, response.Loan.FineAmount, 1e-9)
	})

	t.Run("unknown loan is not found", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		w := f.doJSON(t, "POST", "/api/loans/9999/return", gin.H{"condition": "good"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("double return is a conflict", func(t *testing.T) {
		f, cleanup := setupAPITest(t)
		defer cleanup()

		alice := f.createMember(t, "Alice")
		item := f.createItem(t, "Dracula")

		w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": alice.ID})
		require.Equal(t, http.StatusCreated, w.Code)
		var loan entities.Loan
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loan))

		w = f.doJSON(t, "POST", fmt.Sprintf("/api/loans/%d/return", loan.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = f.doJSON(t, "POST", fmt.Sprintf("/api/loans/%d/return", loan.ID), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestMemberLoanListing(t *testing.T) {
	f, cleanup := setupAPITest(t)
	defer cleanup()

	alice := f.createMember(t, "Alice")
	item := f.createItem(t, "Dracula")

	w := f.doJSON(t, "POST", "/api/loans", gin.H{"item_id": item.ID, "borrower_id": alice.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.doJSON(t, "GET", fmt.Sprintf("/api/members/%d/loans", alice.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var loans []entities.Loan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loans))
	assert.Len(t, loans, 1)
}
