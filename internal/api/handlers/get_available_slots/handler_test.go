package get_available_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KerelosNasser/driving-school-sub004/internal/api/middleware"
	getAvailableSlots "github.com/KerelosNasser/driving-school-sub004/internal/usecase/get_available_slots"
)

type mockUseCase struct {
	req  *getAvailableSlots.Request
	resp *getAvailableSlots.Response
	err  error
}

func (m *mockUseCase) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func doRequest(t *testing.T, uc *mockUseCase, userID, target string) *httptest.ResponseRecorder {
	t.Helper()

	handler := NewHandler(uc, nopLogger{})

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}

	rec := httptest.NewRecorder()
	middleware.Auth(http.HandlerFunc(handler.Handle)).ServeHTTP(rec, req)
	return rec
}

func TestHandleGetAvailableSlots(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		uc := &mockUseCase{resp: &getAvailableSlots.Response{
			Date:            time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
			Slots: []getAvailableSlots.Slot{
				{StartTime: "09:00", EndTime: "10:00", DurationMinutes: 60, Available: true},
				{StartTime: "10:15", EndTime: "11:15", DurationMinutes: 60, Available: false, Reason: "conflicts with an existing booking"},
			},
			TotalAvailableSlots: 1,
			TotalAvailableHours: 1.0,
		}}

		rec := doRequest(t, uc, "7", "/api/v1/availability/slots?date=2025-06-04&durationMinutes=60&studentId=7")

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp SlotsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "2025-06-04", resp.Date)
		require.Len(t, resp.Slots, 2)
		assert.True(t, resp.Slots[0].Available)
		assert.Equal(t, "conflicts with an existing booking", resp.Slots[1].Reason)
		assert.Equal(t, 1, resp.TotalAvailableSlots)

		require.NotNil(t, uc.req)
		assert.Equal(t, int64(7), uc.req.UserID)
		require.NotNil(t, uc.req.StudentID)
		assert.Equal(t, int64(7), *uc.req.StudentID)
	})

	t.Run("student is optional", func(t *testing.T) {
		uc := &mockUseCase{resp: &getAvailableSlots.Response{
			Date:  time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
			Slots: []getAvailableSlots.Slot{},
		}}

		rec := doRequest(t, uc, "7", "/api/v1/availability/slots?date=2025-06-04&durationMinutes=60")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, uc.req)
		assert.Nil(t, uc.req.StudentID)
	})

	t.Run("missing auth header", func(t *testing.T) {
		rec := doRequest(t, &mockUseCase{}, "", "/api/v1/availability/slots?date=2025-06-04&durationMinutes=60")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed date", func(t *testing.T) {
		rec := doRequest(t, &mockUseCase{}, "7", "/api/v1/availability/slots?date=04.06.2025&durationMinutes=60")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing duration", func(t *testing.T) {
		rec := doRequest(t, &mockUseCase{}, "7", "/api/v1/availability/slots?date=2025-06-04")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed student id", func(t *testing.T) {
		rec := doRequest(t, &mockUseCase{}, "7", "/api/v1/availability/slots?date=2025-06-04&durationMinutes=60&studentId=abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("error mapping", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
		}{
			{"date in past", getAvailableSlots.ErrInvalidDate, http.StatusBadRequest},
			{"date too far", getAvailableSlots.ErrDateTooFarInFuture, http.StatusBadRequest},
			{"invalid duration", getAvailableSlots.ErrInvalidDuration, http.StatusBadRequest},
			{"internal error", getAvailableSlots.ErrInternal, http.StatusInternalServerError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := doRequest(t, &mockUseCase{err: tt.err}, "7", "/api/v1/availability/slots?date=2025-06-04&durationMinutes=60")
				assert.Equal(t, tt.wantStatus, rec.Code)
			})
		}
	})
}
