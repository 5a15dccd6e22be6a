package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/internal/dto"
	"github.com/GlebRadaev/homeservices/internal/service/bookingservice"
	"github.com/GlebRadaev/homeservices/pkg/auth"
	"github.com/GlebRadaev/homeservices/pkg/utils"
)

var scheduledAt = time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)

func NewMock(t *testing.T) (*BookingHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func newRequest(method, id, body string, userID int64, role string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, "/", nil)
	} else {
		r = httptest.NewRequest(method, "/", bytes.NewBufferString(body))
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(auth.WithUser(r.Context(), userID, role), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func booking(status domain.BookingStatus) *domain.Booking {
	providerID := int64(7)
	return &domain.Booking{ID: 1, CustomerID: 10, ProviderID: &providerID, Status: status, ScheduledAt: scheduledAt, TotalAmount: 100}
}

func TestBookingHandler_ProviderActions(t *testing.T) {
	tests := []struct {
		name         string
		id           string
		body         string
		call         func(h *BookingHandler) http.HandlerFunc
		prepareMock  func(m *MockService)
		expectedCode int
		expectedErr  string
		wantStatus   string
	}{
		{
			name: "Accept",
			id:   "1",
			call: func(h *BookingHandler) http.HandlerFunc { return h.Accept },
			prepareMock: func(m *MockService) {
				m.EXPECT().Accept(gomock.Any(), int64(1), int64(7)).Return(booking(domain.BookingConfirmed), nil)
			},
			expectedCode: http.StatusOK,
			wantStatus:   "confirmed",
		},
		{
			name: "Accept by another provider",
			id:   "1",
			call: func(h *BookingHandler) http.HandlerFunc { return h.Accept },
			prepareMock: func(m *MockService) {
				m.EXPECT().Accept(gomock.Any(), int64(1), int64(7)).
					Return(nil, fmt.Errorf("%w: booking 1 is addressed to another provider", domain.ErrUnauthorized))
			},
			expectedCode: http.StatusForbidden,
			expectedErr:  "unauthorized: booking 1 is addressed to another provider",
		},
		{
			name:         "Invalid id",
			id:           "abc",
			call:         func(h *BookingHandler) http.HandlerFunc { return h.Accept },
			prepareMock:  func(m *MockService) {},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Invalid booking id",
		},
		{
			name: "Reject with reason",
			id:   "1",
			body: `{"reason":"busy"}`,
			call: func(h *BookingHandler) http.HandlerFunc { return h.Reject },
			prepareMock: func(m *MockService) {
				m.EXPECT().Reject(gomock.Any(), int64(1), int64(7), "busy").Return(booking(domain.BookingRejected), nil)
			},
			expectedCode: http.StatusOK,
			wantStatus:   "rejected",
		},
		{
			name: "Reject without body",
			id:   "1",
			call: func(h *BookingHandler) http.HandlerFunc { return h.Reject },
			prepareMock: func(m *MockService) {
				m.EXPECT().Reject(gomock.Any(), int64(1), int64(7), "").Return(booking(domain.BookingRejected), nil)
			},
			expectedCode: http.StatusOK,
			wantStatus:   "rejected",
		},
		{
			name:         "Reject with broken body",
			id:           "1",
			body:         `{"reason":`,
			call:         func(h *BookingHandler) http.HandlerFunc { return h.Reject },
			prepareMock:  func(m *MockService) {},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Invalid request body",
		},
		{
			name: "Start before the service day",
			id:   "1",
			call: func(h *BookingHandler) http.HandlerFunc { return h.Start },
			prepareMock: func(m *MockService) {
				m.EXPECT().Start(gomock.Any(), int64(1), int64(7)).Return(nil, domain.ErrInvalidState)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Complete",
			id:   "1",
			call: func(h *BookingHandler) http.HandlerFunc { return h.Complete },
			prepareMock: func(m *MockService) {
				m.EXPECT().Complete(gomock.Any(), int64(1), int64(7)).Return(booking(domain.BookingCompleted), nil)
			},
			expectedCode: http.StatusOK,
			wantStatus:   "completed",
		},
		{
			name: "Complete fails internally",
			id:   "1",
			call: func(h *BookingHandler) http.HandlerFunc { return h.Complete },
			prepareMock: func(m *MockService) {
				m.EXPECT().Complete(gomock.Any(), int64(1), int64(7)).Return(nil, errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedErr:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			w := httptest.NewRecorder()
			tt.call(handler)(w, newRequest(http.MethodPost, tt.id, tt.body, 7, auth.RoleProvider))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedErr != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.expectedErr, resp.Message)
			}
			if tt.wantStatus != "" {
				var resp dto.BookingResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.wantStatus, resp.Status)
			}
		})
	}
}

func TestBookingHandler_Cancel(t *testing.T) {
	tests := []struct {
		name         string
		userID       int64
		role         string
		prepareMock  func(m *MockService)
		expectedCode int
		wantRefund   *dto.RefundResponseDTO
	}{
		{
			name:   "Customer cancels with partial refund",
			userID: 10,
			role:   auth.RoleCustomer,
			prepareMock: func(m *MockService) {
				m.EXPECT().Cancel(gomock.Any(), int64(1), int64(10), "plans changed", true).
					Return(booking(domain.BookingCancelled), &bookingservice.RefundDecision{
						Percentage: 75, Amount: 75, CancellationFee: 25, Reason: "Cancelled 12+ hours before service",
					}, nil)
			},
			expectedCode: http.StatusOK,
			wantRefund: &dto.RefundResponseDTO{
				Percentage: 75, Amount: 75, CancellationFee: 25, Reason: "Cancelled 12+ hours before service",
			},
		},
		{
			name:   "Provider cancels",
			userID: 7,
			role:   auth.RoleProvider,
			prepareMock: func(m *MockService) {
				m.EXPECT().Cancel(gomock.Any(), int64(1), int64(7), "plans changed", false).
					Return(booking(domain.BookingCancelled), nil, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "Terminal booking",
			userID: 10,
			role:   auth.RoleCustomer,
			prepareMock: func(m *MockService) {
				m.EXPECT().Cancel(gomock.Any(), int64(1), int64(10), "plans changed", true).
					Return(nil, nil, domain.ErrInvalidState)
			},
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			w := httptest.NewRecorder()
			handler.Cancel(w, newRequest(http.MethodPost, "1", `{"reason":"plans changed"}`, tt.userID, tt.role))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var resp dto.CancelResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "cancelled", resp.Booking.Status)
				assert.Equal(t, tt.wantRefund, resp.Refund)
			}
		})
	}
}

func TestBookingHandler_Reschedule(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		prepareMock  func(m *MockService)
		expectedCode int
	}{
		{
			name: "Moved",
			body: `{"scheduled_at":"2026-10-20T10:00:00Z"}`,
			prepareMock: func(m *MockService) {
				m.EXPECT().Reschedule(gomock.Any(), int64(1), int64(10), scheduledAt, true).
					Return(booking(domain.BookingConfirmed), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Missing time",
			body:         `{}`,
			prepareMock:  func(m *MockService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Past slot",
			body: `{"scheduled_at":"2026-10-20T10:00:00Z"}`,
			prepareMock: func(m *MockService) {
				m.EXPECT().Reschedule(gomock.Any(), int64(1), int64(10), scheduledAt, true).
					Return(nil, domain.ErrInvalidInput)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			w := httptest.NewRecorder()
			handler.Reschedule(w, newRequest(http.MethodPost, "1", tt.body, 10, auth.RoleCustomer))

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestBookingHandler_History(t *testing.T) {
	tests := []struct {
		name         string
		prepareMock  func(m *MockService)
		expectedCode int
		wantLen      int
	}{
		{
			name: "Party reads history",
			prepareMock: func(m *MockService) {
				m.EXPECT().History(gomock.Any(), int64(1), int64(10)).Return([]domain.BookingHistory{
					{BookingID: 1, Status: domain.BookingConfirmed, ActorID: 7},
					{BookingID: 1, Status: domain.BookingCancelled, ActorID: 10, Notes: "plans changed"},
				}, nil)
			},
			expectedCode: http.StatusOK,
			wantLen:      2,
		},
		{
			name: "Outsider",
			prepareMock: func(m *MockService) {
				m.EXPECT().History(gomock.Any(), int64(1), int64(10)).Return(nil, domain.ErrUnauthorized)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "Unknown booking",
			prepareMock: func(m *MockService) {
				m.EXPECT().History(gomock.Any(), int64(1), int64(10)).Return(nil, domain.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			w := httptest.NewRecorder()
			handler.History(w, newRequest(http.MethodGet, "1", "", 10, auth.RoleCustomer))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var resp []dto.HistoryEntryDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Len(t, resp, tt.wantLen)
			}
		})
	}
}
