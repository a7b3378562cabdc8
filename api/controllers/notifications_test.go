package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/foodbridge/donations-backend/internal/notifications"
	"github.com/foodbridge/donations-backend/pkg/db/models"
	"github.com/foodbridge/donations-backend/pkg/enums"
)

type testNotificationsService struct {
	markSeenFn func(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error
	clearFn    func(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error
	isSeenFn   func(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) (bool, error)
	pendingFn  func(ctx context.Context, userPhone string, role enums.Role) ([]notifications.PendingNotification, error)
}

func (s *testNotificationsService) MarkSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error {
	if s.markSeenFn != nil {
		return s.markSeenFn(ctx, userPhone, role, donationID, event)
	}
	return nil
}

func (s *testNotificationsService) Clear(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) error {
	if s.clearFn != nil {
		return s.clearFn(ctx, userPhone, role, donationID, event)
	}
	return nil
}

func (s *testNotificationsService) IsSeen(ctx context.Context, userPhone string, role enums.Role, donationID uuid.UUID, event enums.NotificationEvent) (bool, error) {
	if s.isSeenFn != nil {
		return s.isSeenFn(ctx, userPhone, role, donationID, event)
	}
	return false, nil
}

func (s *testNotificationsService) Pending(ctx context.Context, userPhone string, role enums.Role) ([]notifications.PendingNotification, error) {
	if s.pendingFn != nil {
		return s.pendingFn(ctx, userPhone, role)
	}
	return nil, nil
}

func TestPendingNotificationsSuccess(t *testing.T) {
	donationID := uuid.New()
	svc := &testNotificationsService{
		pendingFn: func(ctx context.Context, userPhone string, role enums.Role) ([]notifications.PendingNotification, error) {
			if userPhone != "9876543210" {
				t.Fatalf("unexpected phone %q", userPhone)
			}
			if role != enums.RoleDonor {
				t.Fatalf("unexpected role %q", role)
			}
			return []notifications.PendingNotification{
				{Donation: models.Donation{ID: donationID}, Event: enums.NotificationEventAccepted},
			}, nil
		},
	}

	req := requestAs(http.MethodGet, "/api/v1/notifications?role=donor", "9876543210", nil)
	resp := httptest.NewRecorder()
	PendingNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			Notifications []notifications.PendingNotification `json:"notifications"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(envelope.Data.Notifications))
	}
	if envelope.Data.Notifications[0].Event != enums.NotificationEventAccepted {
		t.Fatalf("unexpected event %q", envelope.Data.Notifications[0].Event)
	}
}

func TestPendingNotificationsInvalidRole(t *testing.T) {
	svc := &testNotificationsService{}

	req := requestAs(http.MethodGet, "/api/v1/notifications?role=admin", "9876543210", nil)
	resp := httptest.NewRecorder()
	PendingNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestMarkNotificationSeenSuccess(t *testing.T) {
	donationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markSeenFn: func(ctx context.Context, userPhone string, role enums.Role, id uuid.UUID, event enums.NotificationEvent) error {
			called = true
			if userPhone != "9123456789" {
				t.Fatalf("unexpected phone %q", userPhone)
			}
			if role != enums.RoleCollector || id != donationID || event != enums.NotificationEventPickedUp {
				t.Fatalf("unexpected key: %s %s %s", role, id, event)
			}
			return nil
		},
	}

	body := `{"donation_id":"` + donationID.String() + `","role":"collector","event":"picked_up"}`
	req := requestAs(http.MethodPost, "/api/v1/notifications/seen", "9123456789", strings.NewReader(body))
	resp := httptest.NewRecorder()
	MarkNotificationSeen(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestMarkNotificationSeenInvalidEvent(t *testing.T) {
	called := false
	svc := &testNotificationsService{
		markSeenFn: func(ctx context.Context, userPhone string, role enums.Role, id uuid.UUID, event enums.NotificationEvent) error {
			called = true
			return nil
		},
	}

	body := `{"donation_id":"` + uuid.NewString() + `","role":"donor","event":"exploded"}`
	req := requestAs(http.MethodPost, "/api/v1/notifications/seen", "9876543210", strings.NewReader(body))
	resp := httptest.NewRecorder()
	MarkNotificationSeen(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if called {
		t.Fatal("service should not run on invalid event")
	}
}

func TestClearNotificationSeenSuccess(t *testing.T) {
	donationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		clearFn: func(ctx context.Context, userPhone string, role enums.Role, id uuid.UUID, event enums.NotificationEvent) error {
			called = true
			if id != donationID || event != enums.NotificationEventAccepted {
				t.Fatalf("unexpected key: %s %s", id, event)
			}
			return nil
		},
	}

	body := `{"donation_id":"` + donationID.String() + `","role":"donor","event":"accepted"}`
	req := requestAs(http.MethodPost, "/api/v1/notifications/unseen", "9876543210", strings.NewReader(body))
	resp := httptest.NewRecorder()
	ClearNotificationSeen(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}
