package amqp

import (
	"context"
	"strings"
	"testing"
	"time"

	"campus-canteen/internal/domain"
	"campus-canteen/internal/interfaces"
)

type nopLogger struct{}

func (nopLogger) Info(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Debug(action, message, requestID string, details map[string]interface{}) {}
func (nopLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
}

type fakeTracking struct {
	interfaces.TrackingService
	applied []interfaces.StatusUpdateMessage
}

func (f *fakeTracking) ApplyStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	f.applied = append(f.applied, msg)
	return nil
}

func TestHandleStatusUpdate(t *testing.T) {
	t.Run("valid update is forwarded", func(t *testing.T) {
		tracking := &fakeTracking{}
		h := NewStatusHandler(tracking, nopLogger{})

		body := []byte(`{"order_number":"1001","old_status":"pending","new_status":"confirmed","changed_by":"canteen_staff","timestamp":"2026-08-31T12:05:00Z"}`)
		if err := h.HandleStatusUpdate(context.Background(), body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(tracking.applied) != 1 {
			t.Fatalf("expected 1 applied update, got %d", len(tracking.applied))
		}
		got := tracking.applied[0]
		if got.OrderNumber != "1001" || got.NewStatus != domain.StatusConfirmed {
			t.Fatalf("unexpected message: %+v", got)
		}
		if !got.Timestamp.Equal(time.Date(2026, 8, 31, 12, 5, 0, 0, time.UTC)) {
			t.Fatalf("unexpected timestamp: %v", got.Timestamp)
		}
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		h := NewStatusHandler(&fakeTracking{}, nopLogger{})
		if err := h.HandleStatusUpdate(context.Background(), []byte("{not json")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing order number is an error", func(t *testing.T) {
		h := NewStatusHandler(&fakeTracking{}, nopLogger{})
		if err := h.HandleStatusUpdate(context.Background(), []byte(`{"new_status":"confirmed"}`)); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestHandleNotification(t *testing.T) {
	h := NewNotificationHandler(nopLogger{})

	body := []byte(`{"order_number":"1001","new_status":"ready"}`)
	if err := h.HandleNotification(context.Background(), body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.HandleNotification(context.Background(), []byte("{")); err == nil {
		t.Fatal("expected error")
	}
}

func TestNotificationText(t *testing.T) {
	cases := map[domain.Status]string{
		domain.StatusReady:     "ready for pickup",
		domain.StatusCancelled: "cancelled",
	}
	for status, want := range cases {
		msg := interfaces.StatusUpdateMessage{OrderNumber: "1001", NewStatus: status}
		if text := notificationText(msg); !strings.Contains(text, want) {
			t.Fatalf("expected %q in %q", want, text)
		}
	}
}
