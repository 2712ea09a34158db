package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-casefile-be/internal/model"
	"ai-casefile-be/internal/pkg/logger"
	"ai-casefile-be/internal/repository"
	"ai-casefile-be/pkg/events"
	pktNats "ai-casefile-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
}

type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	userID, ok := recipientOf(payload)
	if !ok {
		s.logger.Warn("NotificationService", "Event without a user_id, dropping", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	title, message, known := renderNotification(event.EventType(), payload)
	if !known {
		// Unknown event types are not an error, just nothing to notify about.
		return nil
	}

	metaJSON, _ := json.Marshal(payload)
	notif := model.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		TypeCode:  event.EventType(),
		Title:     title,
		Message:   message,
		Metadata:  datatypes.JSON(metaJSON),
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", "Error saving notification", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err,
		})
		return err // NATS will redeliver
	}

	if s.delivery != nil {
		s.delivery.Send(userID, notif)
	}

	return nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func recipientOf(payload map[string]interface{}) (uuid.UUID, bool) {
	raw, ok := payload["user_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// renderNotification maps an event code onto inbox copy. Kept as a plain
// switch: the set of events is small and owned by this codebase.
func renderNotification(eventType string, payload map[string]interface{}) (title, message string, known bool) {
	switch eventType {
	case events.TypeCaseReady:
		caseTitle, _ := payload["title"].(string)
		return "Case ready", fmt.Sprintf("Your new case %q is ready to investigate.", caseTitle), true
	case events.TypeCaseFailed:
		reason, _ := payload["reason"].(string)
		return "Case generation failed", fmt.Sprintf("We could not generate your case: %s", reason), true
	case events.TypeFindingAdded:
		source, _ := payload["source"].(string)
		return "New finding", fmt.Sprintf("A new finding from %s was added to your case notes.", source), true
	default:
		return "", "", false
	}
}
