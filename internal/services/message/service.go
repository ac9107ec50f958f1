package message

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/logger"
	"github.com/rajivgeraev/skillzone-api/internal/metrics"
	"github.com/rajivgeraev/skillzone-api/internal/models"
	"github.com/rajivgeraev/skillzone-api/internal/websocket"
)

// Repository - хранилище сообщений
type Repository interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	CreateMessage(ctx context.Context, m *models.Message) error
	ListInbox(ctx context.Context, userID uuid.UUID) ([]models.Message, error)
	ListConversation(ctx context.Context, userID, otherID uuid.UUID) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, senderID, recipientID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// Publisher доставляет события пользователям в реальном времени
type Publisher interface {
	Publish(userID uuid.UUID, eventType websocket.EventType, payload any)
}

// Service - личные сообщения между пользователями
type Service struct {
	repo   Repository
	events Publisher
	now    func() time.Time
}

// NewService создает сервис сообщений. events может быть nil
func NewService(repo Repository, events Publisher) *Service {
	return &Service{repo: repo, events: events, now: time.Now}
}

// Inbox - входящие сообщения и число непрочитанных
type Inbox struct {
	Messages []models.Message `json:"messages"`
	Unread   int              `json:"unread"`
}

// Conversation - переписка с собеседником
type Conversation struct {
	With     *models.User     `json:"with"`
	Messages []models.Message `json:"messages"`
}

func (s *Service) publish(userID uuid.UUID, eventType websocket.EventType, payload any) {
	if s.events != nil {
		s.events.Publish(userID, eventType, payload)
	}
}

// SendMessage отправляет сообщение и уведомляет получателя
func (s *Service) SendMessage(ctx context.Context, senderID, recipientID uuid.UUID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	if _, err := s.repo.GetUser(ctx, recipientID); err != nil {
		return nil, err
	}
	sender, err := s.repo.GetUser(ctx, senderID)
	if err != nil {
		return nil, err
	}

	m := &models.Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}
	m.Sender = sender

	metrics.MessageSent()
	logger.With(logrus.Fields{"message_id": m.ID, "sender_id": senderID, "recipient_id": recipientID}).Debug("Сообщение отправлено")

	s.publish(recipientID, websocket.EventNewMessage, m)
	return m, nil
}

// Inbox возвращает входящие сообщения, новые первыми
func (s *Service) Inbox(ctx context.Context, userID uuid.UUID) (*Inbox, error) {
	messages, err := s.repo.ListInbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	senders := make(map[uuid.UUID]*models.User)
	for i := range messages {
		id := messages[i].SenderID
		if _, ok := senders[id]; !ok {
			sender, err := s.repo.GetUser(ctx, id)
			if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
				return nil, err
			}
			senders[id] = sender
		}
		messages[i].Sender = senders[id]
	}

	if messages == nil {
		messages = []models.Message{}
	}
	return &Inbox{Messages: messages, Unread: unread}, nil
}

// Conversation возвращает переписку с собеседником и помечает его сообщения прочитанными
func (s *Service) Conversation(ctx context.Context, userID, otherID uuid.UUID) (*Conversation, error) {
	other, err := s.repo.GetUser(ctx, otherID)
	if err != nil {
		return nil, err
	}

	marked, err := s.repo.MarkConversationRead(ctx, otherID, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}

	if marked > 0 {
		s.publish(otherID, websocket.EventMessagesRead, map[string]any{
			"reader_id": userID,
			"count":     marked,
		})
	}

	return &Conversation{With: other, Messages: messages}, nil
}
