package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillzone-api/internal/models"
)

// CreateMessage сохраняет сообщение
func (s *Store) CreateMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, senderOK := s.users[m.SenderID]
	_, recipientOK := s.users[m.RecipientID]
	if !senderOK || !recipientOK {
		return errConstraint
	}

	stored := *m
	stored.Sender = nil
	s.messages = append(s.messages, stored)
	return nil
}

func (s *Store) filterMessages(keep func(models.Message) bool) []models.Message {
	var messages []models.Message
	for _, m := range s.messages {
		if keep(m) {
			messages = append(messages, m)
		}
	}
	return messages
}

// ListInbox возвращает входящие сообщения пользователя, новые первыми
func (s *Store) ListInbox(_ context.Context, userID uuid.UUID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := s.filterMessages(func(m models.Message) bool { return m.RecipientID == userID })
	sort.SliceStable(messages, func(i, j int) bool { return messages[i].CreatedAt.After(messages[j].CreatedAt) })
	return messages, nil
}

// ListConversation возвращает переписку двух пользователей в хронологическом порядке
func (s *Store) ListConversation(_ context.Context, userID, otherID uuid.UUID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := s.filterMessages(func(m models.Message) bool {
		return (m.SenderID == userID && m.RecipientID == otherID) ||
			(m.SenderID == otherID && m.RecipientID == userID)
	})
	sort.SliceStable(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	return messages, nil
}

// MarkConversationRead помечает прочитанными сообщения от sender к recipient
func (s *Store) MarkConversationRead(_ context.Context, senderID, recipientID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for i := range s.messages {
		m := &s.messages[i]
		if m.SenderID == senderID && m.RecipientID == recipientID && !m.IsRead {
			m.IsRead = true
			updated++
		}
	}
	return updated, nil
}

// CountUnread возвращает число непрочитанных входящих сообщений
func (s *Store) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, m := range s.messages {
		if m.RecipientID == userID && !m.IsRead {
			count++
		}
	}
	return count, nil
}
