package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillzone-api/internal/logger"
	"github.com/rajivgeraev/skillzone-api/internal/metrics"
)

// EventType определяет тип события WebSocket
type EventType string

const (
	EventConnected     EventType = "connected"
	EventBarterUpdated EventType = "barter_updated"
	EventNewMessage    EventType = "new_message"
	EventMessagesRead  EventType = "messages_read"
	EventPing          EventType = "ping"
	EventPong          EventType = "pong"
)

// Event представляет структуру сообщения для WebSocket
type Event struct {
	Type      EventType       `json:"type"`
	UserID    string          `json:"user_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Manager хранит WebSocket соединения и рассылает события пользователям
type Manager struct {
	mu          sync.RWMutex
	clients     map[uuid.UUID]*Client
	userClients map[uuid.UUID]map[uuid.UUID]struct{} // userID -> clientIDs
}

// NewManager создает новый экземпляр Manager
func NewManager() *Manager {
	return &Manager{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// AddClient регистрирует нового клиента
func (m *Manager) AddClient(client *Client) {
	m.mu.Lock()
	m.clients[client.ID] = client
	if _, exists := m.userClients[client.UserID]; !exists {
		m.userClients[client.UserID] = make(map[uuid.UUID]struct{})
	}
	m.userClients[client.UserID][client.ID] = struct{}{}
	m.mu.Unlock()

	metrics.WebsocketConnected()
	logger.With(logrus.Fields{"client_id": client.ID, "user_id": client.UserID}).Debug("WebSocket клиент подключен")
}

// RemoveClient удаляет клиента и закрывает его очередь отправки
func (m *Manager) RemoveClient(clientID uuid.UUID) {
	m.mu.Lock()
	client, exists := m.clients[clientID]
	if !exists {
		m.mu.Unlock()
		return
	}

	delete(m.clients, clientID)
	if clients, ok := m.userClients[client.UserID]; ok {
		delete(clients, clientID)
		if len(clients) == 0 {
			delete(m.userClients, client.UserID)
		}
	}
	close(client.send)
	m.mu.Unlock()

	metrics.WebsocketDisconnected()
	logger.With(logrus.Fields{"client_id": clientID, "user_id": client.UserID}).Debug("WebSocket клиент отключен")
}

// Connected сообщает, есть ли у пользователя открытые соединения
func (m *Manager) Connected(userID uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.userClients[userID]) > 0
}

// Publish отправляет событие с произвольной нагрузкой всем соединениям пользователя
func (m *Manager) Publish(userID uuid.UUID, eventType EventType, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).WithField("type", eventType).Error("Ошибка сериализации события")
		return
	}

	m.SendToUser(userID, Event{
		Type:      eventType,
		UserID:    userID.String(),
		Timestamp: time.Now(),
		Payload:   raw,
	})
}

// SendToUser отправляет событие всем соединениям конкретного пользователя.
// Если пользователь не в сети, событие отбрасывается
func (m *Manager) SendToUser(userID uuid.UUID, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		logger.WithError(err).Error("Ошибка сериализации события")
		return
	}

	var slow []uuid.UUID

	m.mu.RLock()
	for clientID := range m.userClients[userID] {
		client := m.clients[clientID]
		select {
		case client.send <- eventJSON:
		default:
			// Клиент не успевает читать
			slow = append(slow, clientID)
		}
	}
	m.mu.RUnlock()

	for _, clientID := range slow {
		logger.With(logrus.Fields{"client_id": clientID}).Warn("Очередь отправки переполнена, соединение закрывается")
		m.RemoveClient(clientID)
	}
}

// Shutdown закрывает все соединения
func (m *Manager) Shutdown() {
	m.mu.RLock()
	ids := make([]uuid.UUID, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.RemoveClient(id)
	}
}
