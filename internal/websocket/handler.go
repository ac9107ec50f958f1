package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rajivgeraev/skillzone-api/internal/logger"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Mini App открывается с домена Telegram
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS авторизует соединение по токену из параметра token и подключает клиента
func (m *Manager) ServeWS(jwtService *utils.JWTService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := jwtService.ExtractUserID(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Warn("Ошибка установки WebSocket соединения")
			return
		}

		NewClient(userID, conn, m).Start()
	}
}

// NewServer создает HTTP-сервер с единственным маршрутом /ws
func (m *Manager) NewServer(addr string, jwtService *utils.JWTService) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", m.ServeWS(jwtService))
	return &http.Server{Addr: addr, Handler: mux}
}
