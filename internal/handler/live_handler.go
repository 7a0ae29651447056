package handler

import (
	"time"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/hub"
	"perangkat-desa-backend/internal/middleware"
	"perangkat-desa-backend/internal/model"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	scopeKey   = "live_scope"
)

// LiveHandler mengalirkan snapshot data perangkat lewat WebSocket.
type LiveHandler struct {
	hub *hub.Hub
	log *logrus.Logger
}

func NewLiveHandler(h *hub.Hub, log *logrus.Logger) *LiveHandler {
	return &LiveHandler{hub: h, log: log}
}

// Upgrade menentukan scope langganan dari sesi sebelum koneksi di-upgrade.
// Admin kecamatan boleh mempersempit ke satu desa lewat ?desa=.
func (h *LiveHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	session, _ := middleware.CurrentSession(c)
	scope, ok := session.ScopeDesa()
	if !ok {
		return apperror.Forbidden("Akses ditolak: profil Anda belum terhubung ke desa")
	}
	if session.IsKecamatan() {
		if desa, ok := model.CanonicalDesa(c.Query("desa")); ok {
			scope = desa
		}
	}
	c.Locals(scopeKey, scope)
	return c.Next()
}

func (h *LiveHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		scope, _ := conn.Locals(scopeKey).(string)

		sub, err := h.hub.Subscribe(scope)
		if err != nil {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "layanan live tidak tersedia"))
			return
		}
		defer sub.Close()

		// Read pump hanya untuk mendeteksi client menutup koneksi
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case snap, ok := <-sub.C:
				if !ok {
					// Hub memutus subscriber (lambat atau server berhenti)
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(snap); err != nil {
					h.log.WithError(err).Debug("Gagal mengirim snapshot live")
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-closed:
				return
			}
		}
	})
}
