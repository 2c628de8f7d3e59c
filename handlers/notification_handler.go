package handlers

import (
	"log"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tutiful/tutiful_backend/middleware"
	"github.com/tutiful/tutiful_backend/services"
	"github.com/tutiful/tutiful_backend/websocket"
)

type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// UpgradeRequired rejects plain HTTP requests on websocket routes.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocketcontrib.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// notificationConn is the part of *websocketcontrib.Conn the notification
// socket uses.
type notificationConn interface {
	ReadJSON(v interface{}) error
	ReadMessage() (int, []byte, error)
	WriteJSON(v interface{}) error
	Close() error
}

// ServeNotifications expects {"type":"auth","token":...} as the first frame,
// then keeps the connection registered until the client goes away.
func (h *Handler) ServeNotifications(c *websocketcontrib.Conn) {
	h.serveNotifications(c)
}

func (h *Handler) serveNotifications(c notificationConn) {
	var msg authMessage
	if err := c.ReadJSON(&msg); err != nil || msg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		_ = c.Close()
		return
	}
	userID, err := middleware.ParseToken(msg.Token)
	if err != nil {
		log.Printf("WebSocket auth failed: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		_ = c.Close()
		return
	}

	// the hub writes to the connection once it is registered, so the handshake
	// reply has to go out first
	if err := c.WriteJSON(fiber.Map{"type": "ready"}); err != nil {
		_ = c.Close()
		return
	}
	client := &websocket.Client{UserID: userID, Conn: c}
	h.Hub.Register <- client
	defer func() {
		h.Hub.Unregister <- client
		_ = c.Close()
	}()

	// clients only ever send keepalives; reading detects the close
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if !websocket.IsClosed(err) {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			return
		}
	}
}

func (h *Handler) UnreadNotifications(c *fiber.Ctx) error {
	list, err := h.Notifications.Unread(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"data": list})
}

type ProgressionTemplateRequest struct {
	SelectedLessonIDs []string `json:"selectedLessonIds" validate:"dive,uuid"`
	CustomMessage     string   `json:"customMessage" validate:"max=1000"`
}

func progressionError(c *fiber.Ctx, err error) error {
	switch {
	case isAny(err, services.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case isAny(err, services.ErrTemplateSubmitted, services.ErrConcurrentUpdate):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	default:
		return internalError(c, err)
	}
}

func (h *Handler) NextGradeOptions(c *fiber.Ctx) error {
	agencyID, err := paramUUID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid agency ID")
	}
	lessonID, err := paramUUID(c, "lessonId")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid lesson ID")
	}
	opts, err := h.Notifications.NextGradeOptions(c.UserContext(), agencyID, lessonID)
	if err != nil {
		return progressionError(c, err)
	}
	return c.JSON(opts)
}

func (h *Handler) SaveProgressionTemplate(c *fiber.Ctx) error {
	agencyID, err := paramUUID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid agency ID")
	}
	lessonID, err := paramUUID(c, "lessonId")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid lesson ID")
	}
	var req ProgressionTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	tmpl := services.ProgressionTemplate{CustomMessage: req.CustomMessage}
	for _, id := range req.SelectedLessonIDs {
		tmpl.SelectedLessonIDs = append(tmpl.SelectedLessonIDs, uuid.MustParse(id))
	}
	saved, err := h.Notifications.SaveProgressionTemplate(c.UserContext(), agencyID, lessonID, middleware.UserID(c), tmpl)
	if err != nil {
		return progressionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}
