package app

import (
	"errors"
	"fmt"
	"strconv"

	"trading_hub/internal/realtime/domain"
	"trading_hub/pkg/logger"
	"trading_hub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RestHandler 处理聊天相关的 HTTP 请求, the originating actions of realtime events
type RestHandler struct {
	messageUC  *MessageUseCase
	dmUC       *DirectMessageUseCase
	presence   *PresenceTracker
	dispatcher *NotificationDispatcher
}

// NewRestHandler create RestHandler
func NewRestHandler(
	messageUC *MessageUseCase,
	dmUC *DirectMessageUseCase,
	presence *PresenceTracker,
	dispatcher *NotificationDispatcher,
) *RestHandler {
	return &RestHandler{
		messageUC:  messageUC,
		dmUC:       dmUC,
		presence:   presence,
		dispatcher: dispatcher,
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrEmptyContent):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotRoomMember), errors.Is(err, domain.ErrNotMessageOwner):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrMessageNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		logger.Log.Error("request failed", zap.String("path", c.Path()), zap.String("MemberID", middlewares.MemberID(c)), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// SendMessage POST /api/rooms/:roomID/messages
func (h *RestHandler) SendMessage(c *fiber.Ctx) error {
	type request struct {
		Content string `json:"content"`
	}
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	// 顯示名稱只信任 token
	memberID := middlewares.MemberID(c)
	name := middlewares.MemberName(c)
	if name == "" {
		name = memberID
	}
	msg, err := h.messageUC.Send(c.UserContext(), c.Params("roomID"), memberID, name, req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// EditMessage PATCH /api/rooms/:roomID/messages/:messageID
func (h *RestHandler) EditMessage(c *fiber.Ctx) error {
	type request struct {
		Content string `json:"content"`
	}
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	msg, err := h.messageUC.Edit(c.UserContext(), c.Params("roomID"), c.Params("messageID"), middlewares.MemberID(c), req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(msg)
}

// DeleteMessage DELETE /api/rooms/:roomID/messages/:messageID
func (h *RestHandler) DeleteMessage(c *fiber.Ctx) error {
	if err := h.messageUC.Delete(c.UserContext(), c.Params("roomID"), c.Params("messageID"), middlewares.MemberID(c)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History GET /api/rooms/:roomID/messages?before=&limit=
func (h *RestHandler) History(c *fiber.Ctx) error {
	before, err := strconv.ParseInt(c.Query("before", "0"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "before must be unix milliseconds"})
	}
	limit, err := strconv.Atoi(c.Query("limit", "0"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a number"})
	}

	msgs, err := h.messageUC.History(c.UserContext(), c.Params("roomID"), middlewares.MemberID(c), before, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// EnterRoom POST /api/rooms/:roomID/enter
func (h *RestHandler) EnterRoom(c *fiber.Ctx) error {
	roomID := c.Params("roomID")
	if err := h.messageUC.EnterRoom(c.UserContext(), roomID, middlewares.MemberID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"room_id": roomID, "unread_count": 0})
}

// Unread GET /api/unread
func (h *RestHandler) Unread(c *fiber.Ctx) error {
	counts, err := h.dispatcher.Counts(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"unread": counts})
}

// Presence GET /api/presence
func (h *RestHandler) Presence(c *fiber.Ctx) error {
	return c.JSON(h.presence.Snapshot())
}

// SetStatus PUT /api/status
func (h *RestHandler) SetStatus(c *fiber.Ctx) error {
	type request struct {
		Status string `json:"status"`
	}
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	memberID := middlewares.MemberID(c)
	status, err := h.presence.SetStatus(c.UserContext(), memberID, req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(domain.UserPresence{UserID: memberID, Status: status})
}

// ListDMs GET /api/dms
func (h *RestHandler) ListDMs(c *fiber.Ctx) error {
	list, err := h.dmUC.List(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"dms": list})
}

// ActivateDM POST /api/dms/:roomID/activate
func (h *RestHandler) ActivateDM(c *fiber.Ctx) error {
	type request struct {
		PeerID   string `json:"peer_id"`
		PeerName string `json:"peer_name"`
	}
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	dm := domain.DMSummary{RoomID: c.Params("roomID"), PeerID: req.PeerID, PeerName: req.PeerName}
	if err := h.dmUC.Activate(c.UserContext(), middlewares.MemberID(c), dm); err != nil {
		return fail(c, err)
	}
	return c.JSON(dm)
}

// HideDM DELETE /api/dms/:roomID
func (h *RestHandler) HideDM(c *fiber.Ctx) error {
	if err := h.dmUC.Hide(c.UserContext(), middlewares.MemberID(c), c.Params("roomID")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ConnectCheck GET /healthz
func ConnectCheck(c *fiber.Ctx) error {
	return c.SendString("realtime service start!")
}

// DebugLogFlag toggle debug log flag, POST /debug?status=true
func DebugLogFlag(c *fiber.Ctx) error {
	statusStr := c.Query("status")
	logger.Log.Info("debug", zap.String("status", statusStr))
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("debug mode is : %t", status))
}
