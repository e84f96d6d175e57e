package router

import (
	"context"

	"trading_hub/internal/realtime/app"
	"trading_hub/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册 realtime 相关的路由
func RegisterRoutes(r *fiber.App, ws *app.RealtimeWebsocketHandler, rest *app.RestHandler) {
	r.Get("/healthz", app.ConnectCheck)
	r.Post("/debug", middlewares.JWTMiddleware(), app.DebugLogFlag)

	r.Get("/ws", middlewares.JWTMiddleware(), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, websocket.New(func(c *websocket.Conn) {
		ws.HandleConnection(context.Background(), c)
	}))

	api := r.Group("/api", middlewares.JWTMiddleware())

	rooms := api.Group("/rooms/:roomID")
	rooms.Post("/messages", rest.SendMessage)
	rooms.Get("/messages", rest.History)
	rooms.Patch("/messages/:messageID", rest.EditMessage)
	rooms.Delete("/messages/:messageID", rest.DeleteMessage)
	rooms.Post("/enter", rest.EnterRoom)

	api.Get("/unread", rest.Unread)
	api.Get("/presence", rest.Presence)
	api.Put("/status", rest.SetStatus)

	api.Get("/dms", rest.ListDMs)
	api.Post("/dms/:roomID/activate", rest.ActivateDM)
	api.Delete("/dms/:roomID", rest.HideDM)
}
