package v1

import (
	"github.com/gin-gonic/gin"

	"vision-chat/server/internal/interfaces/httpserver/handlers"
)

func registerChatRoutes(router gin.IRoutes, handler *handlers.ChatHandler) {
	router.POST("/chats", handler.Create)
	router.GET("/chats", handler.List)
	router.GET("/chats/:chat_id", handler.Get)
	router.PATCH("/chats/:chat_id", handler.Update)
	router.DELETE("/chats/:chat_id", handler.Delete)

	router.POST("/chats/:chat_id/messages", handler.SendMessage)
	router.GET("/chats/:chat_id/messages", handler.ListMessages)

	router.GET("/messages/:message_id", handler.GetMessage)
	router.PATCH("/messages/:message_id", handler.EditMessage)
}
