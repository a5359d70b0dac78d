package v1

import (
	"github.com/gin-gonic/gin"

	"vision-chat/server/internal/interfaces/httpserver/handlers"
)

func registerFileRoutes(router gin.IRoutes, handler *handlers.FileHandler) {
	router.POST("/files", handler.Upload)
	router.GET("/files", handler.List)
	router.GET("/files/:file_id", handler.Get)
	router.PATCH("/files/:file_id", handler.Update)
	router.DELETE("/files/:file_id", handler.Delete)
	router.GET("/files/:file_id/download", handler.Download)
}
