package responses

import (
	"github.com/gin-gonic/gin"

	"vision-chat/server/internal/utils/platformerrors"
)

// HandleError maps domain errors to HTTP responses.
func HandleError(reqCtx *gin.Context, err error, message string) {
	platformerrors.WriteError(reqCtx, err, message)
}

// HandleNewError creates a typed error at the route layer and writes it.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, message, nil, uuid)
	platformerrors.WriteError(reqCtx, err, message)
}
