package handler

import (
	"errors"
	"net/http"

	"blood-request-coordinator/internal/service"
	"blood-request-coordinator/pkg/utils"

	"github.com/gin-gonic/gin"
)

var kindStatus = map[service.ErrorKind]int{
	service.KindValidation:       http.StatusBadRequest,
	service.KindNotFound:         http.StatusNotFound,
	service.KindConflict:         http.StatusConflict,
	service.KindStoreUnavailable: http.StatusServiceUnavailable,
	service.KindTransient:        http.StatusInternalServerError,
}

// respondError renders a service failure with the status for its kind
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		_ = c.Error(err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	status, ok := kindStatus[svcErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	switch {
	case len(svcErr.Fields) > 0:
		utils.FieldErrorResponse(c, status, svcErr.Message, svcErr.Fields)
	case svcErr.IndexRequired:
		c.JSON(status, gin.H{
			"success":       false,
			"error":         svcErr.Message,
			"indexRequired": true,
		})
	default:
		utils.ErrorResponse(c, status, svcErr.Message)
	}
}

// errorEvent is the payload of an SSE "error" event
func errorEvent(err error) gin.H {
	body := gin.H{
		"error": err.Error(),
		"kind":  service.KindOf(err),
	}
	var svcErr *service.Error
	if errors.As(err, &svcErr) && svcErr.IndexRequired {
		body["indexRequired"] = true
	}
	return body
}
