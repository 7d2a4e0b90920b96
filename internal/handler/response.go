package handler

import (
	"VidVault/internal/policy"
	"VidVault/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 定义了标准的API错误响应结构
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// UploadFailure 是媒体托管失败时的details
type UploadFailure struct {
	Asset  service.Asset         `json:"asset"`
	Reason service.FailureReason `json:"reason"`
}

// sendErrorResponse 是一个辅助函数，用于发送标准格式的错误响应
func sendErrorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Message: message})
}

// 把service层的错误翻译成状态码和对外消息，内部细节只进日志
func sendServiceError(c *gin.Context, err error) {
	var verr *policy.ValidationError
	var uerr *service.UploadError
	var perr *service.PersistenceError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &verr):
		code := http.StatusBadRequest
		if verr.TooLarge() {
			code = http.StatusRequestEntityTooLarge
		}
		c.AbortWithStatusJSON(code, ErrorResponse{Message: "Validation failed", Details: verr.Violations})
	case errors.As(err, &tooLarge):
		sendErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.As(err, &uerr):
		code, message := http.StatusInternalServerError, "Error uploading files"
		switch uerr.Reason {
		case service.ReasonSize:
			code, message = http.StatusRequestEntityTooLarge, "The media host rejected the "+string(uerr.Asset)+" size"
		case service.ReasonFormat:
			code, message = http.StatusBadRequest, "The media host rejected the "+string(uerr.Asset)+" format"
		}
		c.AbortWithStatusJSON(code, ErrorResponse{Message: message, Details: UploadFailure{Asset: uerr.Asset, Reason: uerr.Reason}})
	case errors.As(err, &perr):
		sendErrorResponse(c, http.StatusInternalServerError, "Error saving video")
	case errors.Is(err, service.ErrVideoNotFound):
		sendErrorResponse(c, http.StatusNotFound, "Video not found")
	default:
		sendErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
