package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/altustroy/snab/internal/imports/bridge"
	"github.com/altustroy/snab/internal/imports/service"
)

// Handlers is the import surface handler set.
type Handlers struct {
	Import *ImportHandler
}

func NewHandlers(importSvc *service.ImportService, hub *bridge.Hub, maxUploadSize int64) *Handlers {
	return &Handlers{
		Import: NewImportHandler(importSvc, hub, maxUploadSize),
	}
}

// === Response helpers, kept consistent with the catalog module ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData carries a payload on an error response; the suspended
// session travels with its conflict this way.
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetTenantID(c *gin.Context) string {
	tenantID, _ := c.Get("tenant_id")
	if id, ok := tenantID.(string); ok {
		return id
	}
	return ""
}
