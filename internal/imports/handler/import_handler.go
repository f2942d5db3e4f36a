package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/altustroy/snab/internal/imports/bridge"
	"github.com/altustroy/snab/internal/imports/entity"
	"github.com/altustroy/snab/internal/imports/service"
	"github.com/altustroy/snab/internal/imports/sheet"
)

// ImportHandler exposes the import session lifecycle.
type ImportHandler struct {
	svc           *service.ImportService
	hub           *bridge.Hub
	maxUploadSize int64
}

func NewImportHandler(svc *service.ImportService, hub *bridge.Hub, maxUploadSize int64) *ImportHandler {
	return &ImportHandler{svc: svc, hub: hub, maxUploadSize: maxUploadSize}
}

// Upload opens an import session from an uploaded workbook
// POST /api/v1/imports
func (h *ImportHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		BadRequest(c, "file too large")
		return
	}
	if ext := strings.ToLower(fileHeader.Filename); !strings.HasSuffix(ext, ".xlsx") && !strings.HasSuffix(ext, ".xlsm") {
		BadRequest(c, "only xlsx workbooks are supported")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "read upload: "+err.Error())
		return
	}
	defer src.Close()

	sess, err := h.svc.Upload(c.Request.Context(), GetUserID(c), GetTenantID(c), fileHeader.Filename, src)
	if err != nil {
		h.respondUploadError(c, sess, err)
		return
	}
	Created(c, sess)
}

func (h *ImportHandler) respondUploadError(c *gin.Context, sess *entity.ImportSession, err error) {
	var missing *service.MissingOrganizationError
	switch {
	case errors.As(err, &missing):
		// the session survives suspended; the client creates the
		// organization and resumes
		ErrorWithData(c, 40901, missing.Error(), sess)
	case errors.Is(err, sheet.ErrParse), errors.Is(err, sheet.ErrHeaderNotFound):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// Get returns the current session state
// GET /api/v1/imports/:id
func (h *ImportHandler) Get(c *gin.Context) {
	sess, err := h.svc.GetSession(c.Param("id"))
	if err != nil {
		NotFound(c, "import session not found")
		return
	}
	Success(c, sess)
}

// Resume retries reconciliation for a suspended session
// POST /api/v1/imports/:id/resume
func (h *ImportHandler) Resume(c *gin.Context) {
	sess, err := h.svc.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		var missing *service.MissingOrganizationError
		switch {
		case errors.As(err, &missing):
			ErrorWithData(c, 40901, missing.Error(), sess)
		case errors.Is(err, service.ErrSessionNotFound):
			NotFound(c, "import session not found")
		case errors.Is(err, service.ErrBadState):
			Conflict(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Success(c, sess)
}

// Confirm creates missing entities and commits the session
// POST /api/v1/imports/:id/confirm
func (h *ImportHandler) Confirm(c *gin.Context) {
	sess, err := h.svc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			NotFound(c, "import session not found")
		case errors.Is(err, service.ErrBadState):
			Conflict(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Success(c, sess)
}

// Cancel abandons the session
// POST /api/v1/imports/:id/cancel
func (h *ImportHandler) Cancel(c *gin.Context) {
	sess, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			NotFound(c, "import session not found")
		case errors.Is(err, service.ErrBadState):
			Conflict(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Success(c, sess)
}

// GetMapping returns the caller's saved column mapping
// GET /api/v1/imports/mapping
func (h *ImportHandler) GetMapping(c *gin.Context) {
	mapping, err := h.svc.LoadMapping(c.Request.Context(), GetUserID(c), GetTenantID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	if mapping == nil {
		Success(c, gin.H{"mapping": nil})
		return
	}
	Success(c, gin.H{"mapping": mapping})
}

type saveMappingRequest struct {
	Mapping entity.ColumnMapping `json:"mapping" binding:"required"`
}

// PutMapping replaces the caller's saved column mapping
// PUT /api/v1/imports/mapping
func (h *ImportHandler) PutMapping(c *gin.Context) {
	var req saveMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.svc.SaveMapping(c.Request.Context(), GetUserID(c), GetTenantID(c), req.Mapping); err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, gin.H{"mapping": req.Mapping})
}

// PostEvent applies one bridge event delivered over plain HTTP, for
// clients without a websocket
// POST /api/v1/imports/events
func (h *ImportHandler) PostEvent(c *gin.Context) {
	var msg service.BridgeMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		BadRequest(c, "invalid event: "+err.Error())
		return
	}
	applied := h.svc.ApplyBridgeMessage(msg)
	Success(c, gin.H{"applied": applied})
}

// Watch upgrades to a websocket scoped to one session
// GET /api/v1/imports/:id/ws
func (h *ImportHandler) Watch(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.svc.GetSession(id); err != nil {
		NotFound(c, "import session not found")
		return
	}
	if err := h.hub.ServeSession(c.Writer, c.Request, id); err != nil {
		// upgrade failed before the protocol switch
		InternalError(c, err.Error())
	}
}
