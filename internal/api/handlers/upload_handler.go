package handlers

import (
	"net/http"

	"github.com/diero-hl/agentclaw/internal/services"
	"github.com/diero-hl/agentclaw/internal/utils"
	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	svc services.UploadService
}

func NewUploadHandler(svc services.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

func (h *UploadHandler) Image(c *gin.Context) {
	const op = "UploadHandler.Image"

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.Invalid(op, "missing multipart field 'file'", []utils.FieldError{{
			Field: "file", Rule: "required", Message: "file is required",
		}}, err))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	url, err := h.svc.UploadImage(c.Request.Context(), fh.Size, file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
