package handlers

import (
	"net/http"

	"github.com/diero-hl/agentclaw/internal/services"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	svc services.ReviewService
}

func NewReviewHandler(svc services.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// rating bounds are checked here and again in the service
type createReviewRequest struct {
	AuthorName   string  `json:"authorName" binding:"required,max=80"`
	AuthorAvatar *string `json:"authorAvatar"`
	Rating       int     `json:"rating" binding:"required,min=1,max=5"`
	Comment      string  `json:"comment" binding:"required,max=2000"`
}

func (h *ReviewHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var req createReviewRequest
	if !bindJSON(c, "ReviewHandler.Create", &req) {
		return
	}

	rv, err := h.svc.Create(c.Request.Context(), c.Param("slug"), services.CreateReviewInput{
		AuthorName:   req.AuthorName,
		AuthorAvatar: req.AuthorAvatar,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rv)
}
