package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/diero-hl/agentclaw/internal/models"
	"github.com/diero-hl/agentclaw/internal/services"
	"github.com/gin-gonic/gin"
)

type AgentHandler struct {
	svc services.AgentService
}

func NewAgentHandler(svc services.AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

type createAgentRequest struct {
	Name             string      `json:"name" binding:"required,max=120"`
	Slug             string      `json:"slug" binding:"omitempty,max=120"`
	ShortDescription string      `json:"shortDescription" binding:"required,max=300"`
	FullDescription  string      `json:"fullDescription" binding:"required"`
	Category         string      `json:"category" binding:"required"`
	Price            json.Number `json:"price"`
	PriceLabel       string      `json:"priceLabel"`
	ImageURL         string      `json:"imageUrl" binding:"omitempty,url"`
	Capabilities     []string    `json:"capabilities"`
	Tags             []string    `json:"tags"`
	Platforms        []string    `json:"platforms"`
	PublisherName    string      `json:"publisherName" binding:"required"`
	PublisherAvatar  *string     `json:"publisherAvatar"`
	Version          string      `json:"version"`
	SystemPrompt     *string     `json:"systemPrompt"`
}

func (h *AgentHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), models.AgentFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *AgentHandler) Get(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AgentHandler) Create(c *gin.Context) {
	var req createAgentRequest
	if !bindJSON(c, "AgentHandler.Create", &req) {
		return
	}

	a, err := h.svc.Create(c.Request.Context(), services.CreateAgentInput{
		Name:             req.Name,
		Slug:             req.Slug,
		ShortDescription: req.ShortDescription,
		FullDescription:  req.FullDescription,
		Category:         req.Category,
		Price:            req.Price.String(),
		PriceLabel:       req.PriceLabel,
		ImageURL:         req.ImageURL,
		Capabilities:     req.Capabilities,
		Tags:             req.Tags,
		Platforms:        req.Platforms,
		PublisherName:    req.PublisherName,
		PublisherAvatar:  req.PublisherAvatar,
		Version:          req.Version,
		SystemPrompt:     req.SystemPrompt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AgentHandler) Deploy(c *gin.Context) {
	a, err := h.svc.Deploy(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Agent deployed successfully",
		"agentId": a.ID,
	})
}

type featureRequest struct {
	Featured *bool `json:"featured" binding:"required"`
}

func (h *AgentHandler) Feature(c *gin.Context) {
	var req featureRequest
	if !bindJSON(c, "AgentHandler.Feature", &req) {
		return
	}
	a, err := h.svc.SetFeatured(c.Request.Context(), c.Param("slug"), *req.Featured)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
