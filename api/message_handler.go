package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reitclub/arena-booking-backend/identity"
	msg "github.com/reitclub/arena-booking-backend/message"
)

type MessageService interface {
	CreateMessage(ctx context.Context, m msg.Message) (msg.Message, error)
	ListMessages(ctx context.Context, activeOnly bool) ([]msg.Message, error)
	SetMessageActive(ctx context.Context, id string, active bool) error
}

type MessageHandler struct {
	service MessageService
}

func NewMessageHandler(service MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Register(rg *gin.RouterGroup) {
	adminOnly := AdminOnly()
	rg.GET("", h.List)
	rg.POST("", adminOnly, h.Create)
	rg.PUT("/:id/active", adminOnly, h.SetActive)
}

// List returns active messages by default; admins can request the full
// history with ?all=true.
func (h *MessageHandler) List(c *gin.Context) {
	user := c.MustGet("user").(identity.User)

	all, _ := strconv.ParseBool(c.Query("all"))
	activeOnly := !(all && user.Admin)

	messages, err := h.service.ListMessages(c.Request.Context(), activeOnly)

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve messages"})
		return
	}

	c.IndentedJSON(http.StatusOK, messages)
}

func (h *MessageHandler) Create(c *gin.Context) {
	user := c.MustGet("user").(identity.User)

	var m msg.Message

	if err := c.BindJSON(&m); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	m.CreatedBy = user.DisplayName

	created, err := h.service.CreateMessage(c.Request.Context(), m)

	if err != nil {
		c.Error(err)
		if errors.Is(err, msg.ErrInvalidMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create message"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *MessageHandler) SetActive(c *gin.Context) {
	id := c.Param("id")
	active, err := strconv.ParseBool(c.Query("active"))

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse active flag"})
		return
	}

	err = h.service.SetMessageActive(c.Request.Context(), id, active)

	if err != nil {
		c.Error(err)
		if errors.Is(err, msg.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update message"})
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"message": "message updated"})
}
