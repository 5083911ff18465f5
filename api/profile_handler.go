package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reitclub/arena-booking-backend/identity"
	pf "github.com/reitclub/arena-booking-backend/profile"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (pf.Profile, error)
	UpsertProfile(ctx context.Context, userID string, partial pf.Profile) (pf.Profile, error)
}

type ProfileHandler struct {
	service ProfileService
}

func NewProfileHandler(service ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
	rg.PUT("", h.Upsert)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	user := c.MustGet("user").(identity.User)

	prof, err := h.service.GetProfile(c.Request.Context(), user.ID)

	if err != nil {
		c.Error(err)
		if errors.Is(err, pf.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
		return
	}

	c.IndentedJSON(http.StatusOK, prof)
}

func (h *ProfileHandler) Upsert(c *gin.Context) {
	user := c.MustGet("user").(identity.User)

	var partial pf.Profile

	if err := c.BindJSON(&partial); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	prof, err := h.service.UpsertProfile(c.Request.Context(), user.ID, partial)

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}

	c.IndentedJSON(http.StatusOK, prof)
}
