package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	bk "github.com/reitclub/arena-booking-backend/booking"
	"github.com/reitclub/arena-booking-backend/identity"
	"github.com/reitclub/arena-booking-backend/metrics"
)

type BookingService interface {
	ListBookings(ctx context.Context, filter bk.ListFilter) ([]bk.Booking, error)
	GetBooking(ctx context.Context, id string) (bk.Booking, error)
	SubmitBooking(ctx context.Context, booking bk.Booking) ([]bk.Booking, error)
	ApproveBooking(ctx context.Context, id string, sharedRiding bool) (int, error)
	RejectBooking(ctx context.Context, id string) (int, error)
	DeleteBooking(ctx context.Context, id string, actor bk.Actor) (int, error)
	DeleteOccurrence(ctx context.Context, id string, actor bk.Actor) error
	Stats(ctx context.Context) (bk.Stats, error)
}

type BookingHandler struct {
	service BookingService
}

func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(rg *gin.RouterGroup) {
	adminOnly := AdminOnly()
	rg.GET("", h.List)
	rg.GET("/booking/:id", h.GetByID)
	rg.POST("", h.Submit)
	rg.PUT("/:id/approve", adminOnly, h.Approve)
	rg.PUT("/:id/reject", adminOnly, h.Reject)
	rg.DELETE("/:id", h.Delete)
	rg.DELETE("/:id/occurrence", h.DeleteOccurrence)

	rg.GET("/stats", h.GetStats)
}

// List returns the caller's own bookings; admins can request everyone's
// with ?all=true.
func (h *BookingHandler) List(c *gin.Context) {
	user := c.MustGet("user").(identity.User)

	filter := bk.ListFilter{OwnerID: user.ID}

	if all, _ := strconv.ParseBool(c.Query("all")); all && user.Admin {
		filter.OwnerID = ""
	}

	if bookings, err := h.service.ListBookings(c.Request.Context(), filter); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to retrieve bookings",
		})
	} else {
		c.IndentedJSON(http.StatusOK, bookings)
	}
}

func (h *BookingHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	booking, err := h.service.GetBooking(c.Request.Context(), id)

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "booking not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch booking",
		})
		return
	}

	c.IndentedJSON(http.StatusOK, booking)
}

func (h *BookingHandler) Submit(c *gin.Context) {
	user := c.MustGet("user").(identity.User)

	var booking bk.Booking

	if err := c.BindJSON(&booking); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "failed to parse JSON body",
		})
		return
	}

	booking.OwnerID = user.ID
	booking.OwnerName = user.DisplayName

	// Bookings placed by an admin skip the approval queue.
	if user.Admin {
		booking.Status = bk.StatusApproved
	}

	created, err := h.service.SubmitBooking(c.Request.Context(), booking)

	var partial *bk.PartialError
	var invalid *bk.ValidationError

	switch {
	case err == nil:
		metrics.IncBookingSubmitted(string(created[0].Kind()))
		c.JSON(http.StatusCreated, created)
	case errors.As(err, &invalid):
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "invalid booking",
			"problems": invalid.Problems,
		})
	case errors.As(err, &partial):
		c.Error(err)
		metrics.IncBookingSubmitted(string(created[0].Kind()))
		c.JSON(http.StatusMultiStatus, gin.H{
			"bookings": created,
			"failed":   partial.FailedIDs(),
		})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create booking",
		})
	}
}

func (h *BookingHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	sharedRiding, _ := strconv.ParseBool(c.Query("sharedRiding"))

	updated, err := h.service.ApproveBooking(c.Request.Context(), id, sharedRiding)

	h.respondDecision(c, "approved", updated, err)
}

func (h *BookingHandler) Reject(c *gin.Context) {
	id := c.Param("id")

	updated, err := h.service.RejectBooking(c.Request.Context(), id)

	h.respondDecision(c, "rejected", updated, err)
}

func (h *BookingHandler) respondDecision(c *gin.Context, decision string, updated int, err error) {
	var partial *bk.PartialError

	switch {
	case err == nil:
		metrics.IncAdminDecision(decision)
		c.IndentedJSON(http.StatusOK, gin.H{"message": "booking " + decision, "updated": updated})
	case errors.Is(err, bk.ErrBookingNotFound):
		c.Error(err)
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.As(err, &partial):
		c.Error(err)
		metrics.IncAdminDecision(decision)
		c.JSON(http.StatusMultiStatus, gin.H{
			"message": "booking partially " + decision,
			"updated": updated,
			"failed":  partial.FailedIDs(),
		})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update booking"})
	}
}

func (h *BookingHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	user := c.MustGet("user").(identity.User)
	actor := bk.Actor{ID: user.ID, Admin: user.Admin}

	deleted, err := h.service.DeleteBooking(c.Request.Context(), id, actor)

	var partial *bk.PartialError

	switch {
	case err == nil:
		metrics.IncBookingDeleted()
		c.IndentedJSON(http.StatusOK, gin.H{"message": "booking deleted", "deleted": deleted})
	case errors.Is(err, bk.ErrBookingNotFound):
		c.Error(err)
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, bk.ErrNotAllowed):
		c.Error(err)
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to delete this booking"})
	case errors.As(err, &partial):
		c.Error(err)
		metrics.IncBookingDeleted()
		c.JSON(http.StatusMultiStatus, gin.H{
			"message": "booking partially deleted",
			"deleted": deleted,
			"failed":  partial.FailedIDs(),
		})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete booking"})
	}
}

func (h *BookingHandler) DeleteOccurrence(c *gin.Context) {
	id := c.Param("id")
	user := c.MustGet("user").(identity.User)
	actor := bk.Actor{ID: user.ID, Admin: user.Admin}

	err := h.service.DeleteOccurrence(c.Request.Context(), id, actor)

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		} else if errors.Is(err, bk.ErrNotAllowed) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to delete this booking"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete booking"})
		}

		return
	}

	metrics.IncBookingDeleted()
	c.IndentedJSON(http.StatusOK, gin.H{"message": "occurrence deleted"})
}

func (h *BookingHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	c.IndentedJSON(http.StatusOK, stats)
}
