package api

import (
	"errors"
	"net/http"

	"elite-gym/internal/funnel"
	"elite-gym/internal/ws"

	"github.com/gin-gonic/gin"
)

type FunnelHandler struct {
	sessions *funnel.Registry
	hub      *ws.Hub
}

func NewFunnelHandler(sessions *funnel.Registry, hub *ws.Hub) *FunnelHandler {
	return &FunnelHandler{sessions: sessions, hub: hub}
}

type SubmitTextRequest struct {
	Text string `json:"text"`
}

type SelectInterestRequest struct {
	Option string `json:"option" binding:"required"`
}

// StepResponse carries the session after a visitor action. Accepted is
// false when the input was ignored, e.g. blank text.
type StepResponse struct {
	Accepted bool            `json:"accepted"`
	Session  funnel.Snapshot `json:"session"`
}

func (h *FunnelHandler) session(c *gin.Context) (*funnel.Session, bool) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}

func (h *FunnelHandler) OpenSession(c *gin.Context) {
	s := h.sessions.Open()
	c.JSON(http.StatusCreated, s.Snapshot())
}

func (h *FunnelHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *FunnelHandler) SubmitText(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req SubmitTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, s, s.SubmitText(req.Text))
}

func (h *FunnelHandler) SelectInterest(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req SelectInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, s, s.SelectInterest(req.Option))
}

func (h *FunnelHandler) Resend(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.Resend())
}

func (h *FunnelHandler) CloseSession(c *gin.Context) {
	if !h.sessions.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream upgrades to a websocket that follows one session.
func (h *FunnelHandler) Stream(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.hub.ServeWs(c.Writer, c.Request, s.ID(), s.Snapshot())
}

func (h *FunnelHandler) respond(c *gin.Context, s *funnel.Session, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, StepResponse{Accepted: true, Session: s.Snapshot()})
	case errors.Is(err, funnel.ErrEmptyInput):
		c.JSON(http.StatusOK, StepResponse{Accepted: false, Session: s.Snapshot()})
	case errors.Is(err, funnel.ErrInvalidSelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "options": funnel.InterestOptions()})
	case errors.Is(err, funnel.ErrBusy), errors.Is(err, funnel.ErrUnexpectedInput):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "session": s.Snapshot()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
