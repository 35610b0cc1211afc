package api

import (
	"errors"
	"net/http"

	"elite-gym/internal/catalog"
	"elite-gym/internal/registration"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	flows *registration.Registry
}

func NewRegistrationHandler(flows *registration.Registry) *RegistrationHandler {
	return &RegistrationHandler{flows: flows}
}

type SelectPlanRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

func (h *RegistrationHandler) flow(c *gin.Context) (*registration.Flow, bool) {
	f, ok := h.flows.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "registration not found"})
		return nil, false
	}
	return f, true
}

func (h *RegistrationHandler) Open(c *gin.Context) {
	f := h.flows.Open()
	c.JSON(http.StatusCreated, f.View())
}

func (h *RegistrationHandler) Get(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, f.View())
}

func (h *RegistrationHandler) SelectPlan(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	var req SelectPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := f.Select(req.PlanID); err != nil {
		h.fail(c, f, err)
		return
	}
	c.JSON(http.StatusOK, f.View())
}

func (h *RegistrationHandler) Continue(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	if _, err := f.Continue(); err != nil {
		h.fail(c, f, err)
		return
	}
	c.JSON(http.StatusOK, f.View())
}

func (h *RegistrationHandler) UpdateForm(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	var patch registration.FormPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := f.Update(patch); err != nil {
		h.fail(c, f, err)
		return
	}
	c.JSON(http.StatusOK, f.View())
}

func (h *RegistrationHandler) Back(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	if err := f.Back(); err != nil {
		h.fail(c, f, err)
		return
	}
	c.JSON(http.StatusOK, f.View())
}

func (h *RegistrationHandler) Submit(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	if _, err := f.Submit(); err != nil {
		h.fail(c, f, err)
		return
	}
	c.JSON(http.StatusOK, f.View())
}

func (h *RegistrationHandler) Cancel(c *gin.Context) {
	if !h.flows.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "registration not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RegistrationHandler) fail(c *gin.Context, f *registration.Flow, err error) {
	var verr *registration.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "fields": verr.Fields, "registration": f.View()})
	case errors.Is(err, catalog.ErrPlanNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, registration.ErrWrongStep):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "registration": f.View()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
