package api

import (
	"net/http"

	"elite-gym/internal/catalog"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	catalog *catalog.Catalog
}

func NewPlanHandler(c *catalog.Catalog) *PlanHandler {
	return &PlanHandler{catalog: c}
}

// PlanView is a plan with its display strings.
type PlanView struct {
	catalog.Plan
	PriceFormatted string `json:"price_formatted"`
	PriceLabel     string `json:"price_label"`
}

func (h *PlanHandler) GetPlans(c *gin.Context) {
	plans := h.catalog.All()
	views := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		views = append(views, PlanView{
			Plan:           p,
			PriceFormatted: catalog.FormatPrice(p.Price),
			PriceLabel:     p.PriceLabel(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"plans":    views,
		"featured": h.catalog.Featured().ID,
	})
}
