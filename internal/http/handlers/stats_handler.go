// Stats HTTP handler.
//
// Exposes GET /stats, the aggregate snapshot backing the overview widgets:
// customer totals, pipeline breakdown, contract value sum, recent contact
// count, and open task count.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/repo"
)

// StatsProvider supplies the aggregate snapshot. The router binds it to the
// repository so the handler stays transport-thin.
type StatsProvider func(ctx context.Context) (*repo.Overview, error)

// WithStats attaches the stats provider and returns the receiver for chaining.
func (h *Handlers) WithStats(p StatsProvider) *Handlers {
	h.stats = p
	return h
}

// Stats godoc
// @ID          stats
// @Summary     Aggregate statistics
// @Description Returns customer, contract, contact, and task aggregates for the overview page.
// @Tags        Stats
// @Produce     json
//
// @Success     200  {object} repo.Overview
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stats [get]
func (h *Handlers) Stats(c *gin.Context) {
	if h.stats == nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "stats provider not configured")
		return
	}
	overview, err := h.stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, overview)
}
