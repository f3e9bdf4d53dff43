package api

import (
	models "StockRank/internal/domain/models"
	"StockRank/internal/usecase"
	xhttp "StockRank/pkg/http"
	xlogger "StockRank/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SelectionEchoHandler exposes ranking and selection over HTTP.
type SelectionEchoHandler struct {
	logger *xlogger.Logger
	sel    *usecase.SelectionUseCase
}

func NewSelectionEchoHandler(logger *xlogger.Logger, sel *usecase.SelectionUseCase) *SelectionEchoHandler {
	return &SelectionEchoHandler{logger: logger, sel: sel}
}

func (h *SelectionEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/rank", h.Rank)
	g.GET("/select", h.Select)
	g.GET("/weights", h.Weights)
	g.GET("/rebalance-dates", h.RebalanceDates)
	g.DELETE("/cache", h.ClearCache)
}

func (h *SelectionEchoHandler) Rank(c echo.Context) error {
	req := &models.RankRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.sel.Rank(c.Request().Context(), req.Date)
	if err != nil {
		h.logger.Error("rank usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SelectionEchoHandler) Select(c echo.Context) error {
	req := &models.SelectRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.sel.Select(c.Request().Context(), req.Date, req.TopN, req.Publish)
	if err != nil {
		h.logger.Error("select usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SelectionEchoHandler) Weights(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.sel.Weights())
}

func (h *SelectionEchoHandler) RebalanceDates(c echo.Context) error {
	req := &models.RebalanceDatesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	dates, err := h.sel.RebalanceDates(req.Start, req.End)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"start": req.Start,
		"end":   req.End,
		"dates": dates,
	})
}

func (h *SelectionEchoHandler) ClearCache(c echo.Context) error {
	if err := h.sel.ClearCache(c.Request().Context()); err != nil {
		h.logger.Error("clear cache error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

var _ xhttp.Handler = (*SelectionEchoHandler)(nil)
