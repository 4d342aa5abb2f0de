package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"FolioPulse/internal/adapter/coingecko"
	"FolioPulse/internal/domain/models"
	"FolioPulse/internal/usecase"
	xhttp "FolioPulse/pkg/http"
	xlogger "FolioPulse/pkg/logger"
	xutil "FolioPulse/pkg/util"
)

// PortfolioEchoHandler exposes the allocation pipeline over HTTP.
type PortfolioEchoHandler struct {
	logger    *xlogger.Logger
	portfolio *usecase.Portfolio
	agg       *usecase.Aggregator
	discovery *coingecko.SpecDrivenAdapter
}

func NewPortfolioEchoHandler(logger *xlogger.Logger, portfolio *usecase.Portfolio, agg *usecase.Aggregator, discovery *coingecko.SpecDrivenAdapter) *PortfolioEchoHandler {
	return &PortfolioEchoHandler{logger: logger, portfolio: portfolio, agg: agg, discovery: discovery}
}

func (h *PortfolioEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/portfolio/allocate", h.Allocate)
	g.GET("/portfolio/history", h.History)
	g.GET("/market/analytics", h.Analytics)
	g.GET("/sources/health", h.SourceHealth)
	g.GET("/docs/endpoints", h.Endpoints)
	g.GET("/sectors", h.Sectors)
}

func (h *PortfolioEchoHandler) Allocate(c echo.Context) error {
	req := &models.AllocateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.portfolio.Allocate(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("allocate usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PortfolioEchoHandler) Analytics(c echo.Context) error {
	req := &models.AnalyticsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, omissions, err := h.portfolio.MarketAnalytics(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("analytics usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=30")
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"analytics": res,
		"omissions": omissions,
	})
}

func (h *PortfolioEchoHandler) History(c echo.Context) error {
	profile := models.RiskProfile(c.QueryParam("risk_profile"))
	from := xutil.ParseTimeDefault(c.QueryParam("from"), time.Now().Add(-24*time.Hour))
	to := xutil.ParseTimeDefault(c.QueryParam("to"), time.Now())
	limit := xutil.ParseIntDefault(c.QueryParam("limit"), 50)

	rows, err := h.portfolio.History(c.Request().Context(), profile, from, to, limit)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PortfolioEchoHandler) SourceHealth(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.agg.SourceHealth(c.Request().Context()))
}

// Endpoints lists the operations the upstream's API description advertises.
func (h *PortfolioEchoHandler) Endpoints(c echo.Context) error {
	ops, err := h.discovery.Operations(c.Request().Context())
	if err != nil {
		h.logger.Error("endpoint discovery error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, ops, int64(len(ops)))
}

func (h *PortfolioEchoHandler) Sectors(c echo.Context) error {
	out := make(map[string][]string)
	for _, s := range coingecko.Sectors() {
		out[s] = coingecko.SectorAssets(s)
	}
	return xhttp.SuccessResponse(c, out)
}

// toAppError maps pipeline errors onto HTTP statuses.
func toAppError(err error) error {
	var rl *models.RateLimitError
	switch {
	case errors.As(err, &rl):
		return xhttp.NewAppError("ERR_RATE_LIMITED", "", rl.Error(), http.StatusTooManyRequests).
			WithParam("retry_after_seconds", int(rl.RetryAfter.Seconds())).
			WithError(err)
	case errors.Is(err, models.ErrInvalidConfiguration):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrAggregationFailed):
		return xhttp.NewAppError("ERR_AGGREGATION_FAILED", "", err.Error(), http.StatusBadGateway).WithError(err)
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return xhttp.NewAppError("ERR_UPSTREAM_UNAVAILABLE", "", err.Error(), http.StatusBadGateway).WithError(err)
	default:
		return err
	}
}
