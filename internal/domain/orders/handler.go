package orders

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lims/lims/internal/platform/auth"
	"github.com/lims/lims/internal/platform/metrics"
	"github.com/lims/lims/pkg/pagination"
)

type Handler struct {
	svc   *Service
	stats *metrics.Registry
}

func NewHandler(svc *Service, stats *metrics.Registry) *Handler {
	return &Handler{svc: svc, stats: stats}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireAuthenticated())
	g.POST("/test-requests", h.CreateOrder)
	g.GET("/test-requests", h.SearchOrders)
	g.PUT("/test-requests/:id", h.EditOrder)
	g.DELETE("/test-requests/:id", h.DeleteOrder)
	g.GET("/test-requests/:id/result-entry", h.GetResultEntryView)
	g.POST("/test-requests/:id/results", h.SaveResults)
	g.POST("/test-requests/:id/verification", h.VerifyOrReject)
	g.POST("/test-requests/:id/transition", h.TransitionStatus)
	g.GET("/test-requests/:id/report", h.GetReport)
}

// httpError maps the domain error taxonomy onto transport statuses.
// Conflicts and locked states both surface as 409.
func (h *Handler) httpError(err error) error {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		illegal    *IllegalTransitionError
		locked     *LockedStateError
		authz      *AuthorizationError
		conflict   *ConflictError
	)
	switch {
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, validation.Error())
	case errors.As(err, &notFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound.Error())
	case errors.As(err, &illegal):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, illegal.Error())
	case errors.As(err, &locked):
		return echo.NewHTTPError(http.StatusConflict, locked.Error())
	case errors.As(err, &authz):
		h.stats.AuthzDenials.Inc()
		return echo.NewHTTPError(http.StatusForbidden, authz.Error())
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusConflict, conflict.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

type composeRequest struct {
	PatientID  uuid.UUID   `json:"patient_id"`
	CatalogIDs []uuid.UUID `json:"catalog_ids"`
	Priority   string      `json:"priority"`
}

func (h *Handler) CreateOrder(c echo.Context) error {
	var req composeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tr, err := h.svc.CreateOrder(c.Request().Context(), req.PatientID, req.CatalogIDs, req.Priority)
	if err != nil {
		return h.httpError(err)
	}
	h.stats.OrdersComposed.Inc()
	return c.JSON(http.StatusCreated, tr)
}

func (h *Handler) EditOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req composeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tr, err := h.svc.EditOrder(c.Request().Context(), id, req.CatalogIDs, req.Priority)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, tr)
}

func (h *Handler) DeleteOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteOrder(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SearchOrders(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, key := range []string{"patient", "status", "priority"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	requests, total, err := h.svc.SearchOrders(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(requests, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetResultEntryView(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	view, err := h.svc.GetResultEntryView(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

type saveResultsRequest struct {
	Results []ResultInput `json:"results"`
}

func (h *Handler) SaveResults(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req saveResultsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SaveResults(c.Request().Context(), id, req.Results); err != nil {
		return h.httpError(err)
	}
	h.stats.ResultsSaved.Add(float64(len(req.Results)))
	return c.NoContent(http.StatusNoContent)
}

type verificationRequest struct {
	Action string `json:"action"`
}

func (h *Handler) VerifyOrReject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req verificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.VerifyOrReject(c.Request().Context(), id, req.Action); err != nil {
		return h.httpError(err)
	}
	h.stats.ItemsVerified.WithLabelValues(req.Action).Inc()
	return c.NoContent(http.StatusNoContent)
}

type transitionRequest struct {
	Status           Status `json:"status"`
	PreviewConfirmed bool   `json:"preview_confirmed"`
}

func (h *Handler) TransitionStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.TransitionStatus(c.Request().Context(), id, req.Status, req.PreviewConfirmed); err != nil {
		h.stats.Transitions.WithLabelValues(string(req.Status), "failure").Inc()
		return h.httpError(err)
	}
	h.stats.Transitions.WithLabelValues(string(req.Status), "success").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	report, err := h.svc.GetReport(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}
