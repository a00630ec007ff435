package reference

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lims/lims/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireAuthenticated())
	read.GET("/analytes/:analyteId/normal-ranges", h.ListByAnalyte)

	// Range configuration is senior-staff territory
	write := api.Group("", auth.RequireSeniorStaff())
	write.POST("/normal-ranges", h.Create)
	write.PUT("/normal-ranges/:id", h.Update)
	write.DELETE("/normal-ranges/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var nr NormalRange
	if err := c.Bind(&nr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &nr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, nr)
}

func (h *Handler) ListByAnalyte(c echo.Context) error {
	analyteID, err := uuid.Parse(c.Param("analyteId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid analyte id")
	}
	ranges, err := h.svc.ListByAnalyte(c.Request().Context(), analyteID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ranges)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var nr NormalRange
	if err := c.Bind(&nr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	nr.ID = id
	if err := h.svc.Update(c.Request().Context(), &nr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, nr)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
