package devapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinica/dashboard/internal/resource"
	"github.com/clinica/dashboard/pkg/pagination"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/:resource", h.List)
	api.POST("/:resource", h.Create)
	api.GET("/:resource/:id", h.Get)
	api.PUT("/:resource/:id", h.Update)
	api.DELETE("/:resource/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	page, err := pagination.FromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	records, err := h.svc.List(c.Request().Context(), c.Param("resource"), page)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) Get(c echo.Context) error {
	rec, err := h.svc.Get(c.Request().Context(), c.Param("resource"), c.Param("id"))
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Create(c echo.Context) error {
	rec, err := decodeRecord(c)
	if err != nil {
		return err
	}
	created, err := h.svc.Create(c.Request().Context(), c.Param("resource"), rec)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	rec, err := decodeRecord(c)
	if err != nil {
		return err
	}
	updated, err := h.svc.Update(c.Request().Context(), c.Param("resource"), c.Param("id"), rec)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("resource"), c.Param("id")); err != nil {
		return h.httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// decodeRecord reads the JSON object body. echo's Bind is avoided because it
// would copy path parameters into the map.
func decodeRecord(c echo.Context) (resource.Record, error) {
	var rec resource.Record
	if err := json.NewDecoder(c.Request().Body).Decode(&rec); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON object")
	}
	if rec == nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON object")
	}
	return rec, nil
}

func (h *Handler) httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrUnknownResource):
		return echo.NewHTTPError(http.StatusNotFound, "unknown resource")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	default:
		h.logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("store failure")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
