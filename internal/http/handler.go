package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"autopark-service/internal/exchange"
	"autopark-service/internal/http/middleware"
	"autopark-service/internal/service"
)

type Handler struct {
	importService *service.ImportService
	exportService *service.ExportService
	rangeService  *service.TripRangeService
	log           zerolog.Logger
}

func NewHandler(
	importService *service.ImportService,
	exportService *service.ExportService,
	rangeService *service.TripRangeService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		importService: importService,
		exportService: exportService,
		rangeService:  rangeService,
		log:           log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := r.Group("/api")
	api.Use(authMiddleware)

	exchangeGroup := api.Group("/exchange")
	{
		exchangeGroup.POST("/import", h.importData)
	}

	enterprises := api.Group("/enterprises")
	{
		enterprises.GET("/:id/export", h.exportEnterprise)
	}

	vehicles := api.Group("/vehicles")
	{
		vehicles.GET("/:id/trips/range", h.tripsInRange)
	}
}

func (h *Handler) importData(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	// Сверка меняет данные: только админ и менеджер
	if !principal.IsAdmin() && !principal.IsManager() {
		c.JSON(http.StatusForbidden, errorResponse("insufficient role"))
		return
	}

	var req struct {
		Content         string  `json:"content" binding:"required"`
		Format          string  `json:"format" binding:"required"`
		UpdateExisting  bool    `json:"updateExisting"`
		GeocodingAPIKey *string `json:"geocodingApiKey"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	report, err := h.importService.Import(c.Request.Context(), service.ImportInput{
		Content:         req.Content,
		Format:          req.Format,
		UpdateExisting:  req.UpdateExisting,
		GeocodingAPIKey: req.GeocodingAPIKey,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) exportEnterprise(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("invalid enterprise id"))
		return
	}

	format := strings.TrimSpace(c.Query("format"))
	if format == "" {
		format = string(exchange.FormatJSON)
	}

	snapshot, err := h.exportService.Export(c.Request.Context(), service.ExportInput{
		EnterpriseID: id,
		Format:       format,
		From:         strings.TrimSpace(c.Query("from")),
		To:           strings.TrimSpace(c.Query("to")),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+snapshot.FileName+"\"")
	c.Data(http.StatusOK, snapshot.ContentType, snapshot.Content)
}

func (h *Handler) tripsInRange(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, errorResponse("from and to are required"))
		return
	}

	result, err := h.rangeService.TripsInRange(c.Request.Context(), service.TripRangeInput{
		VehicleID:  id,
		From:       from,
		To:         to,
		TimeZoneID: strings.TrimSpace(c.Query("tz")),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	switch strings.ToLower(strings.TrimSpace(c.Query("format"))) {
	case "", "json":
		c.JSON(http.StatusOK, successResponse(result))
	case "geojson":
		c.JSON(http.StatusOK, result.GeoJSON())
	default:
		c.JSON(http.StatusBadRequest, errorResponse("unsupported format"))
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, exchange.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
