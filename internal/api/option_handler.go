package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/garment-catalog-api/internal/apperr"
	"github.com/garment-catalog-api/internal/config"
	"github.com/garment-catalog-api/internal/models"
	"github.com/garment-catalog-api/internal/service"
)

// OptionHandler handles taxonomy endpoints
type OptionHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewOptionHandler creates a new OptionHandler
func NewOptionHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *OptionHandler {
	return &OptionHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "option").Logger(),
	}
}

// GetAll handles GET /api/options
func (h *OptionHandler) GetAll(c *gin.Context) {
	options, err := h.services.Option.GetAll(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch options")
		respondError(c, h.cfg.IsDevelopment(), err)
		return
	}
	respondData(c, http.StatusOK, options)
}

// Mutate handles POST /api/options/:type and /api/options/:type/:category.
// The body carries {action, value, index}; the mutated value for the whole
// key is returned.
func (h *OptionHandler) Mutate(c *gin.Context) {
	var m models.OptionMutation
	if err := c.ShouldBindJSON(&m); err != nil {
		respondError(c, h.cfg.IsDevelopment(), apperr.Validation("invalid request body"))
		return
	}

	value, err := h.services.Option.Mutate(
		c.Request.Context(),
		c.Param("type"),
		c.Param("category"),
		m,
	)
	if err != nil {
		respondError(c, h.cfg.IsDevelopment(), err)
		return
	}

	respondData(c, http.StatusOK, value)
}
