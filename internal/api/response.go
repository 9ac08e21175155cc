package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garment-catalog-api/internal/apperr"
	"github.com/garment-catalog-api/internal/models"
)

// envelope is the response shape shared by every endpoint
type envelope struct {
	Success    bool               `json:"success"`
	Data       interface{}        `json:"data,omitempty"`
	Message    string             `json:"message,omitempty"`
	Count      *int               `json:"count,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

// respondError maps the error taxonomy to HTTP statuses: validation and
// conflict to 400, not-found to 404, everything else to 500. Internal
// detail only leaves the process in development mode.
func respondError(c *gin.Context, dev bool, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation, apperr.KindConflict:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	}

	body := envelope{Success: false, Message: apperr.MessageOf(err)}
	if kind == apperr.KindInternal && dev {
		body.Error = err.Error()
	}
	c.JSON(status, body)
}
