package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/garment-catalog-api/internal/apperr"
	"github.com/garment-catalog-api/internal/config"
	"github.com/garment-catalog-api/internal/models"
	"github.com/garment-catalog-api/internal/service"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /api/articles
func (h *ArticleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	params := models.ListArticlesParams{
		Search:     c.Query("search"),
		Season:     c.Query("season"),
		Category:   c.Query("category"),
		FabricType: c.Query("fabric_type"),
		SortBy:     c.DefaultQuery("sortBy", "created_at"),
		Order:      c.DefaultQuery("order", "desc"),
		Page:       page,
		Limit:      limit,
	}

	result, err := h.services.Article.List(c.Request.Context(), params)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list articles")
		respondError(c, h.cfg.IsDevelopment(), err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Success:    true,
		Data:       result.Items,
		Pagination: &result.Pagination,
	})
}

// Get handles GET /api/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.services.Article.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.cfg.IsDevelopment(), err)
		return
	}
	respondData(c, http.StatusOK, article)
}

// Create handles POST /api/articles. Accepts either a JSON body or a
// multipart form with an optional image attachment; a stored image is
// removed again if the create fails afterwards.
func (h *ArticleHandler) Create(c *gin.Context) {
	var req models.CreateArticleRequest
	imagePath := ""

	if isMultipart(c) {
		if err := h.bindCreateForm(c, &req); err != nil {
			respondError(c, h.cfg.IsDevelopment(), err)
			return
		}
		path, err := h.saveImage(c)
		if err != nil {
			respondError(c, h.cfg.IsDevelopment(), err)
			return
		}
		imagePath = path
		req.Image = path
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, h.cfg.IsDevelopment(), apperr.Validation("invalid request body"))
			return
		}
	}

	req.CreatedBy = callerID(c)

	article, err := h.services.Article.Create(c.Request.Context(), &req)
	if err != nil {
		h.removeFile(imagePath)
		respondError(c, h.cfg.IsDevelopment(), err)
		return
	}

	respondData(c, http.StatusCreated, article)
}

// Update handles PUT /api/articles/:id. Partial: only supplied fields
// change; a supplied rates array replaces the stored set wholesale. A new
// image replaces the old file on disk once the update has succeeded.
func (h *ArticleHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdateArticleRequest
	newImage := ""
	oldImage := ""

	if isMultipart(c) {
		if err := h.bindUpdateForm(c, &req); err != nil {
			respondError(c, h.cfg.IsDevelopment(), err)
			return
		}
		path, err := h.saveImage(c)
		if err != nil {
			respondError(c, h.cfg.IsDevelopment(), err)
			return
		}
		if path != "" {
			newImage = path
			req.Image = &newImage
			if existing, getErr := h.services.Article.Get(c.Request.Context(), id); getErr == nil {
				oldImage = existing.Image
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, h.cfg.IsDevelopment(), apperr.Validation("invalid request body"))
			return
		}
	}

	req.UpdatedBy = callerID(c)

	article, err := h.services.Article.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.removeFile(newImage)
		respondError(c, h.cfg.IsDevelopment(), err)
		return
	}

	if oldImage != "" && oldImage != newImage {
		h.removeFile(oldImage)
	}

	c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "Article updated successfully",
		Data:    article,
	})
}

// Delete handles DELETE /api/articles/:id. The stored image asset is
// reconciled here, not in the repository.
func (h *ArticleHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	article, err := h.services.Article.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.cfg.IsDevelopment(), err)
		return
	}

	if article.Image != "" {
		h.removeFile(article.Image)
	}

	c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "Article deleted successfully",
		Data:    gin.H{"id": id},
	})
}

// Stats handles GET /api/articles/stats
func (h *ArticleHandler) Stats(c *gin.Context) {
	stats, err := h.services.Article.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch article statistics")
		respondError(c, h.cfg.IsDevelopment(), err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

// Bulk handles POST /api/articles/bulk
func (h *ArticleHandler) Bulk(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.cfg.IsDevelopment(), apperr.Validation("please provide an array of article IDs"))
		return
	}

	articles, err := h.services.Article.GetBulk(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, h.cfg.IsDevelopment(), err)
		return
	}

	count := len(articles)
	c.JSON(http.StatusOK, envelope{Success: true, Data: articles, Count: &count})
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// bindCreateForm reads a multipart create payload. The rates field arrives
// as a JSON-encoded string.
func (h *ArticleHandler) bindCreateForm(c *gin.Context, req *models.CreateArticleRequest) error {
	req.ArticleNo = c.PostForm("article_no")
	req.Season = c.PostForm("season")
	req.Size = c.PostForm("size")
	req.Category = c.PostForm("category")
	req.Description = c.PostForm("description")
	req.FabricType = c.PostForm("fabric_type")

	if v := c.PostForm("quantity"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return apperr.Validation("quantity must be a number")
		}
		req.Quantity = q
	}
	if v := c.PostForm("sales_rate"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return apperr.Validation("sales rate must be a number")
		}
		req.SalesRate = d
	}
	if v := c.PostForm("rates"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Rates); err != nil {
			return apperr.Validation("rates must be a JSON array")
		}
	}
	return nil
}

// bindUpdateForm reads a multipart update payload, keeping absent fields
// nil so the service can tell "not supplied" from "set to zero".
func (h *ArticleHandler) bindUpdateForm(c *gin.Context, req *models.UpdateArticleRequest) error {
	if v, ok := c.GetPostForm("article_no"); ok {
		val := v
		req.ArticleNo = &val
	}
	if v, ok := c.GetPostForm("season"); ok {
		val := v
		req.Season = &val
	}
	if v, ok := c.GetPostForm("size"); ok {
		val := v
		req.Size = &val
	}
	if v, ok := c.GetPostForm("category"); ok {
		val := v
		req.Category = &val
	}
	if v, ok := c.GetPostForm("description"); ok {
		val := v
		req.Description = &val
	}
	if v, ok := c.GetPostForm("fabric_type"); ok {
		val := v
		req.FabricType = &val
	}
	if v, ok := c.GetPostForm("quantity"); ok {
		q, err := strconv.Atoi(v)
		if err != nil {
			return apperr.Validation("quantity must be a number")
		}
		req.Quantity = &q
	}
	if v, ok := c.GetPostForm("sales_rate"); ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return apperr.Validation("sales rate must be a number")
		}
		req.SalesRate = &d
	}
	if v, ok := c.GetPostForm("rates"); ok {
		if err := json.Unmarshal([]byte(v), &req.Rates); err != nil {
			return apperr.Validation("rates must be a JSON array")
		}
	}
	return nil
}

// saveImage stores an attached image under the upload directory and
// returns its path, or "" when no image was attached.
func (h *ArticleHandler) saveImage(c *gin.Context) (string, error) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		return "", nil // no image attached
	}
	defer file.Close()

	if header.Size > h.cfg.Upload.MaxSize {
		return "", apperr.Validation("image too large, max size is %d MB", h.cfg.Upload.MaxSize/(1024*1024))
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return "", apperr.Validation("only images are allowed")
	}

	dir := filepath.Join(h.cfg.Upload.Dir, "articles")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperr.Internal("failed to store image", err)
	}

	filename := fmt.Sprintf("article-%s%s", uuid.New().String()[:8], filepath.Ext(header.Filename))
	path := filepath.Join(dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return "", apperr.Internal("failed to store image", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", apperr.Internal("failed to store image", err)
	}

	return filepath.ToSlash(path), nil
}

func (h *ArticleHandler) removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.log.Warn().Err(err).Str("path", path).Msg("Failed to remove image file")
	}
}
