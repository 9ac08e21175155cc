package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/garment-catalog-api/internal/apperr"
	"github.com/garment-catalog-api/internal/costing"
	"github.com/garment-catalog-api/internal/models"
	"github.com/garment-catalog-api/internal/repository"
	"github.com/garment-catalog-api/internal/validation"
)

const (
	defaultLimit = 10
	maxLimit     = 100
	maxBulkIDs   = 100
)

// sortableFields is the whitelist of list sort columns. Anything else
// falls back to created_at.
var sortableFields = map[string]bool{
	"created_at": true,
	"article_no": true,
	"sales_rate": true,
	"total_cost": true,
	"season":     true,
	"category":   true,
	"updated_at": true,
}

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articles repository.ArticleRepository
	options  repository.OptionRepository
	log      zerolog.Logger
}

func newArticleService(repos *repository.Repositories, log zerolog.Logger) *articleService {
	return &articleService{
		articles: repos.Article,
		options:  repos.Option,
		log:      log.With().Str("service", "article").Logger(),
	}
}

// Create validates the payload against the taxonomy, derives cost and
// margin, and persists the article with its rate line items.
func (s *articleService) Create(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error) {
	opts, err := s.optionSets(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to load option sets", err)
	}
	if errs := validation.ValidateCreate(req, opts); len(errs) > 0 {
		return nil, apperr.Validation("%s", validation.Join(errs))
	}

	articleNo := strings.ToUpper(strings.TrimSpace(req.ArticleNo))

	// Friendly pre-check; the unique index on article_no is the actual
	// guarantee against a concurrent duplicate.
	existing, err := s.articles.GetByArticleNo(ctx, articleNo)
	if err != nil {
		return nil, apperr.Internal("failed to check article number", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("article number already exists")
	}

	rates := costing.RatesFromInput(req.Rates)
	totalCost, profitMargin := costing.Compute(rates, req.SalesRate)

	now := time.Now()
	article := &models.Article{
		ID:           uuid.NewString(),
		ArticleNo:    articleNo,
		Season:       req.Season,
		Size:         req.Size,
		Category:     req.Category,
		Description:  req.Description,
		FabricType:   req.FabricType,
		Quantity:     req.Quantity,
		TotalCost:    totalCost,
		SalesRate:    req.SalesRate,
		ProfitMargin: profitMargin,
		Image:        req.Image,
		CreatedBy:    req.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
		Rates:        rates,
	}

	if err := s.articles.Create(ctx, article); err != nil {
		if apperr.IsConflict(err) {
			return nil, err
		}
		return nil, apperr.Internal("failed to create article", err)
	}

	s.log.Info().
		Str("article_id", article.ID).
		Str("article_no", article.ArticleNo).
		Msg("Article created")
	return article, nil
}

// Get returns one article with its rate line items
func (s *articleService) Get(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to fetch article", err)
	}
	if article == nil {
		return nil, apperr.NotFound("article not found")
	}

	if article.Rates, err = s.articles.ListRates(ctx, id); err != nil {
		return nil, apperr.Internal("failed to fetch article rates", err)
	}
	return article, nil
}

// Update applies a partial update. A supplied rate set replaces the stored
// one wholesale and forces a cost/margin recomputation; a supplied
// sales_rate alone recomputes the margin against the stored total cost.
func (s *articleService) Update(ctx context.Context, id string, req *models.UpdateArticleRequest) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to fetch article", err)
	}
	if article == nil {
		return nil, apperr.NotFound("article not found")
	}

	opts, err := s.optionSets(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to load option sets", err)
	}
	if errs := validation.ValidateUpdate(req, opts); len(errs) > 0 {
		return nil, apperr.Validation("%s", validation.Join(errs))
	}

	if req.ArticleNo != nil {
		article.ArticleNo = strings.ToUpper(strings.TrimSpace(*req.ArticleNo))
	}
	if req.Season != nil {
		article.Season = *req.Season
	}
	if req.Size != nil {
		article.Size = *req.Size
	}
	if req.Category != nil {
		article.Category = *req.Category
	}
	if req.Description != nil {
		article.Description = *req.Description
	}
	if req.FabricType != nil {
		article.FabricType = *req.FabricType
	}
	if req.Quantity != nil {
		article.Quantity = *req.Quantity
	}
	if req.SalesRate != nil {
		article.SalesRate = *req.SalesRate
	}
	if req.Image != nil {
		article.Image = *req.Image
	}
	article.UpdatedBy = req.UpdatedBy

	ratesSupplied := req.Rates != nil
	switch {
	case ratesSupplied:
		article.Rates = costing.RatesFromInput(req.Rates)
		article.TotalCost, article.ProfitMargin = costing.Compute(article.Rates, article.SalesRate)
	case req.SalesRate != nil:
		article.ProfitMargin = costing.Margin(article.SalesRate, article.TotalCost)
	}

	if err := s.articles.Update(ctx, article, ratesSupplied); err != nil {
		if apperr.IsConflict(err) || apperr.IsNotFound(err) {
			return nil, err
		}
		return nil, apperr.Internal("failed to update article", err)
	}

	if !ratesSupplied {
		if article.Rates, err = s.articles.ListRates(ctx, id); err != nil {
			return nil, apperr.Internal("failed to fetch article rates", err)
		}
	}

	s.log.Info().Str("article_id", id).Msg("Article updated")
	return article, nil
}

// Delete removes the article and its rate rows. The deleted article is
// returned so the caller can reconcile any stored image asset.
func (s *articleService) Delete(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to fetch article", err)
	}
	if article == nil {
		return nil, apperr.NotFound("article not found")
	}

	if err := s.articles.Delete(ctx, id); err != nil {
		if apperr.IsNotFound(err) {
			return nil, err
		}
		return nil, apperr.Internal("failed to delete article", err)
	}

	s.log.Info().Str("article_id", id).Msg("Article deleted")
	return article, nil
}

// List compiles untrusted filter/sort/page parameters into a bounded query
// and returns one page of articles enriched with their rate line items.
func (s *articleService) List(ctx context.Context, params models.ListArticlesParams) (*models.ArticleList, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	sortBy := params.SortBy
	if !sortableFields[sortBy] {
		sortBy = "created_at"
	}
	order := "DESC"
	if params.Order == "asc" {
		order = "ASC"
	}

	q := repository.ArticleQuery{
		Search:     strings.TrimSpace(params.Search),
		Season:     strings.TrimSpace(params.Season),
		Category:   strings.TrimSpace(params.Category),
		FabricType: strings.TrimSpace(params.FabricType),
		SortBy:     sortBy,
		Order:      order,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	items, err := s.articles.List(ctx, q)
	if err != nil {
		return nil, apperr.Internal("failed to fetch articles", err)
	}
	total, err := s.articles.Count(ctx, q)
	if err != nil {
		return nil, apperr.Internal("failed to count articles", err)
	}

	if err := s.attachRates(ctx, items); err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &models.ArticleList{
		Items: items,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// GetBulk fetches up to 100 articles by id. Missing ids are silently
// omitted. The cap lives here, not in the repository.
func (s *articleService) GetBulk(ctx context.Context, ids []string) ([]*models.Article, error) {
	if len(ids) == 0 {
		return nil, apperr.Validation("please provide an array of article IDs")
	}
	if len(ids) > maxBulkIDs {
		return nil, apperr.Validation("maximum %d articles can be fetched at once", maxBulkIDs)
	}

	articles, err := s.articles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to fetch articles", err)
	}

	if err := s.attachRates(ctx, articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// Stats returns the full-table statistics roll-up
func (s *articleService) Stats(ctx context.Context) (*models.ArticleStats, error) {
	stats, err := s.articles.Stats(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to fetch article statistics", err)
	}
	return stats, nil
}

// Count returns the total number of articles, for the metrics endpoint
func (s *articleService) Count(ctx context.Context) (int, error) {
	return s.articles.Count(ctx, repository.ArticleQuery{})
}

// attachRates enriches articles with their rate sets in one batched lookup
func (s *articleService) attachRates(ctx context.Context, articles []*models.Article) error {
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}

	ratesByID, err := s.articles.ListRatesByArticleIDs(ctx, ids)
	if err != nil {
		return apperr.Internal("failed to fetch article rates", err)
	}
	for _, a := range articles {
		if rates, ok := ratesByID[a.ID]; ok {
			a.Rates = rates
		} else {
			a.Rates = []models.Rate{}
		}
	}
	return nil
}

// optionSets loads the taxonomy enumerations used for article validation
func (s *articleService) optionSets(ctx context.Context) (validation.OptionSets, error) {
	var opts validation.OptionSets

	seasons, err := s.options.GetByKey(ctx, models.OptionSeasons)
	if err != nil {
		return opts, err
	}
	if seasons != nil {
		opts.Seasons = seasons.Flat
	}

	categories, err := s.options.GetByKey(ctx, models.OptionCategories)
	if err != nil {
		return opts, err
	}
	if categories != nil {
		opts.Categories = categories.Flat
	}
	return opts, nil
}
