package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/garment-catalog-api/internal/config"
	"github.com/garment-catalog-api/internal/models"
	"github.com/garment-catalog-api/internal/repository"
)

// ArticleService defines the interface for article operations, including
// the filtered/sorted/paginated query layer and the statistics roll-up.
type ArticleService interface {
	Create(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error)
	Get(ctx context.Context, id string) (*models.Article, error)
	Update(ctx context.Context, id string, req *models.UpdateArticleRequest) (*models.Article, error)
	Delete(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context, params models.ListArticlesParams) (*models.ArticleList, error)
	GetBulk(ctx context.Context, ids []string) ([]*models.Article, error)
	Stats(ctx context.Context) (*models.ArticleStats, error)
	Count(ctx context.Context) (int, error)
}

// OptionService defines the interface for taxonomy operations
type OptionService interface {
	GetAll(ctx context.Context) (map[string]models.OptionValue, error)
	Mutate(ctx context.Context, key, category string, m models.OptionMutation) (*models.OptionValue, error)
	Count(ctx context.Context) (int, error)
}

// ExportService streams the catalog in bulk formats
type ExportService interface {
	StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error
}

// Services holds all service interfaces
type Services struct {
	Article ArticleService
	Option  OptionService
	Export  ExportService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Article: newArticleService(repos, log),
		Option:  newOptionService(repos.Option, log),
		Export:  newExportService(repos.Article, log),
	}
}
