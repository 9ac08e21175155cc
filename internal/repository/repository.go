package repository

import (
	"context"

	"github.com/garment-catalog-api/internal/database"
	"github.com/garment-catalog-api/internal/models"
)

// ArticleQuery is a compiled, sanitized list query. SortBy and Order must
// already be whitelisted by the caller; the repository interpolates them
// into SQL.
type ArticleQuery struct {
	Search     string
	Season     string
	Category   string
	FabricType string
	SortBy     string
	Order      string
	Limit      int
	Offset     int
}

// ArticleRepository defines the interface for article data operations.
// Lookups return (nil, nil) when the row does not exist.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	GetByArticleNo(ctx context.Context, articleNo string) (*models.Article, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Article, error)
	Update(ctx context.Context, article *models.Article, replaceRates bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q ArticleQuery) ([]*models.Article, error)
	Count(ctx context.Context, q ArticleQuery) (int, error)
	ListRates(ctx context.Context, articleID string) ([]models.Rate, error)
	ListRatesByArticleIDs(ctx context.Context, ids []string) (map[string][]models.Rate, error)
	Stats(ctx context.Context) (*models.ArticleStats, error)
	StreamAll(ctx context.Context, callback func(*models.Article) error) error
}

// OptionRepository defines the interface for taxonomy data operations.
// Every write replaces the whole value for a key, so readers never observe
// a partially updated list.
type OptionRepository interface {
	GetAll(ctx context.Context) (map[string]models.OptionValue, error)
	GetByKey(ctx context.Context, key string) (*models.OptionValue, error)
	Upsert(ctx context.Context, key string, value models.OptionValue) error
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article ArticleRepository
	Option  OptionRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article: NewArticleRepo(db),
		Option:  NewOptionRepo(db),
	}
}
