// Package mocks provides in-memory repository implementations for tests.
package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/garment-catalog-api/internal/apperr"
	"github.com/garment-catalog-api/internal/models"
	"github.com/garment-catalog-api/internal/repository"
)

// MockArticleRepository is a mock implementation of ArticleRepository.
// Uniqueness of article_no is enforced the way the real unique index does.
type MockArticleRepository struct {
	Articles    map[string]*models.Article
	ByArticleNo map[string]string // article_no -> id

	LastQuery   repository.ArticleQuery
	CreateError error
	UpdateError error
	QueryError  error
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles:    make(map[string]*models.Article),
		ByArticleNo: make(map[string]string),
	}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, exists := m.ByArticleNo[article.ArticleNo]; exists {
		return apperr.Conflict("article number already exists")
	}
	cp := *article
	m.Articles[article.ID] = &cp
	m.ByArticleNo[article.ArticleNo] = article.ID
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	a, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *MockArticleRepository) GetByArticleNo(ctx context.Context, articleNo string) (*models.Article, error) {
	id, ok := m.ByArticleNo[strings.ToUpper(strings.TrimSpace(articleNo))]
	if !ok {
		return nil, nil
	}
	return m.GetByID(ctx, id)
}

func (m *MockArticleRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Article, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	articles := []*models.Article{}
	for _, id := range ids {
		if a, ok := m.Articles[id]; ok {
			cp := *a
			articles = append(articles, &cp)
		}
	}
	return articles, nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article, replaceRates bool) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	existing, ok := m.Articles[article.ID]
	if !ok {
		return apperr.NotFound("article not found")
	}
	if id, taken := m.ByArticleNo[article.ArticleNo]; taken && id != article.ID {
		return apperr.Conflict("article number already exists")
	}

	delete(m.ByArticleNo, existing.ArticleNo)
	cp := *article
	if !replaceRates {
		cp.Rates = existing.Rates
	}
	m.Articles[article.ID] = &cp
	m.ByArticleNo[article.ArticleNo] = article.ID
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	existing, ok := m.Articles[id]
	if !ok {
		return apperr.NotFound("article not found")
	}
	delete(m.ByArticleNo, existing.ArticleNo)
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) List(ctx context.Context, q repository.ArticleQuery) ([]*models.Article, error) {
	m.LastQuery = q
	if m.QueryError != nil {
		return nil, m.QueryError
	}

	matched := m.filter(q)
	sortArticles(matched, q.SortBy, q.Order)

	if q.Offset >= len(matched) {
		return []*models.Article{}, nil
	}
	end := q.Offset + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[q.Offset:end], nil
}

func (m *MockArticleRepository) Count(ctx context.Context, q repository.ArticleQuery) (int, error) {
	if m.QueryError != nil {
		return 0, m.QueryError
	}
	return len(m.filter(q)), nil
}

func (m *MockArticleRepository) ListRates(ctx context.Context, articleID string) ([]models.Rate, error) {
	a, ok := m.Articles[articleID]
	if !ok || a.Rates == nil {
		return []models.Rate{}, nil
	}
	return a.Rates, nil
}

func (m *MockArticleRepository) ListRatesByArticleIDs(ctx context.Context, ids []string) (map[string][]models.Rate, error) {
	result := make(map[string][]models.Rate, len(ids))
	for _, id := range ids {
		if a, ok := m.Articles[id]; ok && a.Rates != nil {
			result[id] = a.Rates
		}
	}
	return result, nil
}

func (m *MockArticleRepository) Stats(ctx context.Context) (*models.ArticleStats, error) {
	stats := &models.ArticleStats{
		Summary: models.StatsSummary{
			TotalValue:      decimal.Zero,
			TotalCost:       decimal.Zero,
			AvgSalesRate:    decimal.Zero,
			AvgProfitMargin: decimal.Zero,
		},
		CategoryStats: []models.GroupStat{},
		SeasonStats:   []models.GroupStat{},
		FabricStats:   []models.GroupStat{},
	}

	marginSum := decimal.Zero
	categories := map[string]*models.GroupStat{}
	seasons := map[string]*models.GroupStat{}
	fabrics := map[string]*models.GroupStat{}

	for _, a := range m.Articles {
		stats.TotalArticles++
		stats.Summary.TotalValue = stats.Summary.TotalValue.Add(a.SalesRate)
		stats.Summary.TotalCost = stats.Summary.TotalCost.Add(a.TotalCost)
		marginSum = marginSum.Add(a.ProfitMargin)

		accumulate(categories, a.Category, a.SalesRate)
		accumulate(seasons, a.Season, a.SalesRate)
		accumulate(fabrics, a.FabricType, a.SalesRate)
	}

	if stats.TotalArticles > 0 {
		n := decimal.NewFromInt(int64(stats.TotalArticles))
		stats.Summary.AvgSalesRate = stats.Summary.TotalValue.Div(n)
		stats.Summary.AvgProfitMargin = marginSum.Div(n)
	}

	stats.CategoryStats = sortedByCount(categories)
	stats.FabricStats = sortedByCount(fabrics)
	stats.SeasonStats = sortedByKey(seasons)
	return stats, nil
}

func (m *MockArticleRepository) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	all := make([]*models.Article, 0, len(m.Articles))
	for _, a := range m.Articles {
		all = append(all, a)
	}
	sortArticles(all, "created_at", "ASC")
	for _, a := range all {
		if err := callback(a); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockArticleRepository) filter(q repository.ArticleQuery) []*models.Article {
	matched := []*models.Article{}
	for _, a := range m.Articles {
		if q.Search != "" {
			term := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(a.ArticleNo), term) &&
				!strings.Contains(strings.ToLower(a.Description), term) &&
				!strings.Contains(strings.ToLower(a.Size), term) {
				continue
			}
		}
		if q.Season != "" && a.Season != q.Season {
			continue
		}
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		if q.FabricType != "" && a.FabricType != q.FabricType {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}
	return matched
}

func sortArticles(articles []*models.Article, sortBy, order string) {
	sort.SliceStable(articles, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "article_no":
			less = articles[i].ArticleNo < articles[j].ArticleNo
		case "sales_rate":
			less = articles[i].SalesRate.LessThan(articles[j].SalesRate)
		case "total_cost":
			less = articles[i].TotalCost.LessThan(articles[j].TotalCost)
		default:
			less = articles[i].CreatedAt.Before(articles[j].CreatedAt)
		}
		if order == "DESC" {
			return !less
		}
		return less
	})
}

func accumulate(groups map[string]*models.GroupStat, key string, salesRate decimal.Decimal) {
	g, ok := groups[key]
	if !ok {
		g = &models.GroupStat{Key: key, TotalValue: decimal.Zero}
		groups[key] = g
	}
	g.Count++
	g.TotalValue = g.TotalValue.Add(salesRate)
}

func sortedByCount(groups map[string]*models.GroupStat) []models.GroupStat {
	out := flatten(groups)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func sortedByKey(groups map[string]*models.GroupStat) []models.GroupStat {
	out := flatten(groups)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func flatten(groups map[string]*models.GroupStat) []models.GroupStat {
	out := make([]models.GroupStat, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	return out
}

// MockOptionRepository is a mock implementation of OptionRepository
type MockOptionRepository struct {
	Values map[string]models.OptionValue

	UpsertCalls   int
	LastUpsertKey string
	GetError      error
	UpsertError   error
}

func NewMockOptionRepository() *MockOptionRepository {
	return &MockOptionRepository{
		Values: make(map[string]models.OptionValue),
	}
}

func (m *MockOptionRepository) GetAll(ctx context.Context) (map[string]models.OptionValue, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	result := make(map[string]models.OptionValue, len(m.Values))
	for k, v := range m.Values {
		result[k] = copyValue(v)
	}
	return result, nil
}

func (m *MockOptionRepository) GetByKey(ctx context.Context, key string) (*models.OptionValue, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	v, ok := m.Values[key]
	if !ok {
		return nil, nil
	}
	cp := copyValue(v)
	return &cp, nil
}

func (m *MockOptionRepository) Upsert(ctx context.Context, key string, value models.OptionValue) error {
	m.UpsertCalls++
	m.LastUpsertKey = key
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.Values[key] = copyValue(value)
	return nil
}

func (m *MockOptionRepository) Count(ctx context.Context) (int, error) {
	return len(m.Values), nil
}

// copyValue deep-copies an option value so callers cannot alias the stored
// slices, matching the serialize-on-write behavior of the real store.
func copyValue(v models.OptionValue) models.OptionValue {
	if v.Grouped != nil {
		grouped := make(map[string][]string, len(v.Grouped))
		for k, list := range v.Grouped {
			grouped[k] = append([]string{}, list...)
		}
		return models.OptionValue{Grouped: grouped}
	}
	return models.OptionValue{Flat: append([]string{}, v.Flat...)}
}
