package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/garment-catalog-api/internal/apperr"
	"github.com/garment-catalog-api/internal/config"
	"github.com/garment-catalog-api/internal/mocks"
	"github.com/garment-catalog-api/internal/models"
	"github.com/garment-catalog-api/internal/repository"
	"github.com/garment-catalog-api/internal/service"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func lp(s string) models.LoosePrice {
	return models.LoosePrice{Decimal: dec(s)}
}

func newTestServices() (*service.Services, *mocks.MockArticleRepository, *mocks.MockOptionRepository) {
	articleRepo := mocks.NewMockArticleRepository()
	optionRepo := mocks.NewMockOptionRepository()

	// Seed the taxonomy the way the migrations do
	optionRepo.Values[models.OptionSeasons] = models.OptionValue{Flat: []string{"Half", "Full", "Winter"}}
	optionRepo.Values[models.OptionCategories] = models.OptionValue{Flat: []string{"1 Piece", "2 Piece", "3 Piece"}}

	repos := &repository.Repositories{Article: articleRepo, Option: optionRepo}
	cfg := &config.Config{Environment: "production"}
	services := service.NewServices(repos, cfg, zerolog.Nop())
	return services, articleRepo, optionRepo
}

func createRequest(articleNo string) *models.CreateArticleRequest {
	return &models.CreateArticleRequest{
		ArticleNo:  articleNo,
		Season:     "Winter",
		Size:       "XL",
		Category:   "2 Piece",
		FabricType: "Woven",
		Quantity:   10,
		SalesRate:  dec("1000"),
		Rates: []models.RateInput{
			{Category: "fabric", Title: "Cotton", Price: lp("600")},
			{Category: "work", Title: "Stitching", Price: lp("150")},
		},
		CreatedBy: "user-1",
	}
}

func TestArticleService_Create(t *testing.T) {
	services, articleRepo, _ := newTestServices()
	ctx := context.Background()

	article, err := services.Article.Create(ctx, createRequest("  abc123 "))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if article.ArticleNo != "ABC123" {
		t.Errorf("Expected article_no normalized to ABC123, got %s", article.ArticleNo)
	}
	if !article.TotalCost.Equal(dec("750")) {
		t.Errorf("Expected total_cost 750, got %s", article.TotalCost)
	}
	if !article.ProfitMargin.Equal(dec("25")) {
		t.Errorf("Expected profit_margin 25, got %s", article.ProfitMargin)
	}
	if article.ID == "" {
		t.Error("Expected an assigned id")
	}
	if len(articleRepo.Articles) != 1 {
		t.Errorf("Expected 1 stored article, got %d", len(articleRepo.Articles))
	}
}

func TestArticleService_Create_DuplicateIsCaseInsensitive(t *testing.T) {
	services, _, _ := newTestServices()
	ctx := context.Background()

	if _, err := services.Article.Create(ctx, createRequest("abc123")); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := services.Article.Create(ctx, createRequest("ABC123"))
	if !apperr.IsConflict(err) {
		t.Errorf("Expected conflict for case-insensitive duplicate, got %v", err)
	}
}

func TestArticleService_Create_InvalidTaxonomyValue(t *testing.T) {
	services, _, _ := newTestServices()

	req := createRequest("abc124")
	req.Season = "Monsoon"

	_, err := services.Article.Create(context.Background(), req)
	if !apperr.IsValidation(err) {
		t.Errorf("Expected validation error for unknown season, got %v", err)
	}
}

func TestArticleService_Create_InvalidRateCategory(t *testing.T) {
	services, _, _ := newTestServices()

	req := createRequest("abc125")
	req.Rates = []models.RateInput{{Category: "shipping", Title: "Courier", Price: lp("10")}}

	_, err := services.Article.Create(context.Background(), req)
	if !apperr.IsValidation(err) {
		t.Errorf("Expected validation error for unknown rate category, got %v", err)
	}
}

func TestArticleService_Update_RatesRecomputeAgainstStoredSalesRate(t *testing.T) {
	services, _, _ := newTestServices()
	ctx := context.Background()

	created, err := services.Article.Create(ctx, createRequest("abc200"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Replace rates without touching sales_rate: margin must use the
	// stored sales_rate (1000) and the new total (500).
	updated, err := services.Article.Update(ctx, created.ID, &models.UpdateArticleRequest{
		Rates: []models.RateInput{
			{Category: "fabric", Title: "Silk", Price: lp("500")},
		},
		UpdatedBy: "user-2",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if !updated.TotalCost.Equal(dec("500")) {
		t.Errorf("Expected total_cost 500, got %s", updated.TotalCost)
	}
	if !updated.ProfitMargin.Equal(dec("50")) {
		t.Errorf("Expected profit_margin 50, got %s", updated.ProfitMargin)
	}
	if len(updated.Rates) != 1 {
		t.Errorf("Expected rate set replaced wholesale, got %d items", len(updated.Rates))
	}
}

func TestArticleService_Update_SalesRateRecomputesAgainstStoredCost(t *testing.T) {
	services, _, _ := newTestServices()
	ctx := context.Background()

	created, err := services.Article.Create(ctx, createRequest("abc201"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Stored total_cost is 750; new sales_rate 1500 gives margin 50.
	salesRate := dec("1500")
	updated, err := services.Article.Update(ctx, created.ID, &models.UpdateArticleRequest{
		SalesRate: &salesRate,
		UpdatedBy: "user-2",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if !updated.TotalCost.Equal(dec("750")) {
		t.Errorf("Expected stored total_cost 750 untouched, got %s", updated.TotalCost)
	}
	if !updated.ProfitMargin.Equal(dec("50")) {
		t.Errorf("Expected profit_margin 50, got %s", updated.ProfitMargin)
	}
}

func TestArticleService_Update_NoPricingChangePreservesMargin(t *testing.T) {
	services, _, _ := newTestServices()
	ctx := context.Background()

	created, err := services.Article.Create(ctx, createRequest("abc202"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	description := "lightweight summer jacket"
	updated, err := services.Article.Update(ctx, created.ID, &models.UpdateArticleRequest{
		Description: &description,
		UpdatedBy:   "user-2",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if !updated.ProfitMargin.Equal(created.ProfitMargin) {
		t.Errorf("Expected margin preserved at %s, got %s", created.ProfitMargin, updated.ProfitMargin)
	}
	if updated.Description != description {
		t.Errorf("Expected description updated, got %q", updated.Description)
	}
}

func TestArticleService_Update_NotFound(t *testing.T) {
	services, _, _ := newTestServices()

	_, err := services.Article.Update(context.Background(), "missing-id", &models.UpdateArticleRequest{})
	if !apperr.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestArticleService_Delete_ReturnsDeletedArticle(t *testing.T) {
	services, articleRepo, _ := newTestServices()
	ctx := context.Background()

	created, err := services.Article.Create(ctx, createRequest("abc300"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := services.Article.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.ID != created.ID {
		t.Errorf("Expected deleted article %s, got %s", created.ID, deleted.ID)
	}
	if len(articleRepo.Articles) != 0 {
		t.Error("Expected article removed from store")
	}
}

func TestArticleService_GetBulk_MixedIDs(t *testing.T) {
	services, _, _ := newTestServices()
	ctx := context.Background()

	a1, _ := services.Article.Create(ctx, createRequest("abc400"))
	a2, _ := services.Article.Create(ctx, createRequest("abc401"))

	articles, err := services.Article.GetBulk(ctx, []string{a1.ID, "nonexistent", a2.ID})
	if err != nil {
		t.Fatalf("GetBulk failed: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("Expected 2 articles with missing ids silently omitted, got %d", len(articles))
	}
	for _, a := range articles {
		if a.Rates == nil {
			t.Errorf("Expected article %s enriched with rates", a.ID)
		}
	}
}

func TestArticleService_GetBulk_Limits(t *testing.T) {
	services, _, _ := newTestServices()
	ctx := context.Background()

	if _, err := services.Article.GetBulk(ctx, nil); !apperr.IsValidation(err) {
		t.Errorf("Expected validation error for empty id list, got %v", err)
	}

	ids := make([]string, 101)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%d", i)
	}
	if _, err := services.Article.GetBulk(ctx, ids); !apperr.IsValidation(err) {
		t.Errorf("Expected validation error for more than 100 ids, got %v", err)
	}
}

func seedArticles(repo *mocks.MockArticleRepository, n int) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("id-%03d", i)
		repo.Articles[id] = &models.Article{
			ID:        id,
			ArticleNo: fmt.Sprintf("ART%03d", i),
			Season:    "Winter",
			Size:      "XL",
			Category:  "2 Piece",
			SalesRate: dec("100"),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		repo.ByArticleNo[fmt.Sprintf("ART%03d", i)] = id
	}
}

func TestArticleService_List_PaginationMetadata(t *testing.T) {
	services, articleRepo, _ := newTestServices()
	seedArticles(articleRepo, 25)

	result, err := services.Article.List(context.Background(), models.ListArticlesParams{
		Page:  3,
		Limit: 10,
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	p := result.Pagination
	if p.Total != 25 {
		t.Errorf("Expected total 25, got %d", p.Total)
	}
	if p.TotalPages != 3 {
		t.Errorf("Expected totalPages 3, got %d", p.TotalPages)
	}
	if p.HasNext {
		t.Error("Expected hasNext false on the last page")
	}
	if !p.HasPrev {
		t.Error("Expected hasPrev true on page 3")
	}
	if len(result.Items) != 5 {
		t.Errorf("Expected 5 items on page 3, got %d", len(result.Items))
	}
}

func TestArticleService_List_SortWhitelistFallback(t *testing.T) {
	services, articleRepo, _ := newTestServices()
	seedArticles(articleRepo, 3)

	_, err := services.Article.List(context.Background(), models.ListArticlesParams{
		SortBy: "password",
		Order:  "sideways",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if articleRepo.LastQuery.SortBy != "created_at" {
		t.Errorf("Expected sort fallback to created_at, got %s", articleRepo.LastQuery.SortBy)
	}
	if articleRepo.LastQuery.Order != "DESC" {
		t.Errorf("Expected order fallback to DESC, got %s", articleRepo.LastQuery.Order)
	}
}

func TestArticleService_List_Clamps(t *testing.T) {
	services, articleRepo, _ := newTestServices()
	seedArticles(articleRepo, 3)

	_, err := services.Article.List(context.Background(), models.ListArticlesParams{
		Page:  0,
		Limit: 1000,
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if articleRepo.LastQuery.Limit != 100 {
		t.Errorf("Expected limit clamped to 100, got %d", articleRepo.LastQuery.Limit)
	}
	if articleRepo.LastQuery.Offset != 0 {
		t.Errorf("Expected offset 0 for clamped page 1, got %d", articleRepo.LastQuery.Offset)
	}
}

func TestArticleService_List_FiltersAreConjunctive(t *testing.T) {
	services, articleRepo, _ := newTestServices()
	seedArticles(articleRepo, 5)
	articleRepo.Articles["id-000"].Season = "Half"

	result, err := services.Article.List(context.Background(), models.ListArticlesParams{
		Season: "Half",
		Search: "ART000",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if result.Pagination.Total != 1 {
		t.Errorf("Expected 1 match for season AND search, got %d", result.Pagination.Total)
	}
}

func TestArticleService_Get_NotFound(t *testing.T) {
	services, _, _ := newTestServices()

	_, err := services.Article.Get(context.Background(), "missing-id")
	if !apperr.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestArticleService_Stats_EmptyTableResolvesToZero(t *testing.T) {
	services, _, _ := newTestServices()

	stats, err := services.Article.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalArticles != 0 {
		t.Errorf("Expected 0 articles, got %d", stats.TotalArticles)
	}
	if !stats.Summary.TotalValue.IsZero() || !stats.Summary.AvgProfitMargin.IsZero() {
		t.Error("Expected empty-table aggregates to resolve to zero")
	}
}
