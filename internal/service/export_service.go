package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/garment-catalog-api/internal/models"
	"github.com/garment-catalog-api/internal/repository"
)

// exportService streams the article catalog without buffering it in memory
type exportService struct {
	articles repository.ArticleRepository
	log      zerolog.Logger
}

func newExportService(articles repository.ArticleRepository, log zerolog.Logger) *exportService {
	return &exportService{
		articles: articles,
		log:      log.With().Str("service", "export").Logger(),
	}
}

// StreamArticles streams the full catalog in the specified format
func (s *exportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting catalog export")

	switch format {
	case "ndjson":
		return s.streamNDJSON(ctx, w)
	case "json":
		return s.streamJSON(ctx, w)
	case "csv":
		return s.streamCSV(ctx, w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (s *exportService) streamNDJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=articles.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.articles.StreamAll(ctx, func(article *models.Article) error {
		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	s.log.Info().Int("count", count).Msg("Catalog export completed")
	return err
}

func (s *exportService) streamJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=articles.json")

	w.Write([]byte("["))
	first := true

	err := s.articles.StreamAll(ctx, func(article *models.Article) error {
		if !first {
			w.Write([]byte(","))
		}
		first = false

		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		w.Write(data)
		return nil
	})

	w.Write([]byte("]"))
	return err
}

func (s *exportService) streamCSV(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=articles.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{
		"id", "article_no", "season", "size", "category", "description",
		"fabric_type", "quantity", "total_cost", "sales_rate", "profit_margin",
		"created_at", "updated_at",
	})

	return s.articles.StreamAll(ctx, func(article *models.Article) error {
		return writer.Write([]string{
			article.ID,
			article.ArticleNo,
			article.Season,
			article.Size,
			article.Category,
			article.Description,
			article.FabricType,
			strconv.Itoa(article.Quantity),
			article.TotalCost.String(),
			article.SalesRate.String(),
			article.ProfitMargin.String(),
			article.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			article.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	})
}
