package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/garment-catalog-api/internal/apperr"
	"github.com/garment-catalog-api/internal/database"
	"github.com/garment-catalog-api/internal/models"
)

const uniqueViolation = "23505"

const articleColumns = `
	id, article_no, season, size, category, description, fabric_type,
	quantity, total_cost, sales_rate, profit_margin, image,
	created_by, updated_by, created_at, updated_at
`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts the article header and its rate line items in one
// transaction. The unique index on article_no turns a concurrent duplicate
// into a conflict error instead of a second row.
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = tx.ExecContext(ctx, query,
		article.ID, article.ArticleNo, article.Season, article.Size, article.Category,
		nullString(article.Description), article.FabricType,
		article.Quantity, article.TotalCost, article.SalesRate, article.ProfitMargin,
		nullString(article.Image),
		article.CreatedBy, nullString(article.UpdatedBy),
		article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return translateUniqueViolation(err)
	}

	if err := insertRates(ctx, tx, article.ID, article.Rates); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID retrieves an article header by ID; rates are loaded separately
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByArticleNo retrieves an article by its normalized article number
func (r *articleRepo) GetByArticleNo(ctx context.Context, articleNo string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE article_no = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, strings.ToUpper(strings.TrimSpace(articleNo))))
}

// GetByIDs retrieves the articles matching the given ids. Missing ids are
// silently omitted.
func (r *articleRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.Article, error) {
	if len(ids) == 0 {
		return []*models.Article{}, nil
	}

	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = ANY($1) ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// Update rewrites the article header and, when replaceRates is set, swaps
// the whole rate set (delete-all then insert-all) in the same transaction.
func (r *articleRepo) Update(ctx context.Context, article *models.Article, replaceRates bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE articles SET
			article_no = $2, season = $3, size = $4, category = $5,
			description = $6, fabric_type = $7, quantity = $8,
			total_cost = $9, sales_rate = $10, profit_margin = $11,
			image = $12, updated_by = $13, updated_at = $14
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query,
		article.ID, article.ArticleNo, article.Season, article.Size, article.Category,
		nullString(article.Description), article.FabricType, article.Quantity,
		article.TotalCost, article.SalesRate, article.ProfitMargin,
		nullString(article.Image), nullString(article.UpdatedBy), time.Now(),
	)
	if err != nil {
		return translateUniqueViolation(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("article not found")
	}

	if replaceRates {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rates WHERE article_id = $1`, article.ID); err != nil {
			return err
		}
		if err := insertRates(ctx, tx, article.ID, article.Rates); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes the article; its rates go with it via ON DELETE CASCADE
func (r *articleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("article not found")
	}
	return nil
}

// List executes a compiled query. SortBy and Order must be whitelisted by
// the caller before they reach this method.
func (r *articleRepo) List(ctx context.Context, q ArticleQuery) ([]*models.Article, error) {
	where, params := buildFilters(q)

	query := fmt.Sprintf(
		`SELECT `+articleColumns+` FROM articles %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		where, q.SortBy, q.Order, len(params)+1, len(params)+2,
	)
	params = append(params, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// Count returns the number of articles matching the same filters as List
func (r *articleRepo) Count(ctx context.Context, q ArticleQuery) (int, error) {
	where, params := buildFilters(q)

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles `+where, params...).Scan(&count)
	return count, err
}

// ListRates returns an article's rate line items in insertion order
func (r *articleRepo) ListRates(ctx context.Context, articleID string) ([]models.Rate, error) {
	query := `SELECT category, title, price FROM rates WHERE article_id = $1 ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := []models.Rate{}
	for rows.Next() {
		var rate models.Rate
		if err := rows.Scan(&rate.Category, &rate.Title, &rate.Price); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

// ListRatesByArticleIDs fetches rate sets for many articles in one query,
// keyed by article id. Used to enrich list and bulk responses.
func (r *articleRepo) ListRatesByArticleIDs(ctx context.Context, ids []string) (map[string][]models.Rate, error) {
	result := make(map[string][]models.Rate, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT article_id, category, title, price
		FROM rates WHERE article_id = ANY($1)
		ORDER BY article_id, position
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var articleID string
		var rate models.Rate
		if err := rows.Scan(&articleID, &rate.Category, &rate.Title, &rate.Price); err != nil {
			return nil, err
		}
		result[articleID] = append(result[articleID], rate)
	}
	return result, rows.Err()
}

// Stats scans the full article table for summary totals and group-by
// roll-ups. Category and fabric groups come back ordered by count
// descending; seasons by season ascending.
func (r *articleRepo) Stats(ctx context.Context) (*models.ArticleStats, error) {
	stats := &models.ArticleStats{}

	summaryQuery := `
		SELECT COUNT(*),
		       COALESCE(SUM(sales_rate), 0),
		       COALESCE(SUM(total_cost), 0),
		       COALESCE(AVG(sales_rate), 0),
		       COALESCE(AVG(profit_margin), 0)
		FROM articles
	`
	err := r.db.QueryRowContext(ctx, summaryQuery).Scan(
		&stats.TotalArticles,
		&stats.Summary.TotalValue,
		&stats.Summary.TotalCost,
		&stats.Summary.AvgSalesRate,
		&stats.Summary.AvgProfitMargin,
	)
	if err != nil {
		return nil, err
	}

	if stats.CategoryStats, err = r.groupStats(ctx, "category", "count DESC"); err != nil {
		return nil, err
	}
	if stats.SeasonStats, err = r.groupStats(ctx, "season", "season ASC"); err != nil {
		return nil, err
	}
	if stats.FabricStats, err = r.groupStats(ctx, "fabric_type", "count DESC"); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *articleRepo) groupStats(ctx context.Context, column, order string) ([]models.GroupStat, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) AS count, COALESCE(SUM(sales_rate), 0)
		FROM articles GROUP BY %s ORDER BY %s
	`, column, column, order)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.GroupStat{}
	for rows.Next() {
		var s models.GroupStat
		if err := rows.Scan(&s.Key, &s.Count, &s.TotalValue); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// StreamAll streams every article ordered by creation time, for exports
func (r *articleRepo) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return err
		}
		if err := callback(article); err != nil {
			return err
		}
	}
	return rows.Err()
}

// buildFilters compiles the conjunctive WHERE clause shared by List and
// Count. Search matches article_no, description or size case-insensitively.
func buildFilters(q ArticleQuery) (string, []interface{}) {
	clauses := []string{}
	params := []interface{}{}

	if q.Search != "" {
		params = append(params, "%"+q.Search+"%")
		n := len(params)
		clauses = append(clauses, fmt.Sprintf(
			"(article_no ILIKE $%d OR description ILIKE $%d OR size ILIKE $%d)", n, n, n))
	}
	if q.Season != "" {
		params = append(params, q.Season)
		clauses = append(clauses, fmt.Sprintf("season = $%d", len(params)))
	}
	if q.Category != "" {
		params = append(params, q.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(params)))
	}
	if q.FabricType != "" {
		params = append(params, q.FabricType)
		clauses = append(clauses, fmt.Sprintf("fabric_type = $%d", len(params)))
	}

	if len(clauses) == 0 {
		return "", params
	}
	return "WHERE " + strings.Join(clauses, " AND "), params
}

func insertRates(ctx context.Context, tx *sql.Tx, articleID string, rates []models.Rate) error {
	if len(rates) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rates (article_id, category, title, price, position)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rate := range rates {
		if _, err := stmt.ExecContext(ctx, articleID, rate.Category, rate.Title, rate.Price, i); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var description, image, updatedBy sql.NullString

	err := row.Scan(
		&article.ID, &article.ArticleNo, &article.Season, &article.Size, &article.Category,
		&description, &article.FabricType,
		&article.Quantity, &article.TotalCost, &article.SalesRate, &article.ProfitMargin,
		&image, &article.CreatedBy, &updatedBy,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	article.Description = description.String
	article.Image = image.String
	article.UpdatedBy = updatedBy.String
	return &article, nil
}

func (r *articleRepo) scanOne(row *sql.Row) (*models.Article, error) {
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

func (r *articleRepo) scanMany(rows *sql.Rows) ([]*models.Article, error) {
	articles := []*models.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperr.Conflict("article number already exists")
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
