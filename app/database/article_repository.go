package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SQLArticleRepository stores articles in a single table partitioned by the
// source column; each source behaves as its own collection. Ticker sets are
// stored as JSON arrays and unwound with json_each for aggregations.
type SQLArticleRepository struct {
	db *DB
}

var _ ArticleRepository = (*SQLArticleRepository)(nil)

func NewArticleRepository(db *DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

func (r *SQLArticleRepository) InsertArticle(ctx context.Context, article Article) error {
	tickers, err := json.Marshal(article.Tickers)
	if err != nil {
		return fmt.Errorf("failed to encode tickers: %w", err)
	}

	var embedding sql.NullString
	if len(article.Embedding) > 0 {
		data, err := json.Marshal(article.Embedding)
		if err != nil {
			return fmt.Errorf("failed to encode embedding: %w", err)
		}
		embedding = sql.NullString{String: string(data), Valid: true}
	}

	id := article.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO articles (id, source, title, full_url, description, post_time, crawl_timestamp, tickers, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, article.Source, article.Title, article.FullURL, article.Description,
		article.PostTime, article.CrawlTimestamp, string(tickers), embedding)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

func (r *SQLArticleRepository) ExistsByURL(ctx context.Context, source, fullURL string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM articles WHERE source = ? AND full_url = ? LIMIT 1`,
		source, fullURL).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check article existence: %w", err)
	}
	return true, nil
}

func (r *SQLArticleRepository) FindArticles(ctx context.Context, source string, filter ArticleFilter, limit int) ([]Article, error) {
	query := `
		SELECT id, source, title, full_url, description, post_time, crawl_timestamp, tickers, embedding, created_at
		FROM articles
		WHERE source = ?`
	args := []interface{}{source}

	query, args = appendFilter(query, args, filter)
	query += ` ORDER BY post_time DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var article Article
		var tickers string
		var embedding sql.NullString
		err := rows.Scan(&article.ID, &article.Source, &article.Title, &article.FullURL,
			&article.Description, &article.PostTime, &article.CrawlTimestamp,
			&tickers, &embedding, &article.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}

		if err := json.Unmarshal([]byte(tickers), &article.Tickers); err != nil {
			return nil, fmt.Errorf("failed to decode tickers: %w", err)
		}
		if embedding.Valid {
			if err := json.Unmarshal([]byte(embedding.String), &article.Embedding); err != nil {
				return nil, fmt.Errorf("failed to decode embedding: %w", err)
			}
		}

		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *SQLArticleRepository) CountArticles(ctx context.Context, source string, filter ArticleFilter) (int, error) {
	query := `SELECT COUNT(*) FROM articles WHERE source = ?`
	args := []interface{}{source}
	query, args = appendFilter(query, args, filter)

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

// TickerCounts groups articles of one source by mentioned ticker, newest
// window first equivalent of an unwind/group/sort pipeline.
func (r *SQLArticleRepository) TickerCounts(ctx context.Context, source string, since int64, limit int) ([]TickerCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT je.value, COUNT(*) AS mention_count
		FROM articles, json_each(articles.tickers) AS je
		WHERE articles.source = ? AND articles.post_time >= ?
		GROUP BY je.value
		ORDER BY mention_count DESC
		LIMIT ?
	`, source, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ticker counts: %w", err)
	}
	defer rows.Close()

	return scanTickerCounts(rows)
}

// CoMentionedTickers ranks tickers that co-occur with the given ticker in
// the same articles, excluding the ticker itself.
func (r *SQLArticleRepository) CoMentionedTickers(ctx context.Context, source, ticker string, limit int) ([]TickerCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT je.value, COUNT(*) AS mention_count
		FROM articles, json_each(articles.tickers) AS je
		WHERE articles.source = ?
		  AND je.value != ?
		  AND EXISTS (SELECT 1 FROM json_each(articles.tickers) AS other WHERE other.value = ?)
		GROUP BY je.value
		ORDER BY mention_count DESC
		LIMIT ?
	`, source, ticker, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate co-mentioned tickers: %w", err)
	}
	defer rows.Close()

	return scanTickerCounts(rows)
}

func (r *SQLArticleRepository) TotalArticleCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func appendFilter(query string, args []interface{}, filter ArticleFilter) (string, []interface{}) {
	if filter.Ticker != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(articles.tickers) AS je WHERE je.value = ?)`
		args = append(args, filter.Ticker)
	}
	if filter.From > 0 {
		query += ` AND post_time >= ?`
		args = append(args, filter.From)
	}
	if filter.To > 0 {
		query += ` AND post_time <= ?`
		args = append(args, filter.To)
	}
	return query, args
}

func scanTickerCounts(rows *sql.Rows) ([]TickerCount, error) {
	var counts []TickerCount
	for rows.Next() {
		var tc TickerCount
		if err := rows.Scan(&tc.Ticker, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan ticker count row: %w", err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticker count rows: %w", err)
	}
	return counts, nil
}
