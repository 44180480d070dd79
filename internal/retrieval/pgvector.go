package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultMaxConns = 4

// PGConfig points at a Postgres table with a text column `content` and a
// pgvector column `embedding`, filled by an offline ingestion job.
type PGConfig struct {
	DSN      string
	Table    string
	MaxConns int32
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGVectorIndex answers similarity searches with a cosine-distance scan over a
// pgvector column.
type PGVectorIndex struct {
	db       rowQuerier
	pool     *pgxpool.Pool
	embedder Embedder
	query    string
}

// ConnectPGVector opens a pool and verifies the connection.
func ConnectPGVector(ctx context.Context, cfg PGConfig, embedder Embedder) (*PGVectorIndex, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("retrieval dsn is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse retrieval dsn: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	if poolCfg.MaxConns <= 0 {
		poolCfg.MaxConns = defaultMaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	index, err := newPGVectorIndex(pool, embedder, cfg.Table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	index.pool = pool
	return index, nil
}

func newPGVectorIndex(db rowQuerier, embedder Embedder, table string) (*PGVectorIndex, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}

	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("retrieval table is required")
	}

	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()

	return &PGVectorIndex{
		db:       db,
		embedder: embedder,
		query:    fmt.Sprintf("SELECT content FROM %s ORDER BY embedding <=> $1::vector LIMIT $2", ident),
	}, nil
}

func (p *PGVectorIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]string, error) {
	vec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := p.db.Query(ctx, p.query, vectorLiteral(vec), k)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	texts := make([]string, 0, k)
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		texts = append(texts, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read chunks: %w", err)
	}

	return texts, nil
}

func (p *PGVectorIndex) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}

// vectorLiteral renders v in pgvector's text input format.
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
