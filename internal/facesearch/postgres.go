package facesearch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/fotogo/gallery-core/internal/config"
	"github.com/fotogo/gallery-core/internal/constants"
)

// PostgresVectorStore persists face vectors in PostgreSQL with the
// pgvector extension. It is optional; without DATABASE_URL the service
// falls back to the in-memory store.
type PostgresVectorStore struct {
	db *sql.DB
}

// NewPostgresVectorStore opens a connection pool, verifies it and
// ensures the schema exists.
func NewPostgresVectorStore(cfg *config.DatabaseConfig) (*PostgresVectorStore, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresVectorStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresVectorStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS face_vectors (
			event_id   TEXT NOT NULL,
			record_id  TEXT NOT NULL,
			has_face   BOOLEAN NOT NULL,
			embedding  vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (event_id, record_id)
		)`, constants.FaceVectorDim),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate face_vectors: %w", err)
		}
	}
	return nil
}

func (s *PostgresVectorStore) Get(eventID, recordID string) (*CachedVector, error) {
	query := `
		SELECT has_face, embedding
		FROM face_vectors
		WHERE event_id = $1 AND record_id = $2
	`
	var (
		hasFace bool
		vec     pgvector.Vector
	)
	err := s.db.QueryRow(query, eventID, recordID).Scan(&hasFace, &vec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query face vector: %w", err)
	}
	entry := &CachedVector{HasFace: hasFace}
	if hasFace {
		entry.Vec = vec.Slice()
	}
	return entry, nil
}

func (s *PostgresVectorStore) Put(eventID, recordID string, vec Vector, hasFace bool) error {
	query := `
		INSERT INTO face_vectors (event_id, record_id, has_face, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, record_id)
		DO UPDATE SET has_face = EXCLUDED.has_face, embedding = EXCLUDED.embedding
	`
	var emb interface{}
	if hasFace {
		emb = pgvector.NewVector(vec)
	}
	if _, err := s.db.Exec(query, eventID, recordID, hasFace, emb); err != nil {
		return fmt.Errorf("store face vector: %w", err)
	}
	return nil
}

func (s *PostgresVectorStore) Delete(eventID, recordID string) error {
	if _, err := s.db.Exec(`DELETE FROM face_vectors WHERE event_id = $1 AND record_id = $2`, eventID, recordID); err != nil {
		return fmt.Errorf("delete face vector: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresVectorStore) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}
