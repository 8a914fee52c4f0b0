package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/sbilibin2017/gw-secondchance/internal/docstore/migrations"
	"github.com/sbilibin2017/gw-secondchance/internal/logger"
)

// DefaultTimeout bounds every store call when no explicit timeout is configured.
const DefaultTimeout = 5 * time.Second

// PostgresStore implements Store on top of Postgres JSONB.
// Documents live in a single documents table keyed by (collection, doc_id);
// per-collection counters back NextSeq.
type PostgresStore struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
	timeout  time.Duration
}

// NewPostgresStore creates a PostgresStore. txGetter may be nil; when it
// returns a transaction for the current context, all calls run inside it.
func NewPostgresStore(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx, timeout time.Duration) *PostgresStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PostgresStore{db: db, txGetter: txGetter, timeout: timeout}
}

// RunMigrations applies the embedded goose migrations for the store schema.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db.DB, ".")
}

func (s *PostgresStore) executor(ctx context.Context) sqlx.ExtContext {
	if s.txGetter != nil {
		if tx := s.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return s.db
}

// wrapErr maps driver failures into the store error taxonomy.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// FindOne returns the first document of the collection matching the filter.
func (s *PostgresStore) FindOne(ctx context.Context, collection string, filter map[string]any) (json.RawMessage, error) {
	const query = `
		SELECT doc
		FROM documents
		WHERE collection = $1 AND doc @> $2
		LIMIT 1
	`

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc json.RawMessage
	err = sqlx.GetContext(ctx, s.executor(ctx), &doc, query, collection, filterJSON)

	logger.Log.Infow("docstore findOne",
		"query", strings.Join(strings.Fields(query), " "),
		"collection", collection,
		"filter", filter,
		"error", err,
	)

	if err != nil {
		return nil, wrapErr(err)
	}
	return doc, nil
}

// FindAll returns all documents of the collection matching the filter in
// insertion order. An empty filter matches every document.
func (s *PostgresStore) FindAll(ctx context.Context, collection string, filter map[string]any) ([]json.RawMessage, error) {
	const query = `
		SELECT doc
		FROM documents
		WHERE collection = $1 AND doc @> $2
		ORDER BY inserted_at
	`

	if filter == nil {
		filter = map[string]any{}
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var docs []json.RawMessage
	err = sqlx.SelectContext(ctx, s.executor(ctx), &docs, query, collection, filterJSON)

	logger.Log.Infow("docstore findAll",
		"query", strings.Join(strings.Fields(query), " "),
		"collection", collection,
		"filter", filter,
		"count", len(docs),
		"error", err,
	)

	if err != nil {
		return nil, wrapErr(err)
	}
	return docs, nil
}

// InsertOne persists a new document and returns the store-assigned identifier,
// which is also injected into the document as "_id".
func (s *PostgresStore) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	const query = `
		INSERT INTO documents (collection, doc_id, doc)
		VALUES ($1, $2, $3)
	`

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", err
	}

	docID, _ := fields["_id"].(string)
	if docID == "" {
		docID = uuid.New().String()
		fields["_id"] = docID
	}
	raw, err = json.Marshal(fields)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.executor(ctx).ExecContext(ctx, query, collection, docID, raw)

	logger.Log.Infow("docstore insertOne",
		"query", strings.Join(strings.Fields(query), " "),
		"collection", collection,
		"doc_id", docID,
		"error", err,
	)

	if err != nil {
		return "", wrapErr(err)
	}
	return docID, nil
}

// UpdateOne merges newValues into the first matching document and reports
// whether a document was updated.
func (s *PostgresStore) UpdateOne(ctx context.Context, collection string, filter map[string]any, newValues any) (bool, error) {
	const query = `
		UPDATE documents
		SET doc = doc || $3
		WHERE ctid = (
			SELECT ctid FROM documents
			WHERE collection = $1 AND doc @> $2
			LIMIT 1
		)
	`

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return false, err
	}
	valuesJSON, err := json.Marshal(newValues)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.executor(ctx).ExecContext(ctx, query, collection, filterJSON, valuesJSON)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("docstore updateOne",
		"query", strings.Join(strings.Fields(query), " "),
		"collection", collection,
		"filter", filter,
		"rows_affected", rowsAffected,
		"error", err,
	)

	if err != nil {
		return false, wrapErr(err)
	}
	return rowsAffected > 0, nil
}

// DeleteOne removes the first matching document and reports whether a
// document was deleted.
func (s *PostgresStore) DeleteOne(ctx context.Context, collection string, filter map[string]any) (bool, error) {
	const query = `
		DELETE FROM documents
		WHERE ctid = (
			SELECT ctid FROM documents
			WHERE collection = $1 AND doc @> $2
			LIMIT 1
		)
	`

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.executor(ctx).ExecContext(ctx, query, collection, filterJSON)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("docstore deleteOne",
		"query", strings.Join(strings.Fields(query), " "),
		"collection", collection,
		"filter", filter,
		"rows_affected", rowsAffected,
		"error", err,
	)

	if err != nil {
		return false, wrapErr(err)
	}
	return rowsAffected > 0, nil
}

// NextSeq atomically increments and returns the per-collection counter.
// The increment-and-fetch runs as a single statement, so two concurrent
// calls never observe the same value.
func (s *PostgresStore) NextSeq(ctx context.Context, collection string) (int64, error) {
	const query = `
		INSERT INTO counters (collection, value)
		VALUES ($1, 1)
		ON CONFLICT (collection)
		DO UPDATE SET value = counters.value + 1
		RETURNING value
	`

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var value int64
	err := sqlx.GetContext(ctx, s.executor(ctx), &value, query, collection)

	logger.Log.Infow("docstore nextSeq",
		"query", strings.Join(strings.Fields(query), " "),
		"collection", collection,
		"value", value,
		"error", err,
	)

	if err != nil {
		return 0, wrapErr(err)
	}
	return value, nil
}
