package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgUniqueViolation is the SQLSTATE reported by postgres
// when an insert breaks a unique constraint.
const pgUniqueViolation = "23505"

type postgresBookStorage struct {
	logger *zap.Logger
	pool   *pgxpool.Pool
}

// GetPostgresPool provides a ready to use postgres connections pool.
// The pool is safe for concurrent use and is the single long-lived
// database handle shared by all requests.
func GetPostgresPool(config *Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres connection string: %v", err)
	}
	poolConfig.MaxConns = config.Postgres.MaxConns
	poolConfig.ConnConfig.ConnectTimeout = config.Postgres.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build the connections pool: %v", err)
	}

	// test connection.
	ctx, cancel := context.WithTimeout(context.Background(), config.Postgres.PingTimeout)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("test connection failed: %v", err)
	}
	return pool, nil
}

// NewPostgresBookStorage provides an instance of postgres-based book storage.
func NewPostgresBookStorage(logger *zap.Logger, pool *pgxpool.Pool) BookStorage {
	return &postgresBookStorage{
		logger: logger,
		pool:   pool,
	}
}

// normalizeError converts driver-level errors into the storage sentinels.
// A unique violation becomes ErrDuplicateBook and an empty result set
// becomes ErrBookNotFound. Anything else bubbles up unchanged.
func normalizeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateBook
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrBookNotFound
	}
	return err
}

// Add inserts a new book record and returns the persisted row. The
// RETURNING clause avoids a second round-trip to re-fetch the record.
func (ps *postgresBookStorage) Add(ctx context.Context, book Book) (Book, error) {
	var stored Book
	err := ps.pool.QueryRow(ctx,
		`INSERT INTO book (id, name, author, year)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, author, year`,
		book.ID, book.Name, book.Author, book.Year,
	).Scan(&stored.ID, &stored.Name, &stored.Author, &stored.Year)
	if err != nil {
		return Book{}, normalizeError(err)
	}
	return stored, nil
}

// GetOne retrieves a book record based on its ID.
func (ps *postgresBookStorage) GetOne(ctx context.Context, id string) (Book, error) {
	var book Book
	err := ps.pool.QueryRow(ctx,
		`SELECT id, name, author, year FROM book WHERE id = $1`,
		id,
	).Scan(&book.ID, &book.Name, &book.Author, &book.Year)
	if err != nil {
		return Book{}, normalizeError(err)
	}
	return book, nil
}

// Delete removes a book record based on its ID. Zero affected
// rows means the record never existed.
func (ps *postgresBookStorage) Delete(ctx context.Context, id string) error {
	var deletedID string
	err := ps.pool.QueryRow(ctx,
		`DELETE FROM book WHERE id = $1 RETURNING id`,
		id,
	).Scan(&deletedID)
	if err != nil {
		return normalizeError(err)
	}
	return nil
}

// Update replaces the mutable fields of an existing book record and
// returns the resulting row. The identifier itself never changes.
func (ps *postgresBookStorage) Update(ctx context.Context, id string, book Book) (Book, error) {
	var updated Book
	err := ps.pool.QueryRow(ctx,
		`UPDATE book SET name = $2, author = $3, year = $4
		 WHERE id = $1
		 RETURNING id, name, author, year`,
		id, book.Name, book.Author, book.Year,
	).Scan(&updated.ID, &updated.Name, &updated.Author, &updated.Year)
	if err != nil {
		return Book{}, normalizeError(err)
	}
	return updated, nil
}

// GetAll retrieves a list of all books stored in the postgres database.
func (ps *postgresBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	rows, err := ps.pool.Query(ctx, `SELECT id, name, author, year FROM book`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var book Book
		if err = rows.Scan(&book.ID, &book.Name, &book.Author, &book.Year); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}
