package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// IdempotencyKey stores the response of an already-performed operation,
// keyed by (user, key, endpoint). The unique constraint on that triple
// is the commit point for "already handled": a concurrent duplicate
// request loses the insert race and replays the stored response.
type IdempotencyKey struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	Key       string          `db:"key"`
	Endpoint  string          `db:"endpoint"`
	Response  json.RawMessage `db:"response"`
	CreatedAt time.Time       `db:"created_at"`
}

const pqUniqueViolationCode = "23505"

type IdempotencyKeyRepository interface {
	Find(userID, key, endpoint string) (*IdempotencyKey, bool, error)

	// Insert commits the record. When a concurrent duplicate already
	// won the insert race, the existing record is re-read and returned
	// with replayed=true instead of surfacing the constraint error.
	Insert(record *IdempotencyKey) (stored *IdempotencyKey, replayed bool, err error)
}

type IdempotencyKeyRepositoryImpl struct {
	db *sqlx.DB
}

func NewIdempotencyKeyRepository(db *sqlx.DB) IdempotencyKeyRepository {
	return &IdempotencyKeyRepositoryImpl{db: db}
}

func (repo *IdempotencyKeyRepositoryImpl) Find(userID, key, endpoint string) (*IdempotencyKey, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var record IdempotencyKey

	query := `
        SELECT id, user_id, key, endpoint, response, created_at FROM idempotency_keys
        WHERE user_id=$1 AND key=$2 AND endpoint=$3`

	err := repo.db.GetContext(ctx, &record, query, userID, key, endpoint)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &record, true, nil
}

func (repo *IdempotencyKeyRepositoryImpl) Insert(record *IdempotencyKey) (*IdempotencyKey, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO idempotency_keys (user_id, key, endpoint, response)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := repo.db.QueryRowContext(ctx, query,
		record.UserID,
		record.Key,
		record.Endpoint,
		record.Response,
	).Scan(&id)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolationCode {
			existing, found, findErr := repo.Find(record.UserID, record.Key, record.Endpoint)
			if findErr != nil {
				return nil, false, findErr
			}
			if !found {
				// The winning row vanished between the conflict and
				// the re-read, which should not happen for an
				// append-only table.
				return nil, false, err
			}
			return existing, true, nil
		}
		return nil, false, err
	}

	record.ID = id
	return record, false, nil
}
