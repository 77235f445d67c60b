package devapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinica/dashboard/internal/resource"
	"github.com/clinica/dashboard/pkg/pagination"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PGStore keeps records as JSONB documents in the records table.
type PGStore struct {
	pool *pgxpool.Pool
	db   querier
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, db: pool}
}

func (s *PGStore) Pool() *pgxpool.Pool { return s.pool }

func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// parseID maps ids that cannot exist in a uuid column to ErrNotFound.
func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return u, nil
}

func decodeBody(id string, body []byte) (resource.Record, error) {
	var rec resource.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	if rec == nil {
		rec = resource.Record{}
	}
	rec["id"] = id
	return rec, nil
}

func (s *PGStore) List(ctx context.Context, res string, page pagination.Params) ([]resource.Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id::text, body FROM records
		WHERE resource = $1
		ORDER BY position
		LIMIT $2 OFFSET $3`, res, page.SQLLimit(), page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", res, err)
	}
	defer rows.Close()

	out := []resource.Record{}
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", res, err)
		}
		rec, err := decodeBody(id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", res, err)
	}
	return out, nil
}

func (s *PGStore) Get(ctx context.Context, res, id string) (resource.Record, error) {
	u, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var body []byte
	err = s.db.QueryRow(ctx, `SELECT body FROM records WHERE resource = $1 AND id = $2`, res, u).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", res, id, err)
	}
	return decodeBody(u.String(), body)
}

func (s *PGStore) Create(ctx context.Context, res string, rec resource.Record) (resource.Record, error) {
	u := uuid.New()
	stored := rec.Clone()
	if stored == nil {
		stored = resource.Record{}
	}
	stored["id"] = u.String()
	body, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", res, err)
	}
	if _, err := s.db.Exec(ctx,
		`INSERT INTO records (resource, id, body) VALUES ($1, $2, $3)`, res, u, body,
	); err != nil {
		return nil, fmt.Errorf("create %s: %w", res, err)
	}
	return stored, nil
}

func (s *PGStore) Update(ctx context.Context, res, id string, rec resource.Record) (resource.Record, error) {
	u, err := parseID(id)
	if err != nil {
		return nil, err
	}
	stored := rec.Clone()
	if stored == nil {
		stored = resource.Record{}
	}
	stored["id"] = u.String()
	body, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", res, err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE records SET body = $3, updated_at = NOW() WHERE resource = $1 AND id = $2`, res, u, body,
	)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", res, id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return stored, nil
}

func (s *PGStore) Delete(ctx context.Context, res, id string) error {
	u, err := parseID(id)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM records WHERE resource = $1 AND id = $2`, res, u)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", res, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
