package request

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists requests in the service_requests table.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

func (s *PostgresStore) Insert(ctx context.Context, r *ServiceRequest) error {
	r.ID = uuid.New().String()
	now := time.Now()
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO service_requests
		   (id, provider_id, requester_id, user_name, phone, address, lat, lng, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		r.ID, r.ProviderID, nullableID(r.RequesterID), r.Contact.Name, r.Contact.Phone,
		r.Contact.Address, r.Location.Lat, r.Location.Lng, StatusSent, now,
	)
	if err != nil {
		return err
	}
	r.Status = StatusSent
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*ServiceRequest, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT id, provider_id, COALESCE(requester_id, ''), user_name, phone, address,
		        lat, lng, status, created_at, updated_at
		 FROM service_requests WHERE id = $1`, id)

	var r ServiceRequest
	err := row.Scan(&r.ID, &r.ProviderID, &r.RequesterID, &r.Contact.Name, &r.Contact.Phone,
		&r.Contact.Address, &r.Location.Lat, &r.Location.Lng, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) ListByProvider(ctx context.Context, providerID int64) ([]ServiceRequest, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, provider_id, COALESCE(requester_id, ''), user_name, phone, address,
		        lat, lng, status, created_at, updated_at
		 FROM service_requests WHERE provider_id = $1 ORDER BY created_at DESC`, providerID)
	if err != nil {
		return nil, err
	}
	return scanRequests(rows)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]ServiceRequest, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, provider_id, COALESCE(requester_id, ''), user_name, phone, address,
		        lat, lng, status, created_at, updated_at
		 FROM service_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanRequests(rows)
}

// UpdateStatusIfBelow runs the monotonicity guard as one conditional
// UPDATE keyed on the current status, so concurrent writers race on the
// row, not on a read-modify-write in Go.
func (s *PostgresStore) UpdateStatusIfBelow(ctx context.Context, id string, target Status) (bool, Status, error) {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE service_requests
		 SET status = $2, updated_at = NOW()
		 WHERE id = $1
		   AND status NOT IN ('accepted', 'cancelled')
		   AND ($2 = 'cancelled' OR
		        CASE status WHEN 'sent' THEN 0 WHEN 'delivered' THEN 1 WHEN 'seen' THEN 2 ELSE 3 END
		      < CASE $2::text WHEN 'sent' THEN 0 WHEN 'delivered' THEN 1 WHEN 'seen' THEN 2 ELSE 3 END)`,
		id, target,
	)
	if err != nil {
		return false, "", err
	}
	if tag.RowsAffected() > 0 {
		return true, target, nil
	}

	// Rejected or unknown id: read back the untouched status to tell the
	// caller what it lost to.
	r, err := s.Get(ctx, id)
	if err != nil {
		return false, "", err
	}
	return false, r.Status, nil
}

func scanRequests(rows pgx.Rows) ([]ServiceRequest, error) {
	defer rows.Close()
	var items []ServiceRequest
	for rows.Next() {
		var r ServiceRequest
		if err := rows.Scan(&r.ID, &r.ProviderID, &r.RequesterID, &r.Contact.Name, &r.Contact.Phone,
			&r.Contact.Address, &r.Location.Lat, &r.Location.Lng, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func nullableID(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
