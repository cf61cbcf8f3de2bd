package catalog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource loads the shops table into provider records.
type PostgresSource struct {
	Pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{Pool: pool}
}

func (s *PostgresSource) FetchProviders(ctx context.Context) ([]Provider, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, owner_id, name, service, phone, address, lat, lng,
		        rating, reviews, COALESCE(open_time, ''), COALESCE(close_time, ''),
		        COALESCE(description, ''), created_at
		 FROM shops ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Category, &p.Phone, &p.Address,
			&p.Location.Lat, &p.Location.Lng, &p.Rating, &p.ReviewCount,
			&p.OpenTime, &p.CloseTime, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// Insert persists a new provider record and returns the assigned id.
func (s *PostgresSource) Insert(ctx context.Context, p Provider) (int64, error) {
	var id int64
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO shops (owner_id, name, service, phone, address, lat, lng,
		                    rating, reviews, open_time, close_time, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id`,
		p.OwnerID, p.Name, p.Category, p.Phone, p.Address,
		p.Location.Lat, p.Location.Lng, p.Rating, p.ReviewCount,
		nullable(p.OpenTime), nullable(p.CloseTime), p.Description, time.Now(),
	).Scan(&id)
	return id, err
}

// Update rewrites an existing provider record. It reports whether a row
// matched the id.
func (s *PostgresSource) Update(ctx context.Context, p Provider) (bool, error) {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE shops SET name = $2, service = $3, phone = $4, address = $5,
		        lat = $6, lng = $7, rating = $8, reviews = $9,
		        open_time = $10, close_time = $11, description = $12
		 WHERE id = $1`,
		p.ID, p.Name, p.Category, p.Phone, p.Address,
		p.Location.Lat, p.Location.Lng, p.Rating, p.ReviewCount,
		nullable(p.OpenTime), nullable(p.CloseTime), p.Description,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// OwnerOf returns the owner id of a shop, or "" when the shop is unknown.
func (s *PostgresSource) OwnerOf(ctx context.Context, id int64) (string, error) {
	var owner string
	err := s.Pool.QueryRow(ctx, `SELECT owner_id FROM shops WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		return "", err
	}
	return owner, nil
}

// Open/close times are optional; an empty string means "unknown hours".
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
