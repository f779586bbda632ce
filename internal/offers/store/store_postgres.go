package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	domainModels "domaindesk/internal/domains/models"
	"domaindesk/internal/offers/models"
	"domaindesk/internal/platform/postgres"
	"domaindesk/pkg/platform/sentinel"
)

const offerColumns = `id, domain_id, name, email, phone, amount, status, notes, created_at`

// PostgresStore persists offers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, o *models.Offer) error {
	query := `INSERT INTO offers (` + offerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.db.ExecContext(ctx, query,
		o.ID, o.DomainID, o.Name, o.Email, o.Phone, o.Amount, string(o.Status), o.Notes, o.CreatedAt)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err):
			return sentinel.ErrAlreadyUsed
		case postgres.IsForeignKeyViolation(err):
			return sentinel.ErrInvalidReference
		}
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Offer, error) {
	o, err := scanOffer(s.db.QueryRowContext(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find offer: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []string) (map[string]*models.Offer, error) {
	out := make(map[string]*models.Offer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	offers, err := s.query(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, o := range offers {
		out[o.ID] = o
	}
	return out, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Offer, error) {
	return s.query(ctx, `SELECT `+offerColumns+` FROM offers ORDER BY created_at DESC, id DESC`)
}

func (s *PostgresStore) Update(ctx context.Context, o *models.Offer) error {
	res, err := s.db.ExecContext(ctx, `UPDATE offers SET status = $2, notes = $3 WHERE id = $1`,
		o.ID, string(o.Status), o.Notes)
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountByDomains(ctx context.Context, domainIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(domainIDs))
	if len(domainIDs) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT domain_id, COUNT(*) FROM offers WHERE domain_id = ANY($1) GROUP BY domain_id`, pq.Array(domainIDs))
	if err != nil {
		return nil, fmt.Errorf("count offers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan offer count: %w", err)
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListForDomain(ctx context.Context, domainID string) ([]domainModels.OfferBrief, error) {
	offers, err := s.query(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE domain_id = $1 ORDER BY created_at DESC, id DESC`, domainID)
	if err != nil {
		return nil, err
	}
	out := make([]domainModels.OfferBrief, len(offers))
	for i, o := range offers {
		out[i] = o.Brief()
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count offers: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offers WHERE status = $1`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count offers by status: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Offer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()
	out := []*models.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (*models.Offer, error) {
	var o models.Offer
	var status string
	var phone, notes sql.NullString
	if err := row.Scan(&o.ID, &o.DomainID, &o.Name, &o.Email, &phone, &o.Amount, &status, &notes, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = models.Status(status)
	if phone.Valid {
		o.Phone = &phone.String
	}
	if notes.Valid {
		o.Notes = &notes.String
	}
	return &o, nil
}
