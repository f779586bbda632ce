package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"domaindesk/internal/consultations/models"
	"domaindesk/internal/platform/postgres"
	"domaindesk/pkg/platform/sentinel"
)

const consultationColumns = `id, offer_id, scheduled, completed, follow_up_delivered, notes,
	deck_writing, product_build, referrals, investor_intros, revenue_share, created_at, updated_at`

// PostgresStore persists consultations. The unique index on offer_id keeps
// one consultation per offer.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateIfOfferFree(ctx context.Context, c *models.Consultation) error {
	query := `
		INSERT INTO consultations (` + consultationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (offer_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		c.ID, c.OfferID, c.Scheduled, c.Completed, c.FollowUpDelivered, c.Notes,
		c.DeckWriting, c.ProductBuild, c.Referrals, c.InvestorIntros, c.RevenueShare,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrInvalidReference
		}
		return fmt.Errorf("insert consultation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert consultation: %w", err)
	}
	if n == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Consultation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+consultationColumns+` FROM consultations WHERE id = $1`, id)
	c, err := scanConsultation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find consultation: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindByOffers(ctx context.Context, offerIDs []string) (map[string]*models.Consultation, error) {
	out := make(map[string]*models.Consultation, len(offerIDs))
	if len(offerIDs) == 0 {
		return out, nil
	}
	list, err := s.query(ctx, `SELECT `+consultationColumns+` FROM consultations WHERE offer_id = ANY($1)`, pq.Array(offerIDs))
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		out[c.OfferID] = c
	}
	return out, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Consultation, error) {
	return s.query(ctx, `SELECT `+consultationColumns+` FROM consultations`)
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Consultation) error {
	query := `
		UPDATE consultations SET
			scheduled = $2, completed = $3, follow_up_delivered = $4, notes = $5,
			deck_writing = $6, product_build = $7, referrals = $8, investor_intros = $9,
			revenue_share = $10, updated_at = $11
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		c.ID, c.Scheduled, c.Completed, c.FollowUpDelivered, c.Notes,
		c.DeckWriting, c.ProductBuild, c.Referrals, c.InvestorIntros, c.RevenueShare, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update consultation: %w", err)
	}
	return requireRow(res, "update consultation")
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM consultations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete consultation: %w", err)
	}
	return requireRow(res, "delete consultation")
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Consultation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list consultations: %w", err)
	}
	defer rows.Close()
	out := []*models.Consultation{}
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consultation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsultation(row rowScanner) (*models.Consultation, error) {
	var c models.Consultation
	var notes sql.NullString
	var share sql.NullFloat64
	err := row.Scan(&c.ID, &c.OfferID, &c.Scheduled, &c.Completed, &c.FollowUpDelivered, &notes,
		&c.DeckWriting, &c.ProductBuild, &c.Referrals, &c.InvestorIntros, &share, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		c.Notes = &notes.String
	}
	if share.Valid {
		c.RevenueShare = &share.Float64
	}
	return &c, nil
}
