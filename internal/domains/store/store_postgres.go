package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"domaindesk/internal/domains/models"
	"domaindesk/internal/platform/postgres"
	"domaindesk/pkg/platform/sentinel"
)

const domainColumns = `id, name, slug, description, buy_now_price, min_offer_price,
	status, is_featured, industries, keywords, created_at, updated_at`

// PostgresStore persists domains and reads their storefront children.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateIfSlugAvailable(ctx context.Context, d *models.Domain) error {
	query := `
		INSERT INTO domains (` + domainColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (slug) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		d.ID, d.Name, d.Slug, d.Description, d.BuyNowPrice, d.MinOfferPrice,
		string(d.Status), d.IsFeatured, pq.Array(d.Industries), pq.Array(d.Keywords),
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert domain: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert domain: %w", err)
	}
	if n == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *PostgresStore) FindByIDOrSlug(ctx context.Context, key string) (*models.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE id = $1 OR slug = $1
		ORDER BY (id = $1) DESC LIMIT 1`
	d, err := scanDomain(s.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find domain: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []string) (map[string]*models.Domain, error) {
	out := make(map[string]*models.Domain, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+domainColumns+` FROM domains WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find domains: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		out[d.ID] = d
	}
	return out, rows.Err()
}

func (s *PostgresStore) List(ctx context.Context, offset, limit int) ([]*models.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	out := []*models.Domain{}
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM domains`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count domains: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Update(ctx context.Context, d *models.Domain) error {
	query := `
		UPDATE domains SET
			name = $2, slug = $3, description = $4, buy_now_price = $5, min_offer_price = $6,
			status = $7, is_featured = $8, industries = $9, keywords = $10, updated_at = $11
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		d.ID, d.Name, d.Slug, d.Description, d.BuyNowPrice, d.MinOfferPrice,
		string(d.Status), d.IsFeatured, pq.Array(d.Industries), pq.Array(d.Keywords), d.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update domain: %w", err)
	}
	return requireRow(res, "update domain")
}

// Delete removes the domain; children and offers cascade in the schema.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM domains WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete domain: %w", err)
	}
	return requireRow(res, "delete domain")
}

func (s *PostgresStore) ChildCounts(ctx context.Context, ids []string) (map[string]models.Counts, error) {
	out := make(map[string]models.Counts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `
		SELECT d.id,
			(SELECT COUNT(*) FROM domain_ideas i WHERE i.domain_id = d.id),
			(SELECT COUNT(*) FROM reports r WHERE r.domain_id = d.id),
			(SELECT COUNT(*) FROM branding_packages b WHERE b.domain_id = d.id)
		FROM domains d
		WHERE d.id = ANY($1)
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("count domain children: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var c models.Counts
		if err := rows.Scan(&id, &c.Ideas, &c.Reports, &c.BrandingPackages); err != nil {
			return nil, fmt.Errorf("scan domain counts: %w", err)
		}
		out[id] = c
	}
	return out, rows.Err()
}

func (s *PostgresStore) Children(ctx context.Context, id string) (*models.Children, error) {
	children := &models.Children{
		Ideas:            []models.DomainIdea{},
		Reports:          []models.Report{},
		BrandingPackages: []models.BrandingPackage{},
	}

	ideaRows, err := s.db.QueryContext(ctx,
		`SELECT id, domain_id, title, preview, content FROM domain_ideas WHERE domain_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer ideaRows.Close()
	for ideaRows.Next() {
		var idea models.DomainIdea
		if err := ideaRows.Scan(&idea.ID, &idea.DomainID, &idea.Title, &idea.Preview, &idea.Content); err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		children.Ideas = append(children.Ideas, idea)
	}
	if err := ideaRows.Err(); err != nil {
		return nil, err
	}

	reportRows, err := s.db.QueryContext(ctx,
		`SELECT id, domain_id, title, file_url, preview_text FROM reports WHERE domain_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer reportRows.Close()
	for reportRows.Next() {
		var r models.Report
		var preview sql.NullString
		if err := reportRows.Scan(&r.ID, &r.DomainID, &r.Title, &r.FileURL, &preview); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.PreviewText = nullString(preview)
		children.Reports = append(children.Reports, r)
	}
	if err := reportRows.Err(); err != nil {
		return nil, err
	}

	pkgRows, err := s.db.QueryContext(ctx,
		`SELECT id, domain_id, title, content, price FROM branding_packages WHERE domain_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list branding packages: %w", err)
	}
	defer pkgRows.Close()
	for pkgRows.Next() {
		var p models.BrandingPackage
		if err := pkgRows.Scan(&p.ID, &p.DomainID, &p.Title, &p.Content, &p.Price); err != nil {
			return nil, fmt.Errorf("scan branding package: %w", err)
		}
		children.BrandingPackages = append(children.BrandingPackages, p)
	}
	return children, pkgRows.Err()
}

func (s *PostgresStore) PriceTotals(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(buy_now_price), 0) + COALESCE(SUM(min_offer_price), 0) FROM domains`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum domain prices: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM domains WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check domain: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDomain(row rowScanner) (*models.Domain, error) {
	var (
		d           models.Domain
		description sql.NullString
		buyNow      sql.NullFloat64
		minOffer    sql.NullFloat64
		status      string
	)
	err := row.Scan(&d.ID, &d.Name, &d.Slug, &description, &buyNow, &minOffer,
		&status, &d.IsFeatured, pq.Array(&d.Industries), pq.Array(&d.Keywords),
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Status = models.Status(status)
	d.Description = nullString(description)
	d.BuyNowPrice = nullFloat(buyNow)
	d.MinOfferPrice = nullFloat(minOffer)
	if d.Industries == nil {
		d.Industries = []string{}
	}
	if d.Keywords == nil {
		d.Keywords = []string{}
	}
	return &d, nil
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

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
