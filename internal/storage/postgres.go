package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/grachmannico95/shopease-be/internal/config"
	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/shopspring/decimal"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// PostgresStore implements domain.Repository on database/sql with the pgx
// driver.
type PostgresStore struct {
	DB *sql.DB
}

var _ domain.Repository = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

func ConnectDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// RunMigrations applies the embedded migrations in name order, each in its
// own transaction, skipping the ones already recorded. It returns the names
// it applied.
func RunMigrations(ctx context.Context, db *sql.DB) ([]string, error) {
	if _, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS schema_migrations (
            version     TEXT PRIMARY KEY,
            applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	var applied []string
	for _, name := range names {
		version := strings.TrimPrefix(name, "migrations/")

		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&exists)
		if err != nil {
			return applied, fmt.Errorf("failed to check migration %s: %w", version, err)
		}
		if exists {
			continue
		}

		content, err := migrationFiles.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", version, err)
		}

		if err := applyMigration(ctx, db, version, string(content)); err != nil {
			return applied, err
		}
		applied = append(applied, version)
	}
	return applied, nil
}

func applyMigration(ctx context.Context, db *sql.DB, version, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, content); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", version, err)
	}
	return tx.Commit()
}

func (s *PostgresStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// likePattern builds an ILIKE "contains" pattern with the wildcards in name
// escaped.
func likePattern(name string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(name)) + "%"
}

func (s *PostgresStore) findID(ctx context.Context, query string, args ...any) (string, error) {
	var id string
	err := s.DB.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) FindStoreIDBySlug(ctx context.Context, slug string) (string, error) {
	return s.findID(ctx, `
        SELECT id FROM stores
        WHERE slug ILIKE $1
        ORDER BY lower(slug) = lower($2) DESC, created_at
        LIMIT 1`, likePattern(slug), strings.TrimSpace(slug))
}

func (s *PostgresStore) FindSectionID(ctx context.Context, storeID, name string) (string, error) {
	return s.findID(ctx, `
        SELECT id FROM store_sections
        WHERE store_id = $1 AND name ILIKE $2
        ORDER BY lower(name) = lower($3) DESC, created_at
        LIMIT 1`, storeID, likePattern(name), strings.TrimSpace(name))
}

func (s *PostgresStore) FindCategoryID(ctx context.Context, name string) (string, error) {
	return s.findID(ctx, `
        SELECT id FROM categories
        WHERE name ILIKE $1
        ORDER BY lower(name) = lower($2) DESC, name
        LIMIT 1`, likePattern(name), strings.TrimSpace(name))
}

const offerColumns = `id, store_id, section_id, category_id, title, description,
        original_price, offer_price, discount_percentage, image_url,
        valid_from, valid_until, is_active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(r rowScanner) (domain.Offer, error) {
	var (
		o             domain.Offer
		sectionID     sql.Null[string]
		categoryID    sql.Null[string]
		originalPrice decimal.NullDecimal
		offerPrice    decimal.NullDecimal
		discount      sql.Null[int]
		validFrom     sql.Null[domain.Date]
		validUntil    sql.Null[domain.Date]
	)

	err := r.Scan(
		&o.ID, &o.StoreID, &sectionID, &categoryID, &o.Title, &o.Description,
		&originalPrice, &offerPrice, &discount, &o.ImageURL,
		&validFrom, &validUntil, &o.IsActive, &o.CreatedAt,
	)
	if err != nil {
		return domain.Offer{}, err
	}

	o.SectionID = nullPtr(sectionID)
	o.CategoryID = nullPtr(categoryID)
	o.DiscountPercentage = nullPtr(discount)
	o.ValidFrom = nullPtr(validFrom)
	o.ValidUntil = nullPtr(validUntil)
	if originalPrice.Valid {
		o.OriginalPrice = &originalPrice.Decimal
	}
	if offerPrice.Valid {
		o.OfferPrice = &offerPrice.Decimal
	}
	return o, nil
}

func nullPtr[T any](n sql.Null[T]) *T {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}

func (s *PostgresStore) ListOffers(ctx context.Context, filter domain.OfferFilter) ([]domain.Offer, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.StoreID != "" {
		add("store_id = $%d", filter.StoreID)
	}
	if filter.SectionID != "" {
		add("section_id = $%d", filter.SectionID)
	}
	if filter.CategoryID != "" {
		add("category_id = $%d", filter.CategoryID)
	}

	query := `SELECT ` + offerColumns + ` FROM offers`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	offers := []domain.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (s *PostgresStore) GetOffer(ctx context.Context, id string) (*domain.Offer, error) {
	o, err := scanOffer(s.DB.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &o, nil
}

// InsertOffers writes the batch in one transaction. The returned
// *domain.StorageError carries the database message unchanged.
func (s *PostgresStore) InsertOffers(ctx context.Context, offers []domain.Offer) ([]domain.Offer, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, &domain.StorageError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO offers (id, store_id, section_id, category_id, title, description,
            original_price, offer_price, discount_percentage, image_url,
            valid_from, valid_until, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING created_at`)
	if err != nil {
		return nil, &domain.StorageError{Op: "prepare insert offers", Err: err}
	}
	defer stmt.Close()

	inserted := make([]domain.Offer, len(offers))
	for i, o := range offers {
		o.ID = domain.NewID()
		err := stmt.QueryRowContext(ctx,
			o.ID, o.StoreID, o.SectionID, o.CategoryID, o.Title, o.Description,
			o.OriginalPrice, o.OfferPrice, o.DiscountPercentage, o.ImageURL,
			o.ValidFrom, o.ValidUntil, o.IsActive,
		).Scan(&o.CreatedAt)
		if err != nil {
			return nil, &domain.StorageError{Op: "insert offers", Err: err}
		}
		inserted[i] = o
	}

	if err := tx.Commit(); err != nil {
		return nil, &domain.StorageError{Op: "commit", Err: err}
	}
	return inserted, nil
}

func (s *PostgresStore) UpdateOffer(ctx context.Context, id string, patch domain.OfferPatch) (*domain.Offer, error) {
	if patch.IsEmpty() {
		return s.GetOffer(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.SectionID != nil {
		set("section_id", *patch.SectionID)
	}
	if patch.CategoryID != nil {
		set("category_id", *patch.CategoryID)
	}
	if patch.OriginalPrice != nil {
		set("original_price", *patch.OriginalPrice)
	}
	if patch.OfferPrice != nil {
		set("offer_price", *patch.OfferPrice)
	}
	if patch.DiscountPercentage != nil {
		set("discount_percentage", *patch.DiscountPercentage)
	}
	if patch.ImageURL != nil {
		set("image_url", *patch.ImageURL)
	}
	if patch.ValidFrom != nil {
		set("valid_from", *patch.ValidFrom)
	}
	if patch.ValidUntil != nil {
		set("valid_until", *patch.ValidUntil)
	}
	if patch.IsActive != nil {
		set("is_active", *patch.IsActive)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE offers SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), offerColumns)

	o, err := scanOffer(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "update offer", Err: err}
	}
	return &o, nil
}

func (s *PostgresStore) DeleteOffer(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeactivateExpiredOffers(ctx context.Context, today domain.Date) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE offers SET is_active = FALSE WHERE is_active = TRUE AND valid_until < $1`, today)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired offers: %w", err)
	}
	return res.RowsAffected()
}

func (s *PostgresStore) InsertSales(ctx context.Context, sales []domain.Sale) (int, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, &domain.StorageError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO sales_data (id, store_id, sale_date, total_amount, customer_count, items_sold)
        VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return 0, &domain.StorageError{Op: "prepare insert sales", Err: err}
	}
	defer stmt.Close()

	for _, sale := range sales {
		_, err := stmt.ExecContext(ctx,
			domain.NewID(), sale.StoreID, sale.SaleDate, sale.TotalAmount, sale.CustomerCount, sale.ItemsSold)
		if err != nil {
			return 0, &domain.StorageError{Op: "insert sales", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &domain.StorageError{Op: "commit", Err: err}
	}
	return len(sales), nil
}

func (s *PostgresStore) SalesTotals(ctx context.Context, storeID string, r domain.DateRange) (domain.SalesTotals, error) {
	var totals domain.SalesTotals
	err := s.DB.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(customer_count), 0), COALESCE(SUM(total_amount), 0)
        FROM sales_data
        WHERE store_id = $1
          AND ($2::date IS NULL OR sale_date >= $2::date)
          AND ($3::date IS NULL OR sale_date <= $3::date)`,
		storeID, r.From, r.To,
	).Scan(&totals.Customers, &totals.TotalAmount)
	if err != nil {
		return domain.SalesTotals{}, fmt.Errorf("failed to sum sales: %w", err)
	}
	return totals, nil
}

func (s *PostgresStore) ListStores(ctx context.Context, search string) ([]domain.Store, error) {
	search = strings.TrimSpace(search)
	rows, err := s.DB.QueryContext(ctx, `
        SELECT id, name, slug, created_at FROM stores
        WHERE $1 = '' OR name ILIKE $2 OR slug ILIKE $2
        ORDER BY name`, search, likePattern(search))
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	stores := []domain.Store{}
	for rows.Next() {
		var st domain.Store
		if err := rows.Scan(&st.ID, &st.Name, &st.Slug, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, st)
	}
	return stores, rows.Err()
}

func (s *PostgresStore) ListSections(ctx context.Context, storeID string) ([]domain.Section, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT id, store_id, name, created_at FROM store_sections
        WHERE store_id = $1
        ORDER BY name`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	sections := []domain.Section{}
	for rows.Next() {
		var sec domain.Section
		if err := rows.Scan(&sec.ID, &sec.StoreID, &sec.Name, &sec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *PostgresStore) ListFeedbackQuestions(ctx context.Context, storeID string) ([]domain.FeedbackQuestion, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT id, store_id, question, question_type, order_index, is_active
        FROM feedback_questions
        WHERE store_id = $1 AND is_active = TRUE
        ORDER BY order_index`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.FeedbackQuestion{}
	for rows.Next() {
		var q domain.FeedbackQuestion
		if err := rows.Scan(&q.ID, &q.StoreID, &q.Question, &q.QuestionType, &q.OrderIndex, &q.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan feedback question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *PostgresStore) InsertFeedbackResponses(ctx context.Context, responses []domain.FeedbackResponse) (int, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, &domain.StorageError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO feedback_responses (id, store_id, user_id, question_id, rating, response_text)
        VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return 0, &domain.StorageError{Op: "prepare insert feedback", Err: err}
	}
	defer stmt.Close()

	for _, r := range responses {
		_, err := stmt.ExecContext(ctx, domain.NewID(), r.StoreID, r.UserID, r.QuestionID, r.Rating, r.ResponseText)
		if err != nil {
			return 0, &domain.StorageError{Op: "insert feedback", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &domain.StorageError{Op: "commit", Err: err}
	}
	return len(responses), nil
}

func (s *PostgresStore) FeedbackSummary(ctx context.Context, storeID string, r domain.DateRange) ([]domain.FeedbackSummaryItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT q.id, q.question, COUNT(fr.id), AVG(fr.rating)::float8
        FROM feedback_questions q
        LEFT JOIN feedback_responses fr
          ON fr.question_id = q.id
         AND ($2::date IS NULL OR fr.created_at >= $2::date)
         AND ($3::date IS NULL OR fr.created_at < $3::date + 1)
        WHERE q.store_id = $1
        GROUP BY q.id, q.question, q.order_index
        ORDER BY q.order_index`, storeID, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize feedback: %w", err)
	}
	defer rows.Close()

	items := []domain.FeedbackSummaryItem{}
	for rows.Next() {
		var (
			item domain.FeedbackSummaryItem
			avg  sql.Null[float64]
		)
		if err := rows.Scan(&item.QuestionID, &item.Question, &item.Responses, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan feedback summary: %w", err)
		}
		item.AverageRating = nullPtr(avg)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) RecordScan(ctx context.Context, scan domain.QRScan) error {
	_, err := s.DB.ExecContext(ctx, `
        INSERT INTO qr_scans (id, store_id, section_id, user_id, scan_type, ip_address, user_agent, scanned_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO NOTHING`,
		scan.ID, scan.StoreID, scan.SectionID, scan.UserID,
		scan.ScanType, scan.IPAddress, scan.UserAgent, scan.ScannedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record scan: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountScans(ctx context.Context, storeID string, r domain.DateRange) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM qr_scans
        WHERE store_id = $1
          AND ($2::date IS NULL OR scanned_at >= $2::date)
          AND ($3::date IS NULL OR scanned_at < $3::date + 1)`,
		storeID, r.From, r.To,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count scans: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) DailyScans(ctx context.Context, storeID string, r domain.DateRange) ([]domain.DailyScanCount, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT (scanned_at AT TIME ZONE 'UTC')::date AS scan_date, COUNT(*)
        FROM qr_scans
        WHERE store_id = $1
          AND ($2::date IS NULL OR scanned_at >= $2::date)
          AND ($3::date IS NULL OR scanned_at < $3::date + 1)
        GROUP BY scan_date
        ORDER BY scan_date`, storeID, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("failed to count daily scans: %w", err)
	}
	defer rows.Close()

	days := []domain.DailyScanCount{}
	for rows.Next() {
		var d domain.DailyScanCount
		if err := rows.Scan(&d.Day, &d.Scans); err != nil {
			return nil, fmt.Errorf("failed to scan daily scans: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
