package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/core/domain"
	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
	"github.com/cambix/cambix_backend/internal/models"
	"github.com/cambix/cambix_backend/internal/utils/mapping"
)

// Partial unique indexes guarding the opening exclusivity rules. They are
// the arbiters under concurrency; state checks inside the transaction only
// produce friendlier errors for the common case.
const (
	uqActiveOpeningPerWindow = "uq_openings_active_window"
	uqClosingPerOpening      = "uq_closings_opening"
	uqWindowIdentifier       = "uq_windows_house_identifier"
)

type PgxWindowRepository struct {
	BaseRepository
	floatRepo portsrepo.FloatRepositoryFacade
}

// newPgxWindowRepository creates a new repository for windows, openings and
// closings. The float repository is injected so opening seeds land in the
// same database transaction.
func newPgxWindowRepository(pool *pgxpool.Pool, floatRepo portsrepo.FloatRepositoryFacade) portsrepo.WindowRepositoryFacade {
	return &PgxWindowRepository{
		BaseRepository: BaseRepository{Pool: pool},
		floatRepo:      floatRepo,
	}
}

var _ portsrepo.WindowRepositoryFacade = (*PgxWindowRepository)(nil)

const windowColumns = `window_id, house_id, identifier, name, state, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanWindow(row pgx.Row) (models.TellerWindow, error) {
	var m models.TellerWindow
	err := row.Scan(
		&m.WindowID,
		&m.HouseID,
		&m.Identifier,
		&m.Name,
		&m.State,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveWindow persists a new window.
func (r *PgxWindowRepository) SaveWindow(ctx context.Context, window domain.TellerWindow) (*domain.TellerWindow, error) {
	m := mapping.ToModelWindow(window)
	query := `
		INSERT INTO teller_windows (house_id, identifier, name, state, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING window_id;
	`
	err := r.Pool.QueryRow(ctx, query,
		m.HouseID,
		m.Identifier,
		m.Name,
		m.State,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	).Scan(&window.WindowID)
	if err != nil {
		if isUniqueViolation(err, uqWindowIdentifier) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("window identifier %q already exists in this house", m.Identifier))
		}
		return nil, fmt.Errorf("failed to save window: %w", err)
	}
	return &window, nil
}

// UpdateWindow updates the descriptive fields of a window.
func (r *PgxWindowRepository) UpdateWindow(ctx context.Context, window domain.TellerWindow) error {
	query := `
		UPDATE teller_windows
		SET name = $2, last_updated_at = $3, last_updated_by = $4
		WHERE window_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, window.WindowID, window.Name, window.LastUpdatedAt, window.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update window %d: %w", window.WindowID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindWindowByID retrieves a window by its ID.
func (r *PgxWindowRepository) FindWindowByID(ctx context.Context, windowID int64) (*domain.TellerWindow, error) {
	query := `SELECT ` + windowColumns + ` FROM teller_windows WHERE window_id = $1;`
	m, err := scanWindow(r.Pool.QueryRow(ctx, query, windowID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find window %d: %w", windowID, err)
	}
	d := mapping.ToDomainWindow(m)
	return &d, nil
}

// FindWindowByIdentifier retrieves a window by its business identifier.
func (r *PgxWindowRepository) FindWindowByIdentifier(ctx context.Context, houseID int64, identifier string) (*domain.TellerWindow, error) {
	query := `SELECT ` + windowColumns + ` FROM teller_windows WHERE house_id = $1 AND identifier = $2;`
	m, err := scanWindow(r.Pool.QueryRow(ctx, query, houseID, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find window %q in house %d: %w", identifier, houseID, err)
	}
	d := mapping.ToDomainWindow(m)
	return &d, nil
}

// ListWindowsByHouse retrieves the windows of a house, optionally filtered by
// state.
func (r *PgxWindowRepository) ListWindowsByHouse(ctx context.Context, houseID int64, state *domain.WindowState) ([]domain.TellerWindow, error) {
	query := `
		SELECT ` + windowColumns + `
		FROM teller_windows
		WHERE house_id = $1 AND ($2::text IS NULL OR state = $2)
		ORDER BY identifier;
	`
	var stateArg *string
	if state != nil {
		s := string(*state)
		stateArg = &s
	}
	rows, err := r.Pool.Query(ctx, query, houseID, stateArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list windows for house %d: %w", houseID, err)
	}
	defer rows.Close()

	var ms []models.TellerWindow
	for rows.Next() {
		m, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan window row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating window rows: %w", err)
	}
	return mapping.ToDomainWindowSlice(ms), nil
}

// UpdateWindowState transitions a window with a compare-and-set on the
// current state. Zero rows affected means the window moved concurrently.
func (r *PgxWindowRepository) UpdateWindowState(ctx context.Context, windowID int64, from, to domain.WindowState, updatedBy int64, at time.Time) error {
	query := `
		UPDATE teller_windows
		SET state = $3, last_updated_at = $4, last_updated_by = $5
		WHERE window_id = $1 AND state = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, windowID, string(from), string(to), at, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to transition window %d from %s to %s: %w", windowID, from, to, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: window %d is not %s", apperrors.ErrInvalidState, windowID, from)
	}
	return nil
}

// SetWindowActive enables or disables a window.
func (r *PgxWindowRepository) SetWindowActive(ctx context.Context, windowID int64, active bool, updatedBy int64, at time.Time) error {
	query := `
		UPDATE teller_windows
		SET is_active = $2, last_updated_at = $3, last_updated_by = $4
		WHERE window_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, windowID, active, at, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to set window %d active=%t: %w", windowID, active, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const openingColumns = `opening_id, window_id, operator_id, opened_at, notes, active, created_at, created_by, last_updated_at, last_updated_by`

func scanOpening(row pgx.Row) (models.Opening, error) {
	var m models.Opening
	err := row.Scan(
		&m.OpeningID,
		&m.WindowID,
		&m.OperatorID,
		&m.OpenedAt,
		&m.Notes,
		&m.Active,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// CreateOpening records an opening with its float seed and moves the window
// to OPEN, all in one database transaction.
func (r *PgxWindowRepository) CreateOpening(ctx context.Context, opening domain.Opening) (*domain.Opening, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// Lock the window row and verify it can be opened.
	var state string
	var isActive bool
	err = tx.QueryRow(ctx, `
		SELECT state, is_active FROM teller_windows WHERE window_id = $1 FOR UPDATE;
	`, opening.WindowID).Scan(&state, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock window %d: %w", opening.WindowID, err)
	}
	if !isActive {
		return nil, fmt.Errorf("%w: window %d is disabled", apperrors.ErrInvalidState, opening.WindowID)
	}
	if state != string(domain.WindowClosed) {
		return nil, fmt.Errorf("%w: window %d is %s, expected CLOSED", apperrors.ErrInvalidState, opening.WindowID, state)
	}

	m := mapping.ToModelOpening(opening)
	err = tx.QueryRow(ctx, `
		INSERT INTO openings (window_id, operator_id, opened_at, notes, active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7, $8)
		RETURNING opening_id;
	`, m.WindowID, m.OperatorID, m.OpenedAt, m.Notes, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy).Scan(&opening.OpeningID)
	if err != nil {
		if isUniqueViolation(err, uqActiveOpeningPerWindow) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("window %d already has an active opening", opening.WindowID))
		}
		return nil, fmt.Errorf("failed to insert opening for window %d: %w", opening.WindowID, err)
	}

	batch := &pgx.Batch{}
	for _, entry := range opening.FloatEntries {
		batch.Queue(`
			INSERT INTO float_entries (opening_id, currency_id, amount, seed_amount)
			VALUES ($1, $2, $3, $3);
		`, opening.OpeningID, entry.CurrencyID, entry.Amount)
	}
	br := tx.SendBatch(ctx, batch)
	for range opening.FloatEntries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return nil, fmt.Errorf("failed to seed float for opening %d: %w", opening.OpeningID, err)
		}
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to close float seed batch: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE teller_windows
		SET state = $2, last_updated_at = $3, last_updated_by = $4
		WHERE window_id = $1;
	`, opening.WindowID, string(domain.WindowOpen), opening.OpenedAt, opening.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to open window %d: %w", opening.WindowID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	opening.Active = true
	for i := range opening.FloatEntries {
		opening.FloatEntries[i].OpeningID = opening.OpeningID
	}
	return &opening, nil
}

func (r *PgxWindowRepository) findOpening(ctx context.Context, query string, args ...any) (*domain.Opening, error) {
	m, err := scanOpening(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find opening: %w", err)
	}
	d := mapping.ToDomainOpening(m)
	entries, err := r.floatRepo.ListFloatEntries(ctx, d.OpeningID)
	if err != nil {
		return nil, err
	}
	d.FloatEntries = entries
	return &d, nil
}

// FindOpeningByID retrieves an opening with its float entries.
func (r *PgxWindowRepository) FindOpeningByID(ctx context.Context, openingID int64) (*domain.Opening, error) {
	return r.findOpening(ctx, `SELECT `+openingColumns+` FROM openings WHERE opening_id = $1;`, openingID)
}

// FindActiveOpening retrieves the active opening of a window.
func (r *PgxWindowRepository) FindActiveOpening(ctx context.Context, windowID int64) (*domain.Opening, error) {
	return r.findOpening(ctx, `SELECT `+openingColumns+` FROM openings WHERE window_id = $1 AND active = TRUE;`, windowID)
}

// FindActiveOpeningByOperator retrieves the active opening held by an
// operator.
func (r *PgxWindowRepository) FindActiveOpeningByOperator(ctx context.Context, operatorID int64) (*domain.Opening, error) {
	return r.findOpening(ctx, `SELECT `+openingColumns+` FROM openings WHERE operator_id = $1 AND active = TRUE;`, operatorID)
}

// ListOpeningsByWindow retrieves past and present openings of a window,
// newest first. Float entries are not attached.
func (r *PgxWindowRepository) ListOpeningsByWindow(ctx context.Context, windowID int64, from, to *time.Time) ([]domain.Opening, error) {
	query := `
		SELECT ` + openingColumns + `
		FROM openings
		WHERE window_id = $1
		  AND ($2::timestamptz IS NULL OR opened_at >= $2)
		  AND ($3::timestamptz IS NULL OR opened_at <= $3)
		ORDER BY opened_at DESC, opening_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, windowID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list openings for window %d: %w", windowID, err)
	}
	defer rows.Close()

	var ms []models.Opening
	for rows.Next() {
		m, err := scanOpening(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opening row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating opening rows: %w", err)
	}
	return mapping.ToDomainOpeningSlice(ms), nil
}

const closingColumns = `closing_id, opening_id, window_id, operator_id, closed_at, total_profit, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanClosing(row pgx.Row) (models.Closing, error) {
	var m models.Closing
	err := row.Scan(
		&m.ClosingID,
		&m.OpeningID,
		&m.WindowID,
		&m.OperatorID,
		&m.ClosedAt,
		&m.TotalProfit,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// CreateClosing records a closing with its entries, deactivates the opening
// and moves the window to CLOSED, all in one database transaction.
func (r *PgxWindowRepository) CreateClosing(ctx context.Context, closing domain.Closing) (*domain.Closing, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// Lock the opening and verify it is still the active one.
	var active bool
	err = tx.QueryRow(ctx, `
		SELECT active FROM openings WHERE opening_id = $1 FOR UPDATE;
	`, closing.OpeningID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock opening %d: %w", closing.OpeningID, err)
	}
	if !active {
		return nil, fmt.Errorf("%w: opening %d is already closed", apperrors.ErrInvalidState, closing.OpeningID)
	}

	m := mapping.ToModelClosing(closing)
	err = tx.QueryRow(ctx, `
		INSERT INTO closings (opening_id, window_id, operator_id, closed_at, total_profit, notes, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING closing_id;
	`, m.OpeningID, m.WindowID, m.OperatorID, m.ClosedAt, m.TotalProfit, m.Notes, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy).Scan(&closing.ClosingID)
	if err != nil {
		if isUniqueViolation(err, uqClosingPerOpening) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("opening %d already has a closing", closing.OpeningID))
		}
		return nil, fmt.Errorf("failed to insert closing for opening %d: %w", closing.OpeningID, err)
	}

	batch := &pgx.Batch{}
	for _, entry := range closing.Entries {
		batch.Queue(`
			INSERT INTO closing_entries (closing_id, currency_id, expected_amount, physical_amount, discrepancy_amount, discrepancy_percent, confirmed, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`, closing.ClosingID, entry.CurrencyID, entry.ExpectedAmount, entry.PhysicalAmount, entry.DiscrepancyAmount, entry.DiscrepancyPercent, entry.Confirmed, entry.Note)
	}
	br := tx.SendBatch(ctx, batch)
	for range closing.Entries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return nil, fmt.Errorf("failed to insert closing entries for closing %d: %w", closing.ClosingID, err)
		}
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to close closing entry batch: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE openings
		SET active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE opening_id = $1;
	`, closing.OpeningID, closing.ClosedAt, closing.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate opening %d: %w", closing.OpeningID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE teller_windows
		SET state = $2, last_updated_at = $3, last_updated_by = $4
		WHERE window_id = $1;
	`, closing.WindowID, string(domain.WindowClosed), closing.ClosedAt, closing.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to close window %d: %w", closing.WindowID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	for i := range closing.Entries {
		closing.Entries[i].ClosingID = closing.ClosingID
	}
	return &closing, nil
}

func (r *PgxWindowRepository) attachClosingEntries(ctx context.Context, d *domain.Closing) error {
	rows, err := r.Pool.Query(ctx, `
		SELECT entry_id, closing_id, currency_id, expected_amount, physical_amount, discrepancy_amount, discrepancy_percent, confirmed, note
		FROM closing_entries
		WHERE closing_id = $1
		ORDER BY currency_id;
	`, d.ClosingID)
	if err != nil {
		return fmt.Errorf("failed to list closing entries for closing %d: %w", d.ClosingID, err)
	}
	defer rows.Close()

	var ms []models.ClosingEntry
	for rows.Next() {
		var m models.ClosingEntry
		if err := rows.Scan(
			&m.EntryID,
			&m.ClosingID,
			&m.CurrencyID,
			&m.ExpectedAmount,
			&m.PhysicalAmount,
			&m.DiscrepancyAmount,
			&m.DiscrepancyPercent,
			&m.Confirmed,
			&m.Note,
		); err != nil {
			return fmt.Errorf("failed to scan closing entry row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating closing entry rows: %w", err)
	}
	d.Entries = mapping.ToDomainClosingEntrySlice(ms)
	return nil
}

func (r *PgxWindowRepository) findClosing(ctx context.Context, query string, args ...any) (*domain.Closing, error) {
	m, err := scanClosing(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find closing: %w", err)
	}
	d := mapping.ToDomainClosing(m)
	if err := r.attachClosingEntries(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// FindClosingByID retrieves a closing with its entries.
func (r *PgxWindowRepository) FindClosingByID(ctx context.Context, closingID int64) (*domain.Closing, error) {
	return r.findClosing(ctx, `SELECT `+closingColumns+` FROM closings WHERE closing_id = $1;`, closingID)
}

// FindClosingByOpening retrieves the closing recorded for an opening.
func (r *PgxWindowRepository) FindClosingByOpening(ctx context.Context, openingID int64) (*domain.Closing, error) {
	return r.findClosing(ctx, `SELECT `+closingColumns+` FROM closings WHERE opening_id = $1;`, openingID)
}

// ListClosingsByWindow retrieves the closings of a window, newest first.
// Entries are not attached.
func (r *PgxWindowRepository) ListClosingsByWindow(ctx context.Context, windowID int64, from, to *time.Time) ([]domain.Closing, error) {
	query := `
		SELECT ` + closingColumns + `
		FROM closings
		WHERE window_id = $1
		  AND ($2::timestamptz IS NULL OR closed_at >= $2)
		  AND ($3::timestamptz IS NULL OR closed_at <= $3)
		ORDER BY closed_at DESC, closing_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, windowID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list closings for window %d: %w", windowID, err)
	}
	defer rows.Close()

	var ms []models.Closing
	for rows.Next() {
		m, err := scanClosing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan closing row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating closing rows: %w", err)
	}
	return mapping.ToDomainClosingSlice(ms), nil
}
