package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	"events-venues/data/models"
)

// DBRepo is a Store backed by a SQL database.
type DBRepo interface {
	Store
	Connection() *sql.DB
	RunMigrations(dbName string) error
}

type SqlRepo struct {
	DB *sql.DB
}

var _ DBRepo = (*SqlRepo)(nil)

func (sr *SqlRepo) Connection() *sql.DB {
	return sr.DB
}

// create inserts a model into the corresponding db table and returns id of the
// newly created record.
func (sr *SqlRepo) create(ctx context.Context, m models.Model) (id int64, err error) {
	vals := models.GetValsFromModel(m)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		m.TableName(),
		strings.Join(models.GetColumnNames(m, true), ", "),
		placeholders(len(vals)))

	stmt, err := sr.DB.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("error preparing query: %w", err)
	}
	defer stmt.Close()

	if err := stmt.QueryRowContext(ctx, vals...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error executing query: %w", translate(err, m))
	}
	return id, nil
}

// update overwrites every writable column of the record with m's values.
func (sr *SqlRepo) update(ctx context.Context, m models.Model, kind models.Kind) error {
	columns := models.GetColumnNames(m, true)
	setClause := make([]string, len(columns))
	for i, c := range columns {
		setClause[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		m.TableName(),
		strings.Join(setClause, ", "),
		len(columns)+1)

	vals := append(models.GetValsFromModel(m), m.GetID())
	return translate(sr.execOne(ctx, query, vals, kind, m.GetID()), m)
}

func (sr *SqlRepo) delete(ctx context.Context, m models.Model, kind models.Kind, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", m.TableName())
	return sr.execOne(ctx, query, []interface{}{id}, kind, id)
}

// execOne runs a statement that must touch exactly one row.
func (sr *SqlRepo) execOne(ctx context.Context, query string, vals []interface{}, kind models.Kind, id int64) error {
	stmt, err := sr.DB.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("error preparing query: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, vals...)
	if err != nil {
		if kind == models.KindVenue && isForeignKeyViolation(err) {
			return &models.ConflictError{VenueID: id}
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return &models.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// getByID scans the record with the given id into m, which must be a pointer.
func (sr *SqlRepo) getByID(ctx context.Context, m models.Model, kind models.Kind, id int64) error {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1",
		strings.Join(models.GetColumnNames(m, false), ", "), m.TableName())
	r := sr.DB.QueryRowContext(ctx, query, id)
	if err := models.ScanRowToModel(m, r); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.NotFoundError{Kind: kind, ID: id}
		}
		return fmt.Errorf("error scanning %s %d: %w", kind, id, err)
	}
	return nil
}

// list returns every record of m's table as a pointer to a slice of models.
func (sr *SqlRepo) list(ctx context.Context, m models.Model) (interface{}, error) {
	var count int
	if err := sr.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", m.TableName())).Scan(&count); err != nil {
		return nil, fmt.Errorf("error counting %s: %w", m.TableName(), err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id",
		strings.Join(models.GetColumnNames(m, false), ", "), m.TableName())
	rows, err := sr.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", m.TableName(), err)
	}
	defer rows.Close()

	return models.ScanRowsToSliceOfModels(m, rows, count)
}

func (sr *SqlRepo) exists(ctx context.Context, m models.Model, id int64) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", m.TableName())
	if err := sr.DB.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking %s %d: %w", m.TableName(), id, err)
	}
	return exists, nil
}

func (sr *SqlRepo) ListEvents(ctx context.Context) ([]models.Event, error) {
	out, err := sr.list(ctx, models.Event{})
	if err != nil {
		return nil, err
	}
	return *out.(*[]models.Event), nil
}

func (sr *SqlRepo) ListVenues(ctx context.Context) ([]models.Venue, error) {
	out, err := sr.list(ctx, models.Venue{})
	if err != nil {
		return nil, err
	}
	return *out.(*[]models.Venue), nil
}

func (sr *SqlRepo) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	var e models.Event
	if err := sr.getByID(ctx, &e, models.KindEvent, id); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (sr *SqlRepo) GetVenue(ctx context.Context, id int64) (models.Venue, error) {
	var v models.Venue
	if err := sr.getByID(ctx, &v, models.KindVenue, id); err != nil {
		return models.Venue{}, err
	}
	return v, nil
}

func (sr *SqlRepo) ExistsEvent(ctx context.Context, id int64) (bool, error) {
	return sr.exists(ctx, models.Event{}, id)
}

func (sr *SqlRepo) ExistsVenue(ctx context.Context, id int64) (bool, error) {
	return sr.exists(ctx, models.Venue{}, id)
}

func (sr *SqlRepo) CreateEvent(ctx context.Context, e models.Event) (int64, error) {
	return sr.create(ctx, e)
}

func (sr *SqlRepo) CreateVenue(ctx context.Context, v models.Venue) (int64, error) {
	return sr.create(ctx, v)
}

func (sr *SqlRepo) UpdateEvent(ctx context.Context, e models.Event) error {
	return sr.update(ctx, e, models.KindEvent)
}

func (sr *SqlRepo) UpdateVenue(ctx context.Context, v models.Venue) error {
	return sr.update(ctx, v, models.KindVenue)
}

func (sr *SqlRepo) DeleteEvent(ctx context.Context, id int64) error {
	return sr.delete(ctx, models.Event{}, models.KindEvent, id)
}

// DeleteVenue relies on the events.venue_id foreign key to refuse deleting a
// venue that still has events.
func (sr *SqlRepo) DeleteVenue(ctx context.Context, id int64) error {
	return sr.delete(ctx, models.Venue{}, models.KindVenue, id)
}

func (sr *SqlRepo) CountEventsForVenue(ctx context.Context, venueID int64) (int, error) {
	var n int
	if err := sr.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE venue_id = $1", venueID).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting events for venue %d: %w", venueID, err)
	}
	return n, nil
}

func (sr *SqlRepo) CountVenues(ctx context.Context) (int, error) {
	var n int
	if err := sr.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM venues").Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting venues: %w", err)
	}
	return n, nil
}

func (sr *SqlRepo) UpdateVenueLocation(ctx context.Context, id int64, postcode string, lat, lng float64) error {
	return sr.execOne(ctx, "UPDATE venues SET latitude = $1, longitude = $2 WHERE id = $3 AND postcode = $4",
		[]interface{}{lat, lng, id, postcode}, models.KindVenue, id)
}

// translate maps constraint violations on insert and update to domain errors.
func translate(err error, m models.Model) error {
	if e, ok := m.(models.Event); ok && isForeignKeyViolation(err) {
		return models.UnknownVenue(e.VenueID)
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := 1; i <= n; i++ {
		ph[i-1] = fmt.Sprintf("$%d", i)
	}
	return strings.Join(ph, ", ")
}
