// Package storage implements the persistence ports on SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"condoflow/internal/core"
	"condoflow/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Cascade deletes from units to readings depend on this pragma.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- units ---

const unitColumns = "id, number, block, resident_name, resident_role"

func (r *SQLiteRepository) ListUnits(ctx context.Context) ([]core.Unit, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+unitColumns+" FROM units ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []core.Unit
	for rows.Next() {
		var u core.Unit
		if err := rows.Scan(&u.ID, &u.Number, &u.Block, &u.ResidentName, &u.ResidentRole); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *SQLiteRepository) GetUnit(ctx context.Context, id string) (core.Unit, error) {
	var u core.Unit
	err := r.db.QueryRowContext(ctx, "SELECT "+unitColumns+" FROM units WHERE id = ?", id).
		Scan(&u.ID, &u.Number, &u.Block, &u.ResidentName, &u.ResidentRole)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Unit{}, store.ErrNotFound
	}
	if err != nil {
		return core.Unit{}, fmt.Errorf("get unit: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) SaveUnit(ctx context.Context, u core.Unit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO units (id, number, block, resident_name, resident_role)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			number = excluded.number,
			block = excluded.block,
			resident_name = excluded.resident_name,
			resident_role = excluded.resident_role`,
		u.ID, u.Number, u.Block, u.ResidentName, u.ResidentRole)
	if err != nil {
		return fmt.Errorf("save unit: %w", err)
	}

	slog.InfoContext(ctx, "Unit saved",
		"id", u.ID,
		"number", u.Number,
		"block", u.Block)
	return nil
}

func (r *SQLiteRepository) DeleteUnit(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM units WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Unit deleted", "id", id)
	return nil
}

// --- readings ---

const readingColumns = "id, unit_id, type, previous_milli, current_milli, reading_date, status"

func scanReading(scan func(...any) error) (core.Reading, error) {
	var (
		rd      core.Reading
		current sql.NullInt64
	)
	if err := scan(&rd.ID, &rd.UnitID, &rd.Type, &rd.Previous.Milli, &current, &rd.Date, &rd.Status); err != nil {
		return core.Reading{}, err
	}
	if current.Valid {
		rd.Current = &core.Volume{Milli: current.Int64}
	}
	return rd, nil
}

func currentMilli(rd core.Reading) any {
	if rd.Current == nil {
		return nil
	}
	return rd.Current.Milli
}

func (r *SQLiteRepository) ListReadings(ctx context.Context, f store.ReadingFilter) ([]core.Reading, error) {
	query := "SELECT " + readingColumns + " FROM readings WHERE 1=1"
	var args []any
	if f.UnitID != "" {
		query += " AND unit_id = ?"
		args = append(args, f.UnitID)
	}
	if f.Type != "" {
		query += " AND type = ?"
		args = append(args, f.Type)
	}
	if !f.From.IsZero() {
		query += " AND reading_date >= ?"
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		query += " AND reading_date <= ?"
		args = append(args, f.To)
	}
	query += " ORDER BY reading_date, created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var readings []core.Reading
	for rows.Next() {
		rd, err := scanReading(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, rd)
	}
	return readings, rows.Err()
}

func (r *SQLiteRepository) FindReadingForMonth(ctx context.Context, unitID string, t core.UtilityType, month core.ReferenceMonth) (core.Reading, error) {
	start, end := monthBounds(month)
	row := r.db.QueryRowContext(ctx, `
		SELECT `+readingColumns+` FROM readings
		WHERE unit_id = ? AND type = ? AND reading_date >= ? AND reading_date < ?
		ORDER BY created_at DESC LIMIT 1`,
		unitID, t, start, end)

	rd, err := scanReading(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Reading{}, store.ErrNotFound
	}
	if err != nil {
		return core.Reading{}, fmt.Errorf("find reading for month: %w", err)
	}
	return rd, nil
}

func (r *SQLiteRepository) UpsertReading(ctx context.Context, rd core.Reading) (core.Reading, error) {
	existing, err := r.FindReadingForMonth(ctx, rd.UnitID, rd.Type, core.MonthOf(rd.Date))
	switch {
	case err == nil:
		rd.ID = existing.ID
		_, err = r.db.ExecContext(ctx, `
			UPDATE readings SET previous_milli = ?, current_milli = ?, reading_date = ?, status = ?
			WHERE id = ?`,
			rd.Previous.Milli, currentMilli(rd), rd.Date, rd.Status, rd.ID)
		if err != nil {
			return core.Reading{}, fmt.Errorf("update reading: %w", err)
		}
	case errors.Is(err, store.ErrNotFound):
		if rd.ID == "" {
			rd.ID = uuid.NewString()
		}
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO readings (id, unit_id, type, previous_milli, current_milli, reading_date, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rd.ID, rd.UnitID, rd.Type, rd.Previous.Milli, currentMilli(rd), rd.Date, rd.Status)
		if err != nil {
			return core.Reading{}, fmt.Errorf("insert reading: %w", err)
		}
	default:
		return core.Reading{}, err
	}

	slog.InfoContext(ctx, "Reading saved",
		"id", rd.ID,
		"unit_id", rd.UnitID,
		"type", rd.Type,
		"date", rd.Date.Format("2006-01-02"))
	return rd, nil
}

func (r *SQLiteRepository) DeleteReading(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM readings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete reading: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteReadingsForMonth(ctx context.Context, month core.ReferenceMonth, unitIDs []string) (int, error) {
	start, end := monthBounds(month)
	query := "DELETE FROM readings WHERE reading_date >= ? AND reading_date < ?"
	args := []any{start, end}
	if len(unitIDs) > 0 {
		query += " AND unit_id IN (?" + strings.Repeat(", ?", len(unitIDs)-1) + ")"
		for _, id := range unitIDs {
			args = append(args, id)
		}
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete readings for month: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted readings: %w", err)
	}

	slog.InfoContext(ctx, "Readings pruned",
		"year", month.Year,
		"month", int(month.Month),
		"deleted", n)
	return int(n), nil
}

func (r *SQLiteRepository) LatestReadingDate(ctx context.Context) (time.Time, error) {
	var latest sql.NullTime
	err := r.db.QueryRowContext(ctx, "SELECT MAX(reading_date) FROM readings").Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest reading date: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}

func (r *SQLiteRepository) PreviousValue(ctx context.Context, unitID string, t core.UtilityType) (core.Volume, error) {
	var (
		current  sql.NullInt64
		previous int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT current_milli, previous_milli FROM readings
		WHERE unit_id = ? AND type = ?
		ORDER BY reading_date DESC, created_at DESC LIMIT 1`,
		unitID, t).Scan(&current, &previous)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Volume{}, nil
	}
	if err != nil {
		return core.Volume{}, fmt.Errorf("previous value: %w", err)
	}
	if current.Valid {
		return core.Volume{Milli: current.Int64}, nil
	}
	return core.Volume{Milli: previous}, nil
}

// --- registrations ---

const registrationColumns = `id, unit_id, full_name, resident_role, cpf, birth_date,
	phone, garage_spot, is_financial_responsible, financial_responsible_name,
	financial_responsible_cpf, owner_name, owner_phone, co_residents, status, created_at`

func (r *SQLiteRepository) ListRegistrations(ctx context.Context) ([]core.RegistrationRequest, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+registrationColumns+" FROM registrations ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []core.RegistrationRequest
	for rows.Next() {
		reg, err := scanRegistration(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *SQLiteRepository) GetRegistration(ctx context.Context, id string) (core.RegistrationRequest, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+registrationColumns+" FROM registrations WHERE id = ?", id)
	reg, err := scanRegistration(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RegistrationRequest{}, store.ErrNotFound
	}
	if err != nil {
		return core.RegistrationRequest{}, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

func (r *SQLiteRepository) CreateRegistration(ctx context.Context, reg core.RegistrationRequest) (core.RegistrationRequest, error) {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	coResidents, err := json.Marshal(reg.CoResidents)
	if err != nil {
		return core.RegistrationRequest{}, fmt.Errorf("marshal co-residents: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO registrations (`+registrationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.ID, reg.UnitID, reg.FullName, reg.ResidentRole, reg.CPF,
		reg.BirthDate, reg.Phone, reg.GarageSpot, reg.IsFinancialResponsible,
		reg.FinancialResponsibleName, reg.FinancialResponsibleCPF, reg.OwnerName,
		reg.OwnerPhone, string(coResidents), reg.Status, reg.CreatedAt)
	if err != nil {
		return core.RegistrationRequest{}, fmt.Errorf("create registration: %w", err)
	}

	slog.InfoContext(ctx, "Registration created",
		"id", reg.ID,
		"unit_id", reg.UnitID)
	return reg, nil
}

func (r *SQLiteRepository) UpdateRegistration(ctx context.Context, reg core.RegistrationRequest) error {
	coResidents, err := json.Marshal(reg.CoResidents)
	if err != nil {
		return fmt.Errorf("marshal co-residents: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE registrations SET
			unit_id = ?, full_name = ?, resident_role = ?, cpf = ?,
			birth_date = ?, phone = ?, garage_spot = ?, is_financial_responsible = ?,
			financial_responsible_name = ?, financial_responsible_cpf = ?,
			owner_name = ?, owner_phone = ?, co_residents = ?
		WHERE id = ?`,
		reg.UnitID, reg.FullName, reg.ResidentRole, reg.CPF,
		reg.BirthDate, reg.Phone, reg.GarageSpot, reg.IsFinancialResponsible,
		reg.FinancialResponsibleName, reg.FinancialResponsibleCPF,
		reg.OwnerName, reg.OwnerPhone, string(coResidents), reg.ID)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) UpdateRegistrationStatus(ctx context.Context, id string, status core.RegistrationStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE registrations SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Registration status updated", "id", id, "status", status)
	return nil
}

func scanRegistration(scan func(...any) error) (core.RegistrationRequest, error) {
	var (
		reg         core.RegistrationRequest
		coResidents string
	)
	if err := scan(&reg.ID, &reg.UnitID, &reg.FullName, &reg.ResidentRole,
		&reg.CPF, &reg.BirthDate, &reg.Phone, &reg.GarageSpot, &reg.IsFinancialResponsible,
		&reg.FinancialResponsibleName, &reg.FinancialResponsibleCPF, &reg.OwnerName,
		&reg.OwnerPhone, &coResidents, &reg.Status, &reg.CreatedAt); err != nil {
		return core.RegistrationRequest{}, err
	}
	if coResidents != "" {
		if err := json.Unmarshal([]byte(coResidents), &reg.CoResidents); err != nil {
			return core.RegistrationRequest{}, fmt.Errorf("unmarshal co-residents: %w", err)
		}
	}
	return reg, nil
}

func monthBounds(m core.ReferenceMonth) (time.Time, time.Time) {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
