package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/artpar/hwdb/internal/core/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	// One connection: SQLite has a single writer and :memory: databases
	// exist per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Rows
// =============================================================================

// deploymentRow represents a deployment joined with its customer.
type deploymentRow struct {
	ID                  int64   `db:"id"`
	CustomerID          int64   `db:"customer_id"`
	CompanyName         string  `db:"company_name"`
	CompanyAbbreviation *string `db:"company_abbreviation"`
	HasAddress          bool    `db:"has_address"`
	ZipCode             *string `db:"zip_code"`
	City                *string `db:"city"`
	Street              *string `db:"street"`
	HouseNumber         *string `db:"house_number"`
	Type                string  `db:"type"`
	Connection          string  `db:"connection"`
	Annotation          *string `db:"annotation"`
	Testing             *bool   `db:"testing"`
	Created             *string `db:"created"`
}

// systemRow represents a system row in the database.
type systemRow struct {
	ID              int64   `db:"id"`
	GroupID         int64   `db:"group_id"`
	DeploymentID    *int64  `db:"deployment_id"`
	Dataset         *int64  `db:"dataset"`
	OpenVPN         *int64  `db:"openvpn"`
	IPv6Address     *string `db:"ipv6address"`
	PubKey          *string `db:"pubkey"`
	Created         string  `db:"created"`
	Configured      *string `db:"configured"`
	Fitted          bool    `db:"fitted"`
	OperatingSystem string  `db:"operating_system"`
	Monitor         *bool   `db:"monitor"`
	SerialNumber    *string `db:"serial_number"`
	Model           *string `db:"model"`
	LastSync        *string `db:"last_sync"`
}

// importRow represents an import run in the database.
type importRow struct {
	ID          string `db:"id"`
	Source      string `db:"source"`
	Deployments int    `db:"deployments"`
	Systems     int    `db:"systems"`
	ImportedAt  string `db:"imported_at"`
}

const selectDeployments = `
	SELECT
		d.id, d.customer_id, c.company_name, c.company_abbreviation,
		d.has_address, d.zip_code, d.city, d.street, d.house_number,
		d.type, d.connection, d.annotation, d.testing, d.created
	FROM deployments d
	JOIN customers c ON c.id = d.customer_id`

// =============================================================================
// Read Operations
// =============================================================================

func (s *SQLiteStore) ListDeployments(ctx context.Context) ([]*domain.Deployment, error) {
	return listDeployments(ctx, s.db)
}

func (s *SQLiteStore) GetDeployment(ctx context.Context, id int64) (*domain.Deployment, error) {
	return getDeployment(ctx, s.db, id)
}

func (s *SQLiteStore) ListSystems(ctx context.Context) ([]*domain.System, error) {
	return listSystems(ctx, s.db)
}

func (s *SQLiteStore) GetSystem(ctx context.Context, id int64) (*domain.System, error) {
	return getSystem(ctx, s.db, id)
}

func (s *SQLiteStore) ListImports(ctx context.Context, opts ListOptions) ([]Import, error) {
	return listImports(ctx, s.db, opts)
}

// =============================================================================
// Import
// =============================================================================

// ImportSnapshot replaces all records with the given snapshot in one transaction.
func (s *SQLiteStore) ImportSnapshot(ctx context.Context, deployments []*domain.Deployment, systems []*domain.System, source string) (*Import, error) {
	var result *Import
	err := s.WithTx(ctx, func(tx Store) error {
		var err error
		result, err = tx.ImportSnapshot(ctx, deployments, systems, source)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// =============================================================================
// Transaction Store
// =============================================================================

// txSQLiteStore implements Store within a transaction.
type txSQLiteStore struct {
	tx *sqlx.Tx
}

func (s *txSQLiteStore) ListDeployments(ctx context.Context) ([]*domain.Deployment, error) {
	return listDeployments(ctx, s.tx)
}

func (s *txSQLiteStore) GetDeployment(ctx context.Context, id int64) (*domain.Deployment, error) {
	return getDeployment(ctx, s.tx, id)
}

func (s *txSQLiteStore) ListSystems(ctx context.Context) ([]*domain.System, error) {
	return listSystems(ctx, s.tx)
}

func (s *txSQLiteStore) GetSystem(ctx context.Context, id int64) (*domain.System, error) {
	return getSystem(ctx, s.tx, id)
}

func (s *txSQLiteStore) ListImports(ctx context.Context, opts ListOptions) ([]Import, error) {
	return listImports(ctx, s.tx, opts)
}

func (s *txSQLiteStore) ImportSnapshot(ctx context.Context, deployments []*domain.Deployment, systems []*domain.System, source string) (*Import, error) {
	return importSnapshot(ctx, s.tx, deployments, systems, source)
}

func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txSQLiteStore) Ping(ctx context.Context) error {
	return nil
}

func (s *txSQLiteStore) Close() error {
	// No-op for tx store
	return nil
}

// =============================================================================
// Shared Implementation Functions
// =============================================================================

func listDeployments(ctx context.Context, exec executor) ([]*domain.Deployment, error) {
	var rows []deploymentRow
	if err := exec.SelectContext(ctx, &rows, selectDeployments+` ORDER BY d.id`); err != nil {
		return nil, NewStoreError("ListDeployments", "deployment", "", err.Error(), err)
	}

	deployments := make([]*domain.Deployment, 0, len(rows))
	for i := range rows {
		deployments = append(deployments, rowToDeployment(&rows[i]))
	}
	return deployments, nil
}

func getDeployment(ctx context.Context, exec executor, id int64) (*domain.Deployment, error) {
	var row deploymentRow
	err := exec.GetContext(ctx, &row, selectDeployments+` WHERE d.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetDeployment", "deployment", formatID(id), "deployment not found", ErrNotFound)
		}
		return nil, NewStoreError("GetDeployment", "deployment", formatID(id), err.Error(), err)
	}
	return rowToDeployment(&row), nil
}

func listSystems(ctx context.Context, exec executor) ([]*domain.System, error) {
	deployments, err := listDeployments(ctx, exec)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.Deployment, len(deployments))
	for _, d := range deployments {
		byID[d.ID] = d
	}

	var rows []systemRow
	if err := exec.SelectContext(ctx, &rows, `SELECT * FROM systems ORDER BY id`); err != nil {
		return nil, NewStoreError("ListSystems", "system", "", err.Error(), err)
	}

	systems := make([]*domain.System, 0, len(rows))
	for i := range rows {
		sys := rowToSystem(&rows[i])
		if rows[i].DeploymentID != nil {
			sys.Deployment = byID[*rows[i].DeploymentID]
		}
		systems = append(systems, sys)
	}
	return systems, nil
}

func getSystem(ctx context.Context, exec executor, id int64) (*domain.System, error) {
	var row systemRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM systems WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetSystem", "system", formatID(id), "system not found", ErrNotFound)
		}
		return nil, NewStoreError("GetSystem", "system", formatID(id), err.Error(), err)
	}

	sys := rowToSystem(&row)
	if row.DeploymentID != nil {
		d, err := getDeployment(ctx, exec, *row.DeploymentID)
		if err != nil {
			return nil, err
		}
		sys.Deployment = d
	}
	return sys, nil
}

func listImports(ctx context.Context, exec executor, opts ListOptions) ([]Import, error) {
	opts = opts.Normalize()
	query := `SELECT * FROM imports ORDER BY imported_at DESC, rowid DESC LIMIT ? OFFSET ?`

	var rows []importRow
	if err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListImports", "import", "", err.Error(), err)
	}

	imports := make([]Import, 0, len(rows))
	for _, row := range rows {
		importedAt, _ := time.Parse(time.RFC3339, row.ImportedAt)
		imports = append(imports, Import{
			ID:          row.ID,
			Source:      row.Source,
			Deployments: row.Deployments,
			Systems:     row.Systems,
			ImportedAt:  importedAt,
		})
	}
	return imports, nil
}

func importSnapshot(ctx context.Context, exec executor, deployments []*domain.Deployment, systems []*domain.System, source string) (*Import, error) {
	for _, table := range []string{"systems", "deployments", "customers"} {
		if _, err := exec.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, NewStoreError("ImportSnapshot", table, "", err.Error(), err)
		}
	}

	for _, d := range deployments {
		if err := insertDeployment(ctx, exec, d); err != nil {
			return nil, err
		}
	}
	for _, s := range systems {
		if err := insertSystem(ctx, exec, s); err != nil {
			return nil, err
		}
	}

	result := &Import{
		ID:          uuid.New().String(),
		Source:      source,
		Deployments: len(deployments),
		Systems:     len(systems),
		ImportedAt:  time.Now().UTC().Truncate(time.Second),
	}

	query := `
		INSERT INTO imports (id, source, deployments, systems, imported_at)
		VALUES (:id, :source, :deployments, :systems, :imported_at)`

	_, err := exec.NamedExecContext(ctx, query, map[string]any{
		"id":          result.ID,
		"source":      result.Source,
		"deployments": result.Deployments,
		"systems":     result.Systems,
		"imported_at": result.ImportedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, NewStoreError("ImportSnapshot", "import", result.ID, err.Error(), err)
	}

	return result, nil
}

func insertDeployment(ctx context.Context, exec executor, d *domain.Deployment) error {
	customer := `
		INSERT INTO customers (id, company_name, company_abbreviation)
		VALUES (:id, :company_name, :company_abbreviation)
		ON CONFLICT(id) DO UPDATE SET
			company_name = excluded.company_name,
			company_abbreviation = excluded.company_abbreviation`

	_, err := exec.NamedExecContext(ctx, customer, map[string]any{
		"id":                   d.Customer.ID,
		"company_name":         d.Customer.Company.Name,
		"company_abbreviation": d.Customer.Company.Abbreviation,
	})
	if err != nil {
		return NewStoreError("ImportSnapshot", "customer", formatID(d.Customer.ID), err.Error(), err)
	}

	query := `
		INSERT INTO deployments (
			id, customer_id, has_address, zip_code, city, street, house_number,
			type, connection, annotation, testing, created
		) VALUES (
			:id, :customer_id, :has_address, :zip_code, :city, :street, :house_number,
			:type, :connection, :annotation, :testing, :created
		)`

	row := map[string]any{
		"id":           d.ID,
		"customer_id":  d.Customer.ID,
		"has_address":  d.Address != nil,
		"zip_code":     nil,
		"city":         nil,
		"street":       nil,
		"house_number": nil,
		"type":         string(d.Type),
		"connection":   string(d.Connection),
		"annotation":   d.Annotation,
		"testing":      d.Testing,
		"created":      formatTime(d.Created),
	}
	if d.Address != nil {
		row["zip_code"] = d.Address.ZipCode
		row["city"] = d.Address.City
		row["street"] = d.Address.Street
		row["house_number"] = d.Address.HouseNumber
	}

	if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
		return wrapInsertError("deployment", d.ID, err)
	}
	return nil
}

func insertSystem(ctx context.Context, exec executor, s *domain.System) error {
	query := `
		INSERT INTO systems (
			id, group_id, deployment_id, dataset, openvpn, ipv6address, pubkey,
			created, configured, fitted, operating_system, monitor,
			serial_number, model, last_sync
		) VALUES (
			:id, :group_id, :deployment_id, :dataset, :openvpn, :ipv6address, :pubkey,
			:created, :configured, :fitted, :operating_system, :monitor,
			:serial_number, :model, :last_sync
		)`

	var deploymentID *int64
	if s.Deployment != nil {
		deploymentID = &s.Deployment.ID
	}

	row := map[string]any{
		"id":               s.ID,
		"group_id":         s.Group,
		"deployment_id":    deploymentID,
		"dataset":          s.Dataset,
		"openvpn":          s.OpenVPN,
		"ipv6address":      s.IPv6Address,
		"pubkey":           s.PubKey,
		"created":          s.Created.UTC().Format(time.RFC3339),
		"configured":       formatTime(s.Configured),
		"fitted":           s.Fitted,
		"operating_system": s.OperatingSystem,
		"monitor":          s.Monitor,
		"serial_number":    s.SerialNumber,
		"model":            s.Model,
		"last_sync":        formatTime(s.LastSync),
	}

	if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
		return wrapInsertError("system", s.ID, err)
	}
	return nil
}

const uniqueViolation = "UNIQUE constraint failed: "

func wrapInsertError(entity string, id int64, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, uniqueViolation):
		if column := uniqueColumn(msg); column != "id" {
			return NewStoreError("ImportSnapshot", entity, formatID(id),
				"duplicate "+column+": "+msg, ErrDuplicateValue)
		}
		return NewStoreError("ImportSnapshot", entity, formatID(id), msg, ErrDuplicateID)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return NewStoreError("ImportSnapshot", entity, formatID(id), msg, ErrForeignKey)
	}
	return NewStoreError("ImportSnapshot", entity, formatID(id), msg, err)
}

// uniqueColumn extracts the column from SQLite's
// "UNIQUE constraint failed: table.column" message.
func uniqueColumn(msg string) string {
	_, rest, _ := strings.Cut(msg, uniqueViolation)
	qualified, _, _ := strings.Cut(rest, ",")
	_, column, found := strings.Cut(strings.TrimSpace(qualified), ".")
	if !found {
		return qualified
	}
	return column
}

// =============================================================================
// Row Conversion Functions
// =============================================================================

func rowToDeployment(row *deploymentRow) *domain.Deployment {
	d := &domain.Deployment{
		ID: row.ID,
		Customer: domain.Customer{
			ID: row.CustomerID,
			Company: domain.Company{
				Name:         row.CompanyName,
				Abbreviation: row.CompanyAbbreviation,
			},
		},
		Type:       domain.DeploymentType(row.Type),
		Connection: domain.Connection(row.Connection),
		Annotation: row.Annotation,
		Testing:    row.Testing,
		Created:    parseTime(row.Created),
	}
	if row.HasAddress {
		d.Address = &domain.Address{
			ZipCode:     row.ZipCode,
			City:        row.City,
			Street:      row.Street,
			HouseNumber: row.HouseNumber,
		}
	}
	return d
}

func rowToSystem(row *systemRow) *domain.System {
	created, _ := time.Parse(time.RFC3339, row.Created)
	return &domain.System{
		ID:              row.ID,
		Group:           row.GroupID,
		Dataset:         row.Dataset,
		OpenVPN:         row.OpenVPN,
		IPv6Address:     row.IPv6Address,
		PubKey:          row.PubKey,
		Created:         created,
		Configured:      parseTime(row.Configured),
		Fitted:          row.Fitted,
		OperatingSystem: row.OperatingSystem,
		Monitor:         row.Monitor,
		SerialNumber:    row.SerialNumber,
		Model:           row.Model,
		LastSync:        parseTime(row.LastSync),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func parseTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	return &t
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
