package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/order-management-api/pkg/logger"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migration par up/down identificado por versión (prefijo numérico del archivo).
type Migration struct {
	Version int64
	Name    string
	Up      string
	Down    string
}

// MigrationStatus estado de una migración conocida.
type MigrationStatus struct {
	Migration
	Applied   bool
	AppliedAt *time.Time
}

// Migrator aplica las migraciones SQL embebidas y las registra en schema_migrations.
type Migrator struct {
	db         Querier
	migrations []Migration
}

// NewMigrator construye el migrador con las migraciones embebidas en el binario.
func NewMigrator(db Querier) (*Migrator, error) {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return nil, err
	}
	return NewMigratorFS(db, sub)
}

// NewMigratorFS igual que NewMigrator pero leyendo de fsys (archivos NNN_nombre.up.sql / .down.sql en la raíz).
func NewMigratorFS(db Querier, fsys fs.FS) (*Migrator, error) {
	migs, err := LoadMigrations(fsys)
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, migrations: migs}, nil
}

// LoadMigrations lee los pares up/down y los devuelve ordenados por versión.
// Una migración sin .up.sql es un error; el .down.sql es opcional.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("leer migraciones: %w", err)
	}

	byVersion := map[int64]*Migration{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".sql")
		var direction string
		switch {
		case strings.HasSuffix(base, ".up"):
			direction = "up"
		case strings.HasSuffix(base, ".down"):
			direction = "down"
		default:
			return nil, fmt.Errorf("migración %q: falta sufijo .up.sql o .down.sql", e.Name())
		}
		base = strings.TrimSuffix(base, "."+direction)

		prefix, name, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("migración %q: formato esperado NNN_nombre", e.Name())
		}
		version, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migración %q: versión inválida: %w", e.Name(), err)
		}

		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", e.Name(), err)
		}

		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		} else if m.Name != name {
			return nil, fmt.Errorf("versión %d duplicada (%s, %s)", version, m.Name, name)
		}
		if direction == "up" {
			m.Up = string(body)
		} else {
			m.Down = string(body)
		}
	}

	list := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if strings.TrimSpace(m.Up) == "" {
			return nil, fmt.Errorf("migración %d_%s: falta .up.sql", m.Version, m.Name)
		}
		list = append(list, *m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Version < list[j].Version })
	return list, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    BIGINT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int64]time.Time, error) {
	rows, err := m.db.Query(ctx, `SELECT version, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()
	out := map[int64]time.Time{}
	for rows.Next() {
		var v int64
		var at time.Time
		if err := rows.Scan(&v, &at); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		out[v] = at
	}
	return out, rows.Err()
}

// Up aplica las migraciones pendientes en orden, cada una en su propia transacción.
// Devuelve las que se aplicaron.
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	var ran []Migration
	for _, mig := range m.migrations {
		if _, ok := done[mig.Version]; ok {
			continue
		}
		err := m.inTx(ctx, mig.Up, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name)
		if err != nil {
			return ran, fmt.Errorf("migración %d_%s up: %w", mig.Version, mig.Name, err)
		}
		log.Info().Int64("version", mig.Version).Str("name", mig.Name).Msg("migración aplicada")
		ran = append(ran, mig)
	}
	return ran, nil
}

// Down revierte la última migración aplicada. Devuelve nil si no hay nada que revertir.
func (m *Migrator) Down(ctx context.Context) (*Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if _, ok := done[mig.Version]; !ok {
			continue
		}
		if strings.TrimSpace(mig.Down) == "" {
			return nil, fmt.Errorf("migración %d_%s no tiene .down.sql", mig.Version, mig.Name)
		}
		err := m.inTx(ctx, mig.Down, `DELETE FROM schema_migrations WHERE version = $1`, mig.Version)
		if err != nil {
			return nil, fmt.Errorf("migración %d_%s down: %w", mig.Version, mig.Name, err)
		}
		logger.FromContext(ctx).Info().Int64("version", mig.Version).Str("name", mig.Name).Msg("migración revertida")
		return &mig, nil
	}
	return nil, nil
}

// Status lista todas las migraciones conocidas indicando cuáles están aplicadas.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		st := MigrationStatus{Migration: mig}
		if at, ok := done[mig.Version]; ok {
			st.Applied = true
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

// inTx ejecuta el script y el registro en schema_migrations dentro de la misma transacción.
func (m *Migrator) inTx(ctx context.Context, script, record string, args ...any) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, script); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, record, args...); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
