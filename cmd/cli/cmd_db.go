package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/order-management-api/internal/application/auth"
	"github.com/jhoicas/order-management-api/internal/domain/entity"
	"github.com/jhoicas/order-management-api/internal/infrastructure/postgres"
	"github.com/jhoicas/order-management-api/pkg/config"
	"github.com/jhoicas/order-management-api/pkg/logger"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

// bootDB carga la configuración y abre el pool. El contexto lleva el logger para el migrador.
func bootDB(ctx context.Context) (context.Context, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return ctx, nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	ctx = log.Zerolog().WithContext(ctx)

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return ctx, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return ctx, pool, nil
}

func withMigrator(cmd *cobra.Command, fn func(context.Context, *postgres.Migrator) error) error {
	ctx, pool, err := bootDB(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	m, err := postgres.NewMigrator(pool)
	if err != nil {
		return err
	}
	return fn(ctx, m)
}

// ordersctl migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones pendientes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *postgres.Migrator) error {
			applied, err := m.Up(ctx)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Println("Nada que migrar.")
				return nil
			}
			for _, mig := range applied {
				fmt.Printf("Migrado: %03d_%s\n", mig.Version, mig.Name)
			}
			return nil
		})
	},
}

// ordersctl migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Revierte la última migración aplicada",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *postgres.Migrator) error {
			mig, err := m.Down(ctx)
			if err != nil {
				return err
			}
			if mig == nil {
				fmt.Println("Nada que revertir.")
				return nil
			}
			fmt.Printf("Revertido: %03d_%s\n", mig.Version, mig.Name)
			return nil
		})
	},
}

// ordersctl migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Muestra el estado de cada migración",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *postgres.Migrator) error {
			list, err := m.Status(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSIÓN\tNOMBRE\tESTADO\tAPLICADA")
			for _, st := range list {
				state, at := "pendiente", "-"
				if st.Applied {
					state = "aplicada"
					if st.AppliedAt != nil {
						at = st.AppliedAt.Format(time.RFC3339)
					}
				}
				fmt.Fprintf(w, "%03d\t%s\t%s\t%s\n", st.Version, st.Name, state, at)
			}
			return w.Flush()
		})
	},
}

// ordersctl seed:admin --email ... --password ...
var seedAdminCmd = &cobra.Command{
	Use:   "seed:admin",
	Short: "Crea un usuario con rol ROLE_ADMIN",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, pool, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		user, err := auth.NewUser(adminName, adminEmail, adminPassword, entity.RoleAdmin, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := postgres.NewUserRepository(pool).Create(ctx, user); err != nil {
			return fmt.Errorf("crear administrador %s: %w", user.Email, err)
		}
		fmt.Printf("Administrador creado: id=%d email=%s\n", user.ID, user.Email)
		return nil
	},
}
