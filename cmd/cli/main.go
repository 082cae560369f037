// Command ordersctl tareas de operación sobre la base de datos: migraciones y alta de administradores.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ordersctl",
	Short:         "CLI de operación de order-management-api",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedAdminCmd)

	seedAdminCmd.Flags().StringVar(&adminName, "name", "Administrador", "nombre del administrador")
	seedAdminCmd.Flags().StringVar(&adminEmail, "email", "", "email del administrador")
	seedAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password en claro (se guarda con bcrypt)")
	_ = seedAdminCmd.MarkFlagRequired("email")
	_ = seedAdminCmd.MarkFlagRequired("password")
}
