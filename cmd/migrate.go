package cmd

import (
	"os"
	"strconv"

	"github.com/rmoreira/politicos/internal/store"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down <steps>|status]",
	Short: "Manage database schema migrations",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger()

		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			log.Fatal("DATABASE_URL environment variable is required")
		}

		db, err := store.NewDB(dbURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		switch args[0] {
		case "up":
			if err := store.MigrateUp(db); err != nil {
				log.Fatalf("migration failed: %v", err)
			}
			log.Info("migrations applied")
		case "down":
			steps := 1
			if len(args) > 1 {
				steps, err = strconv.Atoi(args[1])
				if err != nil {
					log.Fatalf("invalid steps value: %v", err)
				}
			}
			if err := store.MigrateDown(db, steps); err != nil {
				log.Fatalf("rollback failed: %v", err)
			}
			log.Info("migrations rolled back")
		case "status":
			version, dirty, err := store.MigrateVersion(db)
			if err != nil {
				log.Fatalf("failed to get migration status: %v", err)
			}
			log.Infof("current migration version: %d (dirty: %v)", version, dirty)
		default:
			log.Fatalf("unknown migrate action %q", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
