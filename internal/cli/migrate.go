package cli

import (
	"github.com/spf13/cobra"

	"github.com/dipaca/autolavado/internal/migrations"
	"github.com/dipaca/autolavado/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(st *storage.Storage, path string) error {
			if err := migrations.Run(st.DB, path); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every applied migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(st *storage.Storage, path string) error {
			if err := migrations.Down(st.DB, path); err != nil {
				return err
			}
			cmd.Println("migrations rolled back")
			return nil
		})
	},
}

func withDB(fn func(st *storage.Storage, migrationsPath string) error) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := storage.New(s.dsn)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st, s.migrationsPath)
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}
