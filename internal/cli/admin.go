package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dipaca/autolavado/internal/lib/password"
	"github.com/dipaca/autolavado/internal/storage"
)

const (
	demoAdminPassword   = "admin123"
	demoClientePassword = "cliente123"
	minPasswordLen      = 6
)

var (
	adminEmail    string
	adminPassword string
	adminNombre   string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin login or reset its password",
	Long: `Create an admin login. If the email already exists its password and
name are replaced, so the command can be rerun safely.

Example:
  autolavadoctl create-admin --email admin@dipaca.com --password secret1 --nombre Administrador`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		email := strings.TrimSpace(adminEmail)
		if email == "" || !strings.Contains(email, "@") {
			return errors.New("a valid --email is required")
		}
		if len(adminPassword) < minPasswordLen {
			return fmt.Errorf("--password must have at least %d characters", minPasswordLen)
		}

		hash, err := password.Hash(adminPassword)
		if err != nil {
			return err
		}
		st, err := connect()
		if err != nil {
			return err
		}
		defer st.Close()

		user, err := st.UpsertAdmin(cmd.Context(), email, hash, adminNombre)
		if err != nil {
			return err
		}
		cmd.Printf("admin %s ready (id %d)\n", user.Email, user.ID)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo admin, cliente, workers and servicios",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		adminHash, err := password.Hash(demoAdminPassword)
		if err != nil {
			return err
		}
		clienteHash, err := password.Hash(demoClientePassword)
		if err != nil {
			return err
		}
		st, err := connect()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SeedDemo(cmd.Context(), adminHash, clienteHash); err != nil {
			return err
		}
		cmd.Printf("admin:   %s / %s\n", storage.DemoAdminEmail, demoAdminPassword)
		cmd.Printf("cliente: %s / %s\n", storage.DemoClienteEmail, demoClientePassword)
		return nil
	},
}

func connect() (accountStore, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return openStore(s.dsn)
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "login password")
	createAdminCmd.Flags().StringVar(&adminNombre, "nombre", "Administrador", "display name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(createAdminCmd, seedCmd)
}
