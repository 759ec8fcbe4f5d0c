package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	emailPkg "gymhub/internal/adapters/email"
	web "gymhub/internal/adapters/http"
	"gymhub/internal/adapters/storage"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/config"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/outbox"
	"gymhub/internal/logging"
)

// app is the state shared by every subcommand once the root has loaded config.
type app struct {
	cfg    *config.Config
	dbPath string
	db     *sql.DB
	closer interface{ Close() error }
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "gymctl",
		Short:         "GymHub maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.closer = logging.Setup(cfg.LogLevel, cfg.LogFile)
			if a.dbPath == "" {
				a.dbPath = cfg.DBPath
			}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.db != nil {
				a.db.Close()
			}
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database path (default GYM_DB_PATH)")

	root.AddCommand(
		a.migrateCmd(),
		a.createAdminCmd(),
		a.seedDemoCmd(),
		a.expireCmd(),
		a.outboxCmd(),
		versionCmd(),
	)
	return root
}

// open opens and migrates the database. Every command that touches data
// migrates first so a fresh path is usable straight away.
func (a *app) open() (*web.Stores, error) {
	db, err := storage.OpenDB(a.dbPath)
	if err != nil {
		return nil, err
	}
	a.db = db
	if err := storage.MigrateDB(db); err != nil {
		return nil, err
	}
	return web.NewStores(db, db), nil
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.open(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", storage.LatestSchemaVersion())
			return nil
		},
	}
}

func (a *app) createAdminCmd() *cobra.Command {
	var input orchestrators.CreateAccountInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account that must change its password on first login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			input.Role = account.RoleAdmin
			input.PasswordChangeRequired = true
			id, err := orchestrators.ExecuteCreateAccount(cmd.Context(), input, orchestrators.CreateAccountDeps{
				AccountStore: s.AccountStore,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", input.Email, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Email, "email", "", "login email")
	cmd.Flags().StringVar(&input.Name, "name", "", "display name")
	cmd.Flags().StringVar(&input.Password, "password", "", "temporary password, at least 12 characters")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) seedDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Load demo trainers, members, classes and equipment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.IsProduction() {
				return fmt.Errorf("refusing to seed demo data in production")
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			seeded, err := orchestrators.ExecuteSeedDemo(cmd.Context(), orchestrators.SeedDemoDeps{
				AccountStore:   s.AccountStore,
				MemberStore:    s.MemberStore,
				TrainerStore:   s.TrainerStore,
				ClassStore:     s.ClassStore,
				EquipmentStore: s.EquipmentStore,
				PaymentStore:   s.PaymentStore,
			})
			if err != nil {
				return err
			}
			if !seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "demo data already present")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "demo data loaded; every demo account uses password %q\n", orchestrators.DemoPassword)
			return nil
		},
	}
}

func (a *app) expireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire-memberships",
		Short: "Expire active members whose paid period has ended",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			n, err := orchestrators.ExecuteExpireMemberships(cmd.Context(), orchestrators.ExpireMembershipsDeps{MemberStore: s.MemberStore})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d memberships\n", n)
			return nil
		},
	}
}

func (a *app) outboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deliver-outbox",
		Short: "Deliver due outbox emails once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			var sender emailPkg.Sender = emailPkg.NewNoopSender()
			if a.cfg.ResendKey != "" {
				sender = emailPkg.NewResendSender(a.cfg.ResendKey, a.cfg.EmailFrom)
			} else {
				slog.Warn("email_sender_disabled", "hint", "set GYM_RESEND_KEY for delivery")
			}
			p := orchestrators.NewOutboxProcessor(s.OutboxStore, map[string]orchestrators.ActionExecutor{
				outbox.ActionTypeEmail: &orchestrators.EmailExecutor{Sender: sender},
			})
			stats, err := p.ProcessPending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "attempted %d, delivered %d, failed %d\n", stats.Attempted, stats.Succeeded, stats.Failed)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
