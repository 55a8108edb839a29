// Package cli — команды marketctl: миграции схемы и административные
// операции над пользователями и ассетами без HTTP API.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/asset-marketplace/internal/migrations"
	"github.com/magabrotheeeer/asset-marketplace/internal/models"
)

// Operator — субъект, от имени которого marketctl выполняет операции администратора.
var Operator = models.Principal{UserID: "marketctl", Role: models.RoleAdmin}

// Users ищет пользователя по email.
type Users interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Entitlements — ручное управление статусом и ролью.
type Entitlements interface {
	Override(ctx context.Context, actor models.Principal, userID string, status models.SubStatus) (*models.User, error)
	PromoteRole(ctx context.Context, actor models.Principal, userID string, role models.Role) (*models.User, error)
}

// Assets — модерация каталога.
type Assets interface {
	Moderate(ctx context.Context, p models.Principal, id string, status models.AssetStatus) (*models.Asset, error)
}

// Migrator применяет и откатывает миграции.
type Migrator interface {
	Up() error
	Down(steps int) error
}

// Env — зависимости, которые команда получает после открытия окружения.
type Env struct {
	Users        Users
	Entitlements Entitlements
	Assets       Assets
	Migrator     Migrator
}

// Opener открывает окружение и возвращает функцию его закрытия.
type Opener func(ctx context.Context) (*Env, func(), error)

// SQLMigrator — Migrator поверх golang-migrate.
type SQLMigrator struct {
	DB   *sql.DB
	Path string
}

func (m SQLMigrator) Up() error            { return migrations.Run(m.DB, m.Path) }
func (m SQLMigrator) Down(steps int) error { return migrations.Down(m.DB, m.Path, steps) }

// NewRootCommand собирает дерево команд marketctl.
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "marketctl",
		Short:         "Asset marketplace administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCommand(open), userCommand(open), assetCommand(open))
	return root
}

func withEnv(cmd *cobra.Command, open Opener, fn func(ctx context.Context, env *Env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, closeEnv, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeEnv()
	return fn(ctx, env)
}

func migrateCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, func(_ context.Context, env *Env) error {
				if err := env.Migrator.Up(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			return withEnv(cmd, open, func(_ context.Context, env *Env) error {
				if err := env.Migrator.Down(steps); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)
	return cmd
}

func userCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var email, role string
	promote := &cobra.Command{
		Use:   "promote",
		Short: "Change user role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				u, err := findUser(ctx, env, email)
				if err != nil {
					return err
				}
				u, err = env.Entitlements.PromoteRole(ctx, Operator, u.ID, models.Role(strings.ToUpper(role)))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %s: role=%s\n", u.Email, u.Role)
				return nil
			})
		},
	}
	promote.Flags().StringVar(&email, "email", "", "user email")
	promote.Flags().StringVar(&role, "role", "", "USER, CONTRIBUTOR or ADMIN")
	_ = promote.MarkFlagRequired("email")
	_ = promote.MarkFlagRequired("role")

	var statusEmail, status string
	setStatus := &cobra.Command{
		Use:   "set-status",
		Short: "Override subscription status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				u, err := findUser(ctx, env, statusEmail)
				if err != nil {
					return err
				}
				u, err = env.Entitlements.Override(ctx, Operator, u.ID, models.SubStatus(strings.ToUpper(status)))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %s: subscription_status=%s\n", u.Email, u.SubscriptionStatus)
				return nil
			})
		},
	}
	setStatus.Flags().StringVar(&statusEmail, "email", "", "user email")
	setStatus.Flags().StringVar(&status, "status", "", "ACTIVE, INACTIVE, CANCELED or PAST_DUE")
	_ = setStatus.MarkFlagRequired("email")
	_ = setStatus.MarkFlagRequired("status")

	cmd.AddCommand(promote, setStatus)
	return cmd
}

func assetCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Manage catalog assets",
	}

	var id, status string
	moderate := &cobra.Command{
		Use:   "moderate",
		Short: "Set asset moderation status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				a, err := env.Assets.Moderate(ctx, Operator, id, models.AssetStatus(strings.ToUpper(status)))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "asset %s: status=%s\n", a.ID, a.Status)
				return nil
			})
		},
	}
	moderate.Flags().StringVar(&id, "id", "", "asset id")
	moderate.Flags().StringVar(&status, "status", "", "PENDING, APPROVED or REJECTED")
	_ = moderate.MarkFlagRequired("id")
	_ = moderate.MarkFlagRequired("status")

	cmd.AddCommand(moderate)
	return cmd
}

func findUser(ctx context.Context, env *Env, email string) (*models.User, error) {
	return env.Users.GetUserByEmail(ctx, models.NormalizeEmail(email))
}
