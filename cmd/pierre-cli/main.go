// Command pierre-cli is the operational binary spec.md §6 names:
// user/token/tenant management without going through the HTTP admin API,
// for first-boot and break-glass operations. Exit codes follow spec.md
// §6 exactly: 0 success, 1 user error, 2 config error, 3 storage error.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/config"
	"github.com/pierre-fitness/pierre-server/internal/store"
	"github.com/pierre-fitness/pierre-server/internal/store/storepg"
	"github.com/pierre-fitness/pierre-server/internal/store/storesqlite"
)

const (
	exitOK      = 0
	exitUsage   = 1
	exitConfig  = 2
	exitStorage = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 2 {
		printUsage()
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return exitConfig
	}

	st, closeFn, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage error: %v\n", err)
		return exitStorage
	}
	defer closeFn()

	ctx := context.Background()
	noun, verb := args[0], args[1]
	rest := args[2:]

	switch noun {
	case "user":
		return runUser(ctx, st, cfg, verb, rest)
	case "token":
		return runToken(ctx, st, cfg, verb, rest)
	case "tenant":
		return runTenant(ctx, st, verb, rest)
	default:
		printUsage()
		return exitUsage
	}
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		repo, err := storepgConnect(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	case "sqlite":
		repo, err := storesqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.Database.Driver)
	}
}

func storepgConnect(dsn string) (store.Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(storepg.Schema); err != nil {
		return nil, err
	}
	return storepg.New(db), nil
}

func runUser(ctx context.Context, st store.Store, cfg *config.Config, verb string, args []string) int {
	switch verb {
	case "create":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: pierre-cli user create <email> <password> [tenant_id]")
			return exitUsage
		}
		email, password := args[0], args[1]
		tenantID := "default"
		if len(args) > 2 {
			tenantID = args[2]
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "user error: %v\n", err)
			return exitUsage
		}
		id, err := st.CreateUser(ctx, store.User{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			Tier:         store.TierStarter,
			Status:       store.UserStatusPending,
			Role:         store.RoleUser,
			TenantID:     tenantID,
			CreatedAt:    time.Now(),
			LastActive:   time.Now(),
			AuthProvider: store.AuthProviderEmail,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "storage error: %v\n", err)
			return exitStorage
		}
		fmt.Printf("created user %s (status=pending)\n", id)
		return exitOK

	case "list":
		status := store.UserStatusPending
		if len(args) > 0 {
			status = store.UserStatus(args[0])
		}
		users, err := st.GetUsersByStatus(ctx, status)
		if err != nil {
			fmt.Fprintf(os.Stderr, "storage error: %v\n", err)
			return exitStorage
		}
		for _, u := range users {
			fmt.Printf("%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Status, u.TenantID)
		}
		return exitOK

	case "approve":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "usage: pierre-cli user approve <user_id>")
			return exitUsage
		}
		approver := "pierre-cli"
		if err := st.UpdateUserStatus(ctx, args[0], store.UserStatusActive, &approver); err != nil {
			fmt.Fprintf(os.Stderr, "storage error: %v\n", err)
			return exitStorage
		}
		fmt.Printf("approved user %s\n", args[0])
		return exitOK

	default:
		fmt.Fprintf(os.Stderr, "unknown user subcommand %q\n", verb)
		return exitUsage
	}
}

func runToken(ctx context.Context, st store.Store, cfg *config.Config, verb string, args []string) int {
	switch verb {
	case "create":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "usage: pierre-cli token create <service_name> [--super-admin]")
			return exitUsage
		}
		serviceName := args[0]
		superAdmin := len(args) > 1 && args[1] == "--super-admin"

		keys, err := auth.NewKeyManager()
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			return exitConfig
		}
		if cfg.AdminJWT.PrivateKeyPEM != "" {
			if err := keys.LoadPrimary(cfg.AdminJWT.PrivateKeyPEM, "primary"); err != nil {
				fmt.Fprintf(os.Stderr, "config error: %v\n", err)
				return exitConfig
			}
		}
		adminJWT := auth.NewAdminJWTService(keys, cfg.AdminJWT.TokenTTL, cfg.AdminJWT.Issuer)
		apiKeys := auth.NewAPIKeyHasher(cfg.OAuth.MasterEncryptionKey)

		perms := store.PermProvisionKeys | store.PermRevokeKeys | store.PermListKeys
		if superAdmin {
			perms = store.AllPermissions()
		}

		tokenID := uuid.NewString()
		signed, err := adminJWT.GenerateToken(tokenID, serviceName, perms, superAdmin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "user error: %v\n", err)
			return exitUsage
		}
		if err := st.CreateAdminToken(ctx, store.AdminToken{
			TokenID:      tokenID,
			ServiceName:  serviceName,
			Permissions:  perms,
			IsSuperAdmin: superAdmin,
			JWTTokenHash: apiKeys.Hash(signed),
			TokenPrefix:  tokenID[:8],
			IssuedAt:     time.Now(),
			IsActive:     true,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "storage error: %v\n", err)
			return exitStorage
		}
		fmt.Printf("token_id: %s\nadmin_jwt: %s\n", tokenID, signed)
		return exitOK

	case "revoke":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "usage: pierre-cli token revoke <token_id>")
			return exitUsage
		}
		if err := st.DeactivateAdminToken(ctx, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "storage error: %v\n", err)
			return exitStorage
		}
		fmt.Printf("revoked token %s\n", args[0])
		return exitOK

	default:
		fmt.Fprintf(os.Stderr, "unknown token subcommand %q\n", verb)
		return exitUsage
	}
}

func runTenant(ctx context.Context, st store.Store, verb string, args []string) int {
	switch verb {
	case "create":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: pierre-cli tenant create <id> <name>")
			return exitUsage
		}
		id, err := st.CreateTenant(ctx, store.Tenant{ID: args[0], Name: args[1], CreatedAt: time.Now()})
		if err != nil {
			fmt.Fprintf(os.Stderr, "storage error: %v\n", err)
			return exitStorage
		}
		fmt.Printf("created tenant %s\n", id)
		return exitOK

	default:
		fmt.Fprintf(os.Stderr, "unknown tenant subcommand %q\n", verb)
		return exitUsage
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: pierre-cli <noun> <verb> [args]

  user create <email> <password> [tenant_id]
  user list [status]
  user approve <user_id>
  token create <service_name> [--super-admin]
  token revoke <token_id>
  tenant create <id> <name>`)
}
