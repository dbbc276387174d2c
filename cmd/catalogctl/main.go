// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Command catalogctl runs maintenance tasks against the catalog store:
// schema migration, collection seeding, ledger reconciliation and issuing
// bearer tokens for local development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"postershop/internal/auth"
	"postershop/internal/backend"
	"postershop/internal/catalog"
	"postershop/internal/config"
	"postershop/internal/database"
)

const usage = `usage: catalogctl <command> [flags]

commands:
  migrate            apply pending schema migrations
  seed-collections   create missing collection records
  reconcile          rebuild category and collection ledgers from the posters
  cache-log          show recent browse cache invalidations (-n, postgres only)
  token              sign a bearer token (-uid, -email, -role, -ttl)
`

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "catalogctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch args[0] {
	case "migrate":
		// Opening the store applies its migrations.
		return withManager(ctx, cfg, func(*catalog.Manager) error {
			fmt.Fprintln(out, "migrations applied")
			return nil
		})

	case "seed-collections":
		return withManager(ctx, cfg, func(m *catalog.Manager) error {
			created, err := database.SeedCollections(ctx, m)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "created %d collection records\n", created)
			return nil
		})

	case "reconcile":
		return withManager(ctx, cfg, func(m *catalog.Manager) error {
			report, err := m.Reconcile(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		})

	case "cache-log":
		return showCacheLog(ctx, cfg, args[1:], out)

	case "token":
		return issueToken(cfg, args[1:], out)

	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func withManager(ctx context.Context, cfg *config.Config, fn func(*catalog.Manager) error) error {
	be, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()
	return fn(catalog.NewManager(be.Store))
}

func showCacheLog(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("cache-log", flag.ContinueOnError)
	fs.SetOutput(out)
	n := fs.Int("n", 20, "number of entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n <= 0 {
		return fmt.Errorf("cache-log: -n must be positive")
	}

	be, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	entries, err := be.RecentInvalidations(ctx, *n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-8s %-10s %s\n", e.InvalidatedAt.Format(time.RFC3339), e.Action, e.EntityType, e.EntityID)
	}
	return nil
}

func issueToken(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(out)
	uid := fs.String("uid", "", "caller id (required)")
	email := fs.String("email", "", "caller email")
	role := fs.String("role", string(auth.RoleSeller), "seller or admin")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *uid == "" {
		return fmt.Errorf("token: -uid is required")
	}
	r := auth.Role(*role)
	if r != auth.RoleSeller && r != auth.RoleAdmin {
		return fmt.Errorf("token: unknown role %q", *role)
	}
	if *ttl <= 0 {
		return fmt.Errorf("token: -ttl must be positive")
	}

	tok, err := auth.NewVerifier(cfg.JWTSecret).Sign(auth.Caller{UID: *uid, Email: *email, Role: r}, *ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(out, tok)
	return nil
}
