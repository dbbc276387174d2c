// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the catalog store on PostgreSQL. Every catalog
// transaction runs at SERIALIZABLE isolation; serialization failures are
// reported as transaction conflicts and never retried here.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"postershop/internal/apperr"
	"postershop/internal/catalog"
	"postershop/internal/models"
)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL catalog store.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ catalog.Store      = (*Store)(nil)
	_ catalog.OrderStore = (*Store)(nil)
)

// New returns a Store using pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InTx runs fn inside a SERIALIZABLE transaction and commits it when fn
// succeeds.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx catalog.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{q: tx}); err != nil {
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// classify maps PostgreSQL failures onto the catalog error codes.
func classify(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return apperr.Wrap(apperr.TransactionConflict, err, "concurrent update, try again")
		case "23505":
			return apperr.Wrap(apperr.AlreadyExists, err, "record already exists")
		case "23514":
			return apperr.Wrap(apperr.Validation, err, "constraint %s violated", pgErr.ConstraintName)
		}
	}
	return err
}

func groupTable(kind models.GroupKind) (string, error) {
	switch kind {
	case models.KindCategory:
		return "categories", nil
	case models.KindCollection:
		return "collections", nil
	}
	return "", fmt.Errorf("unknown group kind %q", kind)
}

// pgTx adapts a pgx transaction to catalog.Tx.
type pgTx struct {
	q querier
}
