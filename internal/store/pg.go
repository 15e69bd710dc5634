// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"inkwell/internal/apperr"
)

// PG is the PostgreSQL Repository. Outside a transaction it runs each
// statement on the pool; Atomic hands fn a PG bound to a *sql.Tx.
type PG struct {
	db       *sql.DB
	tx       *sql.Tx
	posts    *PostStore
	comments *CommentStore
	users    *UserStore
}

// NewPG creates a Repository backed by the given connection pool.
func NewPG(db *sql.DB) *PG {
	return newPG(db, nil)
}

func newPG(db *sql.DB, tx *sql.Tx) *PG {
	var q querier = db
	if tx != nil {
		q = tx
	}
	return &PG{
		db:       db,
		tx:       tx,
		posts:    &PostStore{db: q},
		comments: &CommentStore{db: q},
		users:    &UserStore{db: q},
	}
}

func (s *PG) Posts() PostRepository       { return s.posts }
func (s *PG) Comments() CommentRepository { return s.comments }
func (s *PG) Users() UserRepository       { return s.users }

// Atomic runs fn inside a transaction. Read-only transactions use
// REPEATABLE READ so every query sees one snapshot; read-write
// transactions rely on row locks taken by FindForUpdate. If ctx is
// cancelled before commit the transaction is rolled back by database/sql.
func (s *PG) Atomic(ctx context.Context, opts TxOptions, fn func(Repository) error) error {
	if s.tx != nil {
		return fn(s)
	}

	txOpts := &sql.TxOptions{}
	if opts.ReadOnly {
		txOpts.Isolation = sql.LevelRepeatableRead
		txOpts.ReadOnly = true
	}

	tx, err := s.db.BeginTx(ctx, txOpts)
	if err != nil {
		return storageErr("begin transaction", err)
	}

	if err := fn(newPG(s.db, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

// storageErr wraps a database error with the operation name and classifies it.
func storageErr(op string, err error) error {
	return apperr.FromStorage(fmt.Errorf("%s: %w", op, err))
}
