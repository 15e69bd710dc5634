// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package memstore implements store.Repository in memory. It honours the
// same contracts as the PostgreSQL stores: referential checks, cascade
// deletes, atomic view increments and all-or-nothing transactions.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Store is an in-memory Repository. The zero value is not usable; call New.
type Store struct {
	mu   *sync.Mutex
	data *data
	now  func() time.Time

	// inTx is set on the Repository handed to an Atomic callback. The lock
	// is already held, so its methods must not take it again.
	inTx bool
}

type data struct {
	posts    map[uuid.UUID]postRow
	comments map[uuid.UUID]commentRow
	users    map[string]models.User
	seq      int64
}

// seq orders rows that share a timestamp by insertion.
type postRow struct {
	post models.Post
	seq  int64
}

type commentRow struct {
	comment models.Comment
	seq     int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		mu: &sync.Mutex{},
		data: &data{
			posts:    make(map[uuid.UUID]postRow),
			comments: make(map[uuid.UUID]commentRow),
			users:    make(map[string]models.User),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.Repository = (*Store)(nil)

func (s *Store) Posts() store.PostRepository       { return postRepo{s} }
func (s *Store) Comments() store.CommentRepository { return commentRepo{s} }
func (s *Store) Users() store.UserRepository       { return UserRepo{s} }

// AddUser inserts or replaces an account. Tests and the in-memory dev mode
// use it in place of the identity provider. A duplicate email or an
// unknown role is rejected as by Upsert.
func (s *Store) AddUser(u models.User) (models.User, error) {
	saved, err := UserRepo{s}.Upsert(context.Background(), &u)
	if err != nil {
		return models.User{}, err
	}
	return *saved, nil
}

// Atomic runs fn with exclusive access to the data. Any error returned by
// fn, or a panic, restores the state captured before fn ran.
func (s *Store) Atomic(ctx context.Context, _ store.TxOptions, fn func(store.Repository) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctxErr(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	committed := false
	defer func() {
		if !committed {
			*s.data = *snapshot
		}
	}()

	tx := &Store{mu: s.mu, data: s.data, now: s.now, inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

// lock takes the mutex unless the caller already holds it through Atomic.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) nextSeq() int64 {
	s.data.seq++
	return s.data.seq
}

// clone copies the maps. Rows are values and are replaced, never mutated
// in place, so a shallow copy is a full snapshot.
func (d *data) clone() *data {
	c := &data{
		posts:    make(map[uuid.UUID]postRow, len(d.posts)),
		comments: make(map[uuid.UUID]commentRow, len(d.comments)),
		users:    make(map[string]models.User, len(d.users)),
		seq:      d.seq,
	}
	for k, v := range d.posts {
		c.posts[k] = v
	}
	for k, v := range d.comments {
		c.comments[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	return c
}

// ctxErr mirrors how the database reports a cancelled request.
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &apperr.Error{Kind: apperr.KindUnavailable, Message: "storage unavailable", Detail: err.Error(), Err: err}
	}
	return nil
}
