// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apperr

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// FromStorage translates an error returned by the persistence layer into
// the taxonomy. Already classified errors pass through; nil stays nil.
// The original error text is preserved as Detail.
func FromStorage(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromPgError(pgErr, err)
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		errors.As(err, &netErr),
		pgconn.Timeout(err):
		return wrap(KindUnavailable, "Database service unavailable.", err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return wrap(KindUnavailable, "Cannot connect to the database server.", err)
	}

	return wrap(KindInternal, "Database request failed.", err)
}

func fromPgError(pgErr *pgconn.PgError, err error) error {
	switch pgErr.Code {
	case "23505":
		return wrap(KindConflict, "Duplicate entry. Unique constraint failed.", err)
	case "23503":
		return wrap(KindValidation, "Invalid relation or foreign key constraint.", err)
	case "23502":
		return wrap(KindValidation, "Missing required field.", err)
	case "23514", "22P02", "22001", "22003", "22007":
		return wrap(KindValidation, "Invalid data provided. Missing or incorrect field types.", err)
	case "28000", "28P01":
		return wrap(KindUnavailable, "Invalid database credentials.", err)
	case "42501":
		return wrap(KindUnavailable, "Database access denied.", err)
	}
	// Connection exceptions, operator intervention (shutdown), insufficient resources.
	if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57") || strings.HasPrefix(pgErr.Code, "53") {
		return wrap(KindUnavailable, "Database service unavailable.", err)
	}
	return wrap(KindInternal, "Database request failed.", err)
}

func wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Detail: err.Error(), Err: err}
}
