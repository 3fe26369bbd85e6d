package storage

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dipaca/autolavado/internal/lib/apperr"
)

// Duplicate key errors. They match apperr.ErrValidation.
var (
	ErrDuplicateEmail = apperr.Validation("Email already exists")
	ErrDuplicateCI    = apperr.Validation("CI already exists")
	ErrDuplicatePlaca = apperr.Validation("Placa already exists")
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
	codeInvalidDatetime     = "22007"
	codeDatetimeOverflow    = "22008"
	codeInvalidText         = "22P02"
)

var duplicates = map[string]error{
	"users_email_key":     ErrDuplicateEmail,
	"clientes_ci_key":     ErrDuplicateCI,
	"trabajadores_ci_key": ErrDuplicateCI,
	"vehiculos_placa_key": ErrDuplicatePlaca,
}

// translate classifies driver errors. notFound is returned for sql.ErrNoRows
// and may be nil when a missing row cannot happen.
func translate(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		if dup, ok := duplicates[pgErr.ConstraintName]; ok {
			return dup
		}
		return apperr.Wrap(apperr.ErrValidation, "Record already exists", err)
	case codeForeignKeyViolation:
		return apperr.Wrap(apperr.ErrValidation, "Referenced record does not exist", err)
	case codeCheckViolation, codeNumericOutOfRange:
		return apperr.Wrap(apperr.ErrValidation, "Value out of range", err)
	case codeInvalidDatetime, codeDatetimeOverflow, codeInvalidText:
		return apperr.Wrap(apperr.ErrValidation, "Invalid value format", err)
	}
	return err
}
