package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// stringArray scans a TEXT[] column selected through to_json(...)
type stringArray []string

func (a *stringArray) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = []string{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into string array", src)
	}

	out := []string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode string array: %w", err)
	}
	*a = out
	return nil
}
