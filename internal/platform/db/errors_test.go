package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestNotFound_MapsNoRows(t *testing.T) {
	if err := NotFound(pgx.ErrNoRows); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	wrapped := fmt.Errorf("scan: %w", pgx.ErrNoRows)
	if err := NotFound(wrapped); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrapped ErrNoRows, got %v", err)
	}
}

func TestNotFound_PassesOtherErrors(t *testing.T) {
	other := errors.New("connection reset")
	if err := NotFound(other); err != other {
		t.Errorf("expected original error, got %v", err)
	}
	if err := NotFound(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "patient_email_key"})
	name, ok := UniqueViolation(err)
	if !ok {
		t.Fatal("expected unique violation")
	}
	if name != "patient_email_key" {
		t.Errorf("expected constraint patient_email_key, got %s", name)
	}

	if _, ok := UniqueViolation(&pgconn.PgError{Code: "23503"}); ok {
		t.Error("foreign key violation reported as unique violation")
	}
	if _, ok := UniqueViolation(errors.New("boom")); ok {
		t.Error("plain error reported as unique violation")
	}
}

func TestAffectedOne(t *testing.T) {
	if err := AffectedOne(pgconn.NewCommandTag("DELETE 0"), nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for zero rows, got %v", err)
	}
	if err := AffectedOne(pgconn.NewCommandTag("DELETE 1"), nil); err != nil {
		t.Errorf("expected nil for one row, got %v", err)
	}
	boom := errors.New("boom")
	if err := AffectedOne(pgconn.CommandTag{}, boom); err != boom {
		t.Errorf("expected passthrough error, got %v", err)
	}
}

func TestLookup_RejectsBadIdentifiers(t *testing.T) {
	l := NewLookup(nil)
	if _, err := l.Exists(context.Background(), "patient; DROP TABLE users", "email", "a@x.com", ""); err == nil {
		t.Error("expected error for invalid table identifier")
	}
	if _, err := l.Exists(context.Background(), "patient", "Email", "a@x.com", ""); err == nil {
		t.Error("expected error for invalid column identifier")
	}
}

func TestContainsPattern(t *testing.T) {
	tests := map[string]string{
		"ann":    "%ann%",
		"":       "%%",
		"50%":    `%50\%%`,
		"a_b":    `%a\_b%`,
		`back\s`: `%back\\s%`,
	}
	for in, want := range tests {
		if got := ContainsPattern(in); got != want {
			t.Errorf("ContainsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}
