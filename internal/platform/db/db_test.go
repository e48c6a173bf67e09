package db

import "testing"

func TestRebind(t *testing.T) {
	q := "INSERT INTO runs (id, backend) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING;"

	if got := Rebind(DriverPostgres, q); got != q {
		t.Fatalf("postgres query changed: %q", got)
	}
	want := "INSERT INTO runs (id, backend) VALUES (?, ?) ON CONFLICT (id) DO NOTHING;"
	if got := Rebind(DriverSQLite, q); got != want {
		t.Fatalf("Rebind() = %q, want %q", got, want)
	}
}

func TestOpenDriver(t *testing.T) {
	db, err := OpenDriver("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	if _, err := OpenDriver("oracle", "x"); err == nil {
		t.Fatalf("expected an error for an unknown driver")
	}
}
