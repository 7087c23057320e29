package store

import "testing"

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://u@db/ratings", "pgx5://u@db/ratings"},
		{"pgx5://already", "pgx5://already"},
	}
	for _, tt := range tests {
		if got := migrationURL(tt.in); got != tt.want {
			t.Fatalf("migrationURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
