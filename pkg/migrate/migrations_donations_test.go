package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDonationsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_donations_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no donations migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS donations",
		"CHECK (status IN ('active', 'accepted', 'picked_up', 'cancelled'))",
		"CHECK (status <> 'accepted' OR collector_phone IS NOT NULL)",
		"CHECK ((lat IS NULL) = (lon IS NULL))",
		"CREATE INDEX IF NOT EXISTS idx_donations_status_created_at",
		"DROP TABLE IF EXISTS donations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSeenFlagsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_seen_flags_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no seen_flags migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS seen_flags",
		"PRIMARY KEY (user_phone, role, donation_id, event)",
		"FOREIGN KEY (donation_id) REFERENCES donations(id) ON DELETE CASCADE",
		"CHECK (role IN ('donor', 'collector'))",
		"DROP TABLE IF EXISTS seen_flags",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
