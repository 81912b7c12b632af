package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gcmn-library/backend/pkg/migrate"
)

func TestLibrarySchemaContainsUniquenessGuards(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_library_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no library schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE library_card_applications",
		"CREATE UNIQUE INDEX library_card_applications_card_number_key",
		"lower(card_number)",
		"CREATE UNIQUE INDEX library_card_applications_email_key",
		"CREATE UNIQUE INDEX students_card_id_key ON students (card_id)",
		"CREATE TABLE card_application_events",
		"DROP TABLE users",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}
