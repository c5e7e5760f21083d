package persona

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRoster(t *testing.T) {
	roster := DefaultRoster()
	if len(roster) != 5 {
		t.Fatalf("expected 5 personas, got %d", len(roster))
	}
	for _, p := range roster {
		if p.Name == "" {
			t.Error("persona with empty name")
		}
		if p.Profile == "" {
			t.Errorf("persona %s has empty profile", p.Name)
		}
	}
}

func TestLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	doc := `personas:
  - name: Napoleon
    profile: Short-tempered strategist.
  - name: Cleopatra
    profile: Regal and persuasive.
  - name: Napoleon
    profile: Short-tempered strategist.
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	roster, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Duplicate entries are frequency weighting, so all three rows survive.
	if len(roster) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(roster))
	}
	if roster[0].Name != "Napoleon" || roster[1].Name != "Cleopatra" {
		t.Errorf("unexpected roster order: %+v", roster)
	}
}

func TestLoad_EmptyRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte("personas: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for empty roster")
	}
}

func TestLoad_MissingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	doc := `personas:
  - profile: No name here.
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for persona without name")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNames_Deduplicates(t *testing.T) {
	roster := []Persona{
		{Name: "A"}, {Name: "B"}, {Name: "A"}, {Name: "C"},
	}
	names := Names(roster)
	if len(names) != 3 {
		t.Fatalf("expected 3 distinct names, got %d", len(names))
	}
	if names[0] != "A" || names[1] != "B" || names[2] != "C" {
		t.Errorf("unexpected order: %v", names)
	}
}
