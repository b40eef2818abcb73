package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `questions:
  - id: q1
    prompt: "Pick B"
    options:
      - { id: q1-a, label: "A" }
      - { id: q1-b, label: "B" }
    correctOptionId: q1-b
  - id: q2
    prompt: "Pick A"
    options:
      - { id: q2-a, label: "A" }
      - { id: q2-b, label: "B" }
    correctOptionId: q2-a
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", catalog.Len())
	}
	if catalog.Questions[0].ID != "q1" || catalog.Questions[1].ID != "q2" {
		t.Fatalf("file order lost: %+v", catalog.Questions)
	}
	if catalog.Questions[0].CorrectOptionID != "q1-b" {
		t.Fatalf("correct option not parsed: %+v", catalog.Questions[0])
	}
}

func TestLoadCatalogRejectsBrokenAnswerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `questions:
  - id: q1
    prompt: "Pick B"
    options:
      - { id: q1-a, label: "A" }
    correctOptionId: nope
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
