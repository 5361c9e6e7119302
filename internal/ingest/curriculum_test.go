package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/we-zayed/results-portal/internal/roster"
)

func TestDefaultCurriculum(t *testing.T) {
	cur := DefaultCurriculum()

	for _, level := range []roster.GradeLevel{roster.GradeOne, roster.GradeTwo} {
		if n := len(cur.SubjectsFor(level)); n != 7 {
			t.Errorf("grade %s has %d subjects, want 7", level, n)
		}
	}
	if cur.MaxScore != 50 {
		t.Errorf("MaxScore = %d, want 50", cur.MaxScore)
	}
	if cur.PassMark() != 25 {
		t.Errorf("PassMark() = %d, want 25", cur.PassMark())
	}
	if err := cur.validate(); err != nil {
		t.Errorf("default curriculum invalid: %v", err)
	}
}

func TestLoadCurriculum_EmptyPath(t *testing.T) {
	cur, err := LoadCurriculum("")
	if err != nil {
		t.Fatalf("LoadCurriculum(\"\") error = %v", err)
	}
	if len(cur.SubjectsFor(roster.GradeOne)) != 7 {
		t.Error("empty path should yield the defaults")
	}
}

func TestLoadCurriculum_Override(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "curriculum.yaml")
	os.WriteFile(path, []byte(`
sheet_labels:
  "1": "الصف الأول"
  "2": "الصف الثاني"
max_score: 100
`), 0o644)

	cur, err := LoadCurriculum(path)
	if err != nil {
		t.Fatalf("LoadCurriculum() error = %v", err)
	}
	if cur.MaxScore != 100 {
		t.Errorf("MaxScore = %d, want overridden 100", cur.MaxScore)
	}
	if cur.PassMark() != 50 {
		t.Errorf("PassMark() = %d, want 50", cur.PassMark())
	}
	if cur.SheetLabels[string(roster.GradeOne)] != "الصف الأول" {
		t.Errorf("SheetLabels[1] = %q, want override", cur.SheetLabels[string(roster.GradeOne)])
	}
	// Keys absent from the file keep their defaults.
	if len(cur.SubjectsFor(roster.GradeTwo)) != 7 {
		t.Error("subjects should keep defaults when not overridden")
	}
}

func TestLoadCurriculum_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "curriculum.yaml")
	os.WriteFile(path, []byte("max_score: -1\n"), 0o644)

	if _, err := LoadCurriculum(path); err == nil {
		t.Error("LoadCurriculum() should reject non-positive max_score")
	}
}

func TestLoadCurriculum_MissingFile(t *testing.T) {
	if _, err := LoadCurriculum(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadCurriculum() should fail on a missing file")
	}
}
