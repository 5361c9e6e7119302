package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/we-zayed/results-portal/internal/roster"
)

// Subject is one scored subject plus the header-label variants its score
// column may be published under.
type Subject struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Fields holds the candidate labels for the non-subject columns.
type Fields struct {
	NationalID []string `yaml:"national_id"`
	Name       []string `yaml:"name"`
	Seating    []string `yaml:"seating"`
	Class      []string `yaml:"class"`
}

// Curriculum is the data half of the pipeline: expected sheet labels, the
// fixed subject list per grade level, column candidates, and scoring
// parameters. Built-in defaults match the school's published workbooks; a
// YAML file can override any of it.
type Curriculum struct {
	SheetLabels map[string]string    `yaml:"sheet_labels"` // grade level -> expected sheet name
	Subjects    map[string][]Subject `yaml:"subjects"`     // grade level -> fixed subject list
	Fields      Fields               `yaml:"fields"`
	MaxScore    int                  `yaml:"max_score"`

	// Header-row discovery keywords: a row is the header when it contains
	// at least one of each group.
	HeaderNameKeywords []string `yaml:"header_name_keywords"`
	HeaderIDKeywords   []string `yaml:"header_id_keywords"`
}

// DefaultCurriculum returns the built-in curriculum for the two secondary
// grade levels.
func DefaultCurriculum() Curriculum {
	return Curriculum{
		SheetLabels: map[string]string{
			string(roster.GradeOne): "Grade one",
			string(roster.GradeTwo): "Grade two",
		},
		Subjects: map[string][]Subject{
			string(roster.GradeOne): {
				{Name: "اللغة العربية", Keywords: []string{"عربي", "arabic"}},
				{Name: "التربية الدينية", Keywords: []string{"دين", "religion"}},
				{Name: "Advanced Math", Keywords: []string{"math", "رياضيات"}},
				{Name: "التربية الوطنية", Keywords: []string{"وطنيه", "national", "التربية الوطنية"}},
				{Name: "Advanced Physics", Keywords: []string{"physics", "فيزياء"}},
				{Name: "الدراسات الفنية التخصصية النظرية", Keywords: []string{"فنيه", "technical"}},
				{Name: "Advanced English", Keywords: []string{"انجليزي", "english"}},
			},
			string(roster.GradeTwo): {
				{Name: "اللغة العربية", Keywords: []string{"عربي", "arabic"}},
				{Name: "التربية الدينية", Keywords: []string{"دين", "religion"}},
				{Name: "الدراسات الاجتماعية", Keywords: []string{"دراسات", "social"}},
				{Name: "Advanced Physics", Keywords: []string{"physics", "فيزياء"}},
				{Name: "Advanced English", Keywords: []string{"انجليزي", "english"}},
				{Name: "Advanced Math", Keywords: []string{"math", "رياضيات"}},
				{Name: "الدراسات الفنية التخصصية النظرية", Keywords: []string{"فنيه", "technical"}},
			},
		},
		Fields: Fields{
			NationalID: []string{"الرقم القومي", "القومي", "national", "id"},
			Name:       []string{"الاسم", "name", "الطالب"},
			Seating:    []string{"جلوس", "seating", "رقم الجلوس"},
			Class:      []string{"فصل", "class", "الفصل"},
		},
		MaxScore:           50,
		HeaderNameKeywords: []string{"الاسم", "name"},
		HeaderIDKeywords:   []string{"القومي", "id", "national"},
	}
}

// LoadCurriculum overlays a YAML file onto the defaults. Only the keys
// present in the file are replaced.
func LoadCurriculum(path string) (Curriculum, error) {
	cur := DefaultCurriculum()
	if path == "" {
		return cur, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Curriculum{}, fmt.Errorf("read curriculum file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cur); err != nil {
		return Curriculum{}, fmt.Errorf("parse curriculum file: %w", err)
	}
	if err := cur.validate(); err != nil {
		return Curriculum{}, fmt.Errorf("curriculum file %s: %w", path, err)
	}
	return cur, nil
}

func (c Curriculum) validate() error {
	if c.MaxScore <= 0 {
		return fmt.Errorf("max_score must be positive, got %d", c.MaxScore)
	}
	for _, level := range []string{string(roster.GradeOne), string(roster.GradeTwo)} {
		if len(c.Subjects[level]) == 0 {
			return fmt.Errorf("no subjects configured for grade level %s", level)
		}
		if c.SheetLabels[level] == "" {
			return fmt.Errorf("no sheet label configured for grade level %s", level)
		}
	}
	return nil
}

// SubjectsFor returns the fixed subject list for a grade level.
func (c Curriculum) SubjectsFor(level roster.GradeLevel) []Subject {
	return c.Subjects[string(level)]
}

// PassMark is the minimum score counted as a pass.
func (c Curriculum) PassMark() int {
	return c.MaxScore / 2
}
