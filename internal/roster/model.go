// Package roster holds the student result model and the stores that keep
// the working dataset (in-memory, PostgreSQL, and a Redis snapshot).
package roster

// GradeLevel identifies one of the two secondary-school curricula.
type GradeLevel string

const (
	GradeOne GradeLevel = "1"
	GradeTwo GradeLevel = "2"
)

// Valid reports whether the level is one of the two known curricula.
func (g GradeLevel) Valid() bool {
	return g == GradeOne || g == GradeTwo
}

// ParseGradeLevel converts a request value into a GradeLevel.
func ParseGradeLevel(s string) (GradeLevel, bool) {
	switch s {
	case "1", "one", "level-one":
		return GradeOne, true
	case "2", "two", "level-two":
		return GradeTwo, true
	}
	return "", false
}

// GradeStatus is the derived pass/fail state of one subject.
type GradeStatus string

const (
	StatusPass GradeStatus = "Pass"
	StatusFail GradeStatus = "Fail"
)

// SubjectGrade is one scored subject. Immutable once computed.
type SubjectGrade struct {
	Name     string      `json:"name"`
	Score    int         `json:"score"`
	MaxScore int         `json:"maxScore"`
	Status   GradeStatus `json:"status"`
}

// Student is one learner's result record for a single import batch.
type Student struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	SeatingNumber string         `json:"seatingNumber"`
	NationalID    string         `json:"nationalId"`
	Class         string         `json:"class"`
	GradeLevel    GradeLevel     `json:"gradeLevel"`
	Grades        []SubjectGrade `json:"grades"`
	GPA           float64        `json:"gpa"`
}
