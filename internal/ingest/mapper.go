package ingest

import (
	"crypto/rand"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/we-zayed/results-portal/internal/roster"
)

const (
	defaultSeatingNumber = "0"
	defaultClass         = "-"
	minNationalIDDigits  = 10
)

// RecordMapper converts raw data rows into Student records. One mapper is
// created per ingest run; its batch nonce is embedded in every record ID so
// IDs stay unique across repeated imports in the same session.
type RecordMapper struct {
	cur   Curriculum
	batch string
}

// NewRecordMapper creates a mapper with a fresh batch nonce.
func NewRecordMapper(cur Curriculum) RecordMapper {
	b := make([]byte, 6)
	rand.Read(b)
	return RecordMapper{cur: cur, batch: fmt.Sprintf("%x", b)}
}

// MapRow maps one data row to a Student. The second return is false when
// the row carries no valid national ID; such rows are dropped whole — no
// partial or placeholder student is ever emitted.
//
// rowIdx is the row's position beneath the header (zero-based); headerRow
// is the header's zero-based index in the sheet grid. Together they give
// the one-based sheet row used in name placeholders.
func (m RecordMapper) MapRow(table Table, row []string, level roster.GradeLevel, rowIdx int) (roster.Student, bool) {
	raw, _ := table.Header.Value(row, m.cur.Fields.NationalID)
	nid := digitsOnly(raw)
	if len(nid) < minNationalIDDigits {
		return roster.Student{}, false
	}

	sheetRow := table.HeaderRow + rowIdx + 2
	name := m.resolveName(table, row, sheetRow)

	seating, ok := table.Header.Value(row, m.cur.Fields.Seating)
	if !ok || strings.TrimSpace(seating) == "" {
		seating = defaultSeatingNumber
	}
	class, ok := table.Header.Value(row, m.cur.Fields.Class)
	if !ok || strings.TrimSpace(class) == "" {
		class = defaultClass
	}

	subjects := m.cur.SubjectsFor(level)
	grades := make([]roster.SubjectGrade, len(subjects))
	total := 0
	for i, subj := range subjects {
		score := m.resolveScore(table, row, subj)
		status := roster.StatusFail
		if score >= m.cur.PassMark() {
			status = roster.StatusPass
		}
		grades[i] = roster.SubjectGrade{
			Name:     subj.Name,
			Score:    score,
			MaxScore: m.cur.MaxScore,
			Status:   status,
		}
		total += score
	}

	return roster.Student{
		ID:            fmt.Sprintf("%s-%d-%s", level, rowIdx, m.batch),
		Name:          name,
		SeatingNumber: strings.TrimSpace(seating),
		NationalID:    nid,
		Class:         strings.TrimSpace(class),
		GradeLevel:    level,
		Grades:        grades,
		GPA:           gpa(total, len(subjects), m.cur.MaxScore),
	}, true
}

func (m RecordMapper) resolveName(table Table, row []string, sheetRow int) string {
	raw, ok := table.Header.Value(row, m.cur.Fields.Name)
	name := strings.TrimSpace(raw)
	if !ok || len([]rune(name)) <= 2 {
		// Placeholder embeds the sheet row so placeholders stay
		// distinguishable from each other.
		return fmt.Sprintf("طالب صف %d", sheetRow)
	}
	return name
}

func (m RecordMapper) resolveScore(table Table, row []string, subj Subject) int {
	raw, ok := table.Header.Value(row, subj.Keywords)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	score := int(math.Round(v))
	if score < 0 {
		return 0
	}
	if score > m.cur.MaxScore {
		return m.cur.MaxScore
	}
	return score
}

// gpa maps the score total onto a 4.0 scale, rounded to two decimals.
func gpa(total, subjectCount, maxScore int) float64 {
	if subjectCount == 0 || maxScore == 0 {
		return 0
	}
	g := float64(total) / float64(subjectCount*maxScore) * 4
	return math.Round(g*100) / 100
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
