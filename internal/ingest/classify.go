package ingest

import (
	"strings"

	"github.com/we-zayed/results-portal/internal/roster"
)

// SheetClassifier assigns workbook sheets to grade levels.
//
// Policy: strict configured-label matching. A sheet belongs to a level only
// when its normalized name equals or contains the normalized configured
// label for that level; anything else is skipped entirely. The looser
// keyword policy ("one"/"اول" anywhere in the name) would import arbitrary
// sheets as grade one, so it is not used.
type SheetClassifier struct {
	labels map[roster.GradeLevel]string // normalized expected sheet names
}

// NewSheetClassifier builds a classifier from the curriculum's sheet labels.
func NewSheetClassifier(cur Curriculum) SheetClassifier {
	labels := make(map[roster.GradeLevel]string, len(cur.SheetLabels))
	for level, label := range cur.SheetLabels {
		if n := Normalize(label); n != "" {
			labels[roster.GradeLevel(level)] = n
		}
	}
	return SheetClassifier{labels: labels}
}

// Classify returns the grade level of a sheet, or false when the sheet
// matches no configured label and must be skipped.
func (c SheetClassifier) Classify(sheetName string) (roster.GradeLevel, bool) {
	name := Normalize(sheetName)
	if name == "" {
		return "", false
	}
	// Check grade one before grade two so workbooks whose labels overlap
	// resolve deterministically.
	for _, level := range []roster.GradeLevel{roster.GradeOne, roster.GradeTwo} {
		label, ok := c.labels[level]
		if !ok {
			continue
		}
		if strings.Contains(name, label) {
			return level, true
		}
	}
	return "", false
}
