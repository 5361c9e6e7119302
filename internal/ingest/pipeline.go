package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/we-zayed/results-portal/internal/roster"
)

// SheetReport records what one sheet contributed to an ingest run.
type SheetReport struct {
	Name     string            `json:"name"`
	Level    roster.GradeLevel `json:"gradeLevel,omitempty"`
	Imported int               `json:"imported"`
	Skipped  string            `json:"skipped,omitempty"` // reason, empty when imported
}

// Result is the outcome of one ingest run. How to present an empty result
// is the caller's decision; the pipeline never bakes in user-facing text.
type Result struct {
	Students []roster.Student `json:"students"`
	Sheets   []SheetReport    `json:"sheets"`
}

// Empty reports whether the run produced no usable records. Callers keep
// their previous dataset in that case.
func (r Result) Empty() bool { return len(r.Students) == 0 }

// Pipeline orchestrates classification, extraction, and mapping over all
// sheets of a workbook.
type Pipeline struct {
	cur        Curriculum
	classifier SheetClassifier
}

// NewPipeline creates a pipeline for the given curriculum.
func NewPipeline(cur Curriculum) *Pipeline {
	return &Pipeline{cur: cur, classifier: NewSheetClassifier(cur)}
}

// IngestReader decodes an xlsx workbook from r and ingests every sheet.
// Decode failures are the only errors; per-sheet and per-row problems are
// excluded locally and reflected in the result's sheet reports.
func (p *Pipeline) IngestReader(r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return p.ingestWorkbook(f), nil
}

func (p *Pipeline) ingestWorkbook(f *excelize.File) Result {
	var result Result

	for _, name := range f.GetSheetList() {
		report := SheetReport{Name: name}

		level, ok := p.classifier.Classify(name)
		if !ok {
			report.Skipped = "unclassified"
			result.Sheets = append(result.Sheets, report)
			continue
		}
		report.Level = level

		grid, err := f.GetRows(name)
		if err != nil {
			slog.Warn("failed to read sheet", "sheet", name, "error", err)
			report.Skipped = "unreadable"
			result.Sheets = append(result.Sheets, report)
			continue
		}

		n := p.ingestGrid(grid, level, &result.Students)
		if n < 0 {
			report.Skipped = "no header row"
		} else {
			report.Imported = n
		}
		result.Sheets = append(result.Sheets, report)
	}

	slog.Info("workbook ingested",
		"sheets", len(result.Sheets),
		"students", len(result.Students),
	)
	return result
}

// IngestCSV ingests a single CSV grid. Published cloud sheets export one
// table with no sheet name, so the grade level comes from the request.
func (p *Pipeline) IngestCSV(r io.Reader, level roster.GradeLevel) (Result, error) {
	if !level.Valid() {
		return Result{}, fmt.Errorf("%w: grade level is required for CSV ingestion", ErrInvalidRequest)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // result exports have ragged rows
	grid, err := reader.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("read csv: %w", err)
	}

	var result Result
	report := SheetReport{Name: "csv", Level: level}

	n := p.ingestGrid(grid, level, &result.Students)
	if n < 0 {
		report.Skipped = "no header row"
	} else {
		report.Imported = n
	}
	result.Sheets = append(result.Sheets, report)
	return result, nil
}

// ingestGrid maps a raw grid into students, appending to out. It returns
// the number imported, or -1 when no header row was found. Each grid gets
// its own mapper so record IDs never collide when two sheets classify to
// the same grade level.
func (p *Pipeline) ingestGrid(grid [][]string, level roster.GradeLevel, out *[]roster.Student) int {
	table, ok := ExtractTable(grid, p.cur)
	if !ok {
		return -1
	}

	mapper := NewRecordMapper(p.cur)
	imported := 0
	for i, row := range table.Rows {
		student, ok := mapper.MapRow(table, row, level, i)
		if !ok {
			continue
		}
		*out = append(*out, student)
		imported++
	}
	return imported
}
