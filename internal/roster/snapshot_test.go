package roster

import (
	"encoding/json"
	"testing"
)

func TestDecodeSnapshot_Valid(t *testing.T) {
	data, err := json.Marshal(sampleStudents())
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	students, err := decodeSnapshot(data)
	if err != nil {
		t.Fatalf("decodeSnapshot() error = %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("len(students) = %d, want 2", len(students))
	}
	if students[0].NationalID != "29901011234567" {
		t.Errorf("NationalID = %q", students[0].NationalID)
	}
	if students[0].Grades[0].Status != StatusPass {
		t.Errorf("Status = %q, want %q", students[0].Grades[0].Status, StatusPass)
	}
}

func TestDecodeSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{{{"},
		{"wrong shape", `{"students": []}`},
		{"missing national id", `[{"id": "1-0-a", "name": "x", "gradeLevel": "1", "grades": []}]`},
		{"short national id", `[{"id": "1-0-a", "name": "x", "nationalId": "123", "gradeLevel": "1", "grades": []}]`},
		{"bad grade level", `[{"id": "1-0-a", "name": "x", "nationalId": "29901011234567", "gradeLevel": "9", "grades": []}]`},
		{"bad status", `[{"id": "1-0-a", "name": "x", "nationalId": "29901011234567", "gradeLevel": "1", "grades": [{"name": "عربي", "score": 10, "maxScore": 50, "status": "Maybe"}]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeSnapshot([]byte(tt.data)); err == nil {
				t.Error("decodeSnapshot() should reject the payload")
			}
		})
	}
}

func TestDecodeSnapshot_EmptyDataset(t *testing.T) {
	students, err := decodeSnapshot([]byte("[]"))
	if err != nil {
		t.Fatalf("decodeSnapshot() error = %v", err)
	}
	if len(students) != 0 {
		t.Errorf("len(students) = %d, want 0", len(students))
	}
}
