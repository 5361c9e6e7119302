package ingest

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/we-zayed/results-portal/internal/roster"
)

const fixtureCSV = "الاسم,الرقم القومي,عربي,دين,math,وطنيه,physics,فنيه,انجليزي\n" +
	"أحمد محمد علي,29901011234567,45,48,42,40,38,44,46\n"

func TestFetcher_FetchCSV(t *testing.T) {
	var gotCacheBust string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCacheBust = r.URL.Query().Get("cb")
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(fixtureCSV))
	}))
	defer srv.Close()

	f := NewFetcher(NewPipeline(DefaultCurriculum()))
	result, err := f.Fetch(context.Background(), srv.URL+"/results.csv", FormatAuto, roster.GradeOne)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotCacheBust == "" {
		t.Error("request should carry a cache-defeating query parameter")
	}
	if len(result.Students) != 1 {
		t.Fatalf("len(Students) = %d, want 1", len(result.Students))
	}
	if result.Students[0].NationalID != "29901011234567" {
		t.Errorf("NationalID = %q", result.Students[0].NationalID)
	}
}

func TestFetcher_FetchXLSX(t *testing.T) {
	workbook := buildWorkbook(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Write(workbook)
	}))
	defer srv.Close()

	f := NewFetcher(NewPipeline(DefaultCurriculum()))
	result, err := f.Fetch(context.Background(), srv.URL+"/results.xlsx", FormatAuto, "")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(result.Students) != 1 {
		t.Errorf("len(Students) = %d, want 1", len(result.Students))
	}
}

func TestFetcher_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(NewPipeline(DefaultCurriculum()))
	if _, err := f.Fetch(context.Background(), srv.URL, FormatCSV, roster.GradeOne); err == nil {
		t.Error("Fetch() should fail on a non-200 response")
	}
}

func TestFetcher_BadScheme(t *testing.T) {
	f := NewFetcher(NewPipeline(DefaultCurriculum()))
	_, err := f.Fetch(context.Background(), "ftp://example.com/x.csv", FormatCSV, roster.GradeOne)
	if err == nil {
		t.Fatal("Fetch() should reject non-http(s) URLs")
	}
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest so callers can blame the request", err)
	}
}

func TestFetcher_HostAllowlist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(fixtureCSV))
	}))
	defer srv.Close()

	f := NewFetcher(NewPipeline(DefaultCurriculum()), WithAllowedHosts([]string{"results.example.com"}))
	_, err := f.Fetch(context.Background(), srv.URL+"/results.csv", FormatCSV, roster.GradeOne)
	if err == nil {
		t.Fatal("Fetch() should reject a host outside the allowlist")
	}
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}

	open := NewFetcher(NewPipeline(DefaultCurriculum()), WithAllowedHosts(nil))
	if _, err := open.Fetch(context.Background(), srv.URL+"/results.csv", FormatCSV, roster.GradeOne); err != nil {
		t.Errorf("empty allowlist should permit any host, got %v", err)
	}
}

func TestFetcher_CSVRequiresLevelBeforeFetch(t *testing.T) {
	f := NewFetcher(NewPipeline(DefaultCurriculum()))
	// Unroutable host: the level check must fire before any network call.
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/x.csv", FormatCSV, "")
	if err == nil {
		t.Fatal("Fetch() should require a grade level for declared CSV sources")
	}
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		declared    RemoteFormat
		path        string
		contentType string
		want        RemoteFormat
	}{
		{FormatCSV, "/x.xlsx", "", FormatCSV},
		{FormatAuto, "/export.CSV", "", FormatCSV},
		{FormatAuto, "/export", "text/csv; charset=utf-8", FormatCSV},
		{FormatAuto, "/export", "application/octet-stream", FormatXLSX},
		{FormatAuto, "/book.xlsx", "", FormatXLSX},
	}
	for _, tt := range tests {
		if got := resolveFormat(tt.declared, tt.path, tt.contentType); got != tt.want {
			t.Errorf("resolveFormat(%q, %q, %q) = %q, want %q", tt.declared, tt.path, tt.contentType, got, tt.want)
		}
	}
}

func TestFetcher_DecodeFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 64))
	}))
	defer srv.Close()

	f := NewFetcher(NewPipeline(DefaultCurriculum()))
	if _, err := f.Fetch(context.Background(), srv.URL+"/garbage.xlsx", FormatXLSX, ""); err == nil {
		t.Error("Fetch() should surface workbook decode failures")
	}
}
