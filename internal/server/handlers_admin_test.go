package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func multipartWorkbook(t *testing.T, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("workbook", "results.xlsx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

func TestHandleImportUpload(t *testing.T) {
	srv, store, _ := newTestServer(t)

	body, contentType := multipartWorkbook(t, buildTestWorkbook(t))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Admin-Password", testAdminPassword)

	rec := doRequest(t, srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Imported int `json:"imported"`
	}
	decodeBody(t, rec, &resp)
	if resp.Imported != 1 {
		t.Errorf("imported = %d, want 1", resp.Imported)
	}

	if n, _ := store.Count(context.Background()); n != 1 {
		t.Errorf("store count = %d, want 1", n)
	}
	if _, found, _ := store.Lookup(context.Background(), "29901011234567", "1"); !found {
		t.Error("imported student should be findable by national ID")
	}
}

func TestHandleImportUpload_GarbagePayload(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedStore(t, store)

	body, contentType := multipartWorkbook(t, []byte("this is not a workbook"))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Admin-Password", testAdminPassword)

	rec := doRequest(t, srv, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}

	// The previous dataset must survive a failed import.
	if n, _ := store.Count(context.Background()); n != 1 {
		t.Errorf("store count = %d, want the seeded dataset intact", n)
	}
}

func TestHandleImportUpload_MissingFileField(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("note", "no file here")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Admin-Password", testAdminPassword)

	rec := doRequest(t, srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleImportRemote(t *testing.T) {
	srv, store, _ := newTestServer(t)

	csv := "الاسم,الرقم القومي,عربي,دين,math,وطنيه,physics,فنيه,انجليزي\n" +
		"أحمد محمد علي,29901011234567,45,48,42,40,38,44,46\n"
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(csv))
	}))
	defer upstream.Close()

	payload := `{"url": "` + upstream.URL + `/results.csv", "grade_level": "1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/import/remote", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Password", testAdminPassword)

	rec := doRequest(t, srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	if n, _ := store.Count(context.Background()); n != 1 {
		t.Errorf("store count = %d, want 1", n)
	}
}

func TestHandleImportRemote_UpstreamDown(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedStore(t, store)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer upstream.Close()

	payload := `{"url": "` + upstream.URL + `/results.csv", "grade_level": "1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/import/remote", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Password", testAdminPassword)

	rec := doRequest(t, srv, req)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if n, _ := store.Count(context.Background()); n != 1 {
		t.Errorf("store count = %d, want the seeded dataset intact", n)
	}
}

func TestHandleImportRemote_ClientErrorsAre400(t *testing.T) {
	srv, _, _ := newTestServer(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"unsupported scheme", `{"url": "ftp://example.com/x.csv", "grade_level": "1"}`},
		{"csv without grade level", `{"url": "http://127.0.0.1:1/x.csv", "format": "csv"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/import/remote", strings.NewReader(tt.payload))
			req.Header.Set("X-Admin-Password", testAdminPassword)

			rec := doRequest(t, srv, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %q)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleImportRemote_MissingURL(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/import/remote", strings.NewReader(`{}`))
	req.Header.Set("X-Admin-Password", testAdminPassword)

	rec := doRequest(t, srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestApplyResult_EmptyRunPreservesDataset(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedStore(t, store)

	// A workbook with no usable rows: valid xlsx, unclassifiable sheet.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("الاسم,الرقم القومي\nطالب,123\n")) // ID too short, row dropped
	}))
	defer upstream.Close()

	payload := `{"url": "` + upstream.URL + `/x.csv", "grade_level": "1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/import/remote", strings.NewReader(payload))
	req.Header.Set("X-Admin-Password", testAdminPassword)

	rec := doRequest(t, srv, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %q)", rec.Code, rec.Body.String())
	}
	if n, _ := store.Count(context.Background()); n != 1 {
		t.Errorf("store count = %d, want the seeded dataset intact", n)
	}
}
