//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/config"
	"github.com/stemsi/faculty-backend/internal/database"
	"github.com/stemsi/faculty-backend/internal/model"
)

const defaultBaseURL = "http://localhost:5000"

var (
	baseURL   string
	studentID int
	fileName  string
	client    = &http.Client{Timeout: 10 * time.Second}
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// The server under test must share DB_DRIVER / DATABASE_URL with us.
	if err := cleanDatabase(); err != nil {
		fmt.Printf("Setup failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func cleanDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, config.Load(), zerolog.Nop())
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	tables := []string{"student_marks", "students", "attendance", "assignments", "notes", "syllabus", "events"}
	for _, table := range tables {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("cleanup %s: %w", table, err)
		}
	}
	return nil
}

func TestE2EFlow(t *testing.T) {
	t.Run("Health", func(t *testing.T) {
		resp := mustDo(t, http.MethodGet, "/health", nil, "")
		expectStatus(t, resp, http.StatusOK)
	})

	t.Run("CreateStudent", func(t *testing.T) {
		resp := postForm(t, "/add_student", url.Values{
			"name": {"E2E Student"}, "roll_number": {"E2E001"}, "year": {"SE"},
		})
		expectStatus(t, resp, http.StatusCreated)

		var body struct {
			Data struct {
				Student model.Student `json:"student"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		studentID = body.Data.Student.ID
		if studentID == 0 {
			t.Fatal("student id missing")
		}
	})

	t.Run("CreateDuplicateStudent", func(t *testing.T) {
		resp := postForm(t, "/add_student", url.Values{
			"name": {"Someone Else"}, "roll_number": {"E2E001"}, "year": {"SE"},
		})
		expectStatus(t, resp, http.StatusConflict)
	})

	t.Run("UpdateMarksTwice", func(t *testing.T) {
		id := strconv.Itoa(studentID)
		expectStatus(t, postForm(t, "/update_marks/"+id, url.Values{"subject": {"Math"}, "marks": {"88"}}), http.StatusOK)
		resp := postForm(t, "/update_marks/"+id, url.Values{"subject": {"Physics"}, "marks": {"B+"}})
		expectStatus(t, resp, http.StatusOK)

		var body struct {
			Data struct {
				Marks map[string]string `json:"marks"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if body.Data.Marks["Math"] != "88" || body.Data.Marks["Physics"] != "B+" {
			t.Fatalf("marks = %v", body.Data.Marks)
		}
	})

	t.Run("RecordAttendance", func(t *testing.T) {
		resp := postForm(t, "/attendance", url.Values{
			"date": {"2024-03-15"}, "year": {"SE"}, "subject": {"Data Structures"},
			"status_E2E Student": {"Present"},
		})
		expectStatus(t, resp, http.StatusCreated)

		resp = mustDo(t, http.MethodGet, "/get_attendance_chart_data", nil, "")
		expectStatus(t, resp, http.StatusOK)
		var chart model.AttendanceChart
		decodeJSON(t, resp, &chart)
		// No absences yet, so the chart shows its placeholder.
		if chart.Present != 1 || chart.Absent != 2 {
			t.Fatalf("chart = %+v", chart)
		}
	})

	t.Run("UploadAssignment", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("title", "E2E Lab")
		_ = mw.WriteField("year", "SE")
		_ = mw.WriteField("subject", "Data Structures")
		fw, _ := mw.CreateFormFile("file", "e2e lab.txt")
		_, _ = fw.Write([]byte("hello from e2e"))
		_ = mw.Close()

		resp := mustDo(t, http.MethodPost, "/assignments", &buf, mw.FormDataContentType())
		expectStatus(t, resp, http.StatusCreated)

		var body struct {
			Data struct {
				Assignment model.Document `json:"assignment"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		fileName = body.Data.Assignment.Filename
		if fileName != "e2e_lab.txt" {
			t.Fatalf("filename = %q", fileName)
		}
	})

	t.Run("DownloadAssignment", func(t *testing.T) {
		resp := mustDo(t, http.MethodGet, "/download/"+fileName, nil, "")
		expectStatus(t, resp, http.StatusOK)
		if got := readBody(resp); got != "hello from e2e" {
			t.Fatalf("body = %q", got)
		}
	})

	t.Run("SyllabusProgress", func(t *testing.T) {
		expectStatus(t, mustDo(t, http.MethodGet, "/init_syllabus", nil, ""), http.StatusOK)

		resp := mustDo(t, http.MethodGet, "/syllabus_tracker", nil, "")
		expectStatus(t, resp, http.StatusOK)
		var body struct {
			Data struct {
				Topics []model.SyllabusTopic `json:"topics"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if len(body.Data.Topics) == 0 {
			t.Fatal("no topics after init")
		}

		payload, _ := json.Marshal(map[string]interface{}{"topic_id": body.Data.Topics[0].ID, "completed": "true"})
		resp = mustDo(t, http.MethodPost, "/update_syllabus", bytes.NewReader(payload), "application/json")
		expectStatus(t, resp, http.StatusOK)

		resp = mustDo(t, http.MethodGet, "/syllabus_progress", nil, "")
		expectStatus(t, resp, http.StatusOK)
		var p model.SyllabusProgress
		decodeJSON(t, resp, &p)
		if p.Completed != 1 || p.Total != len(body.Data.Topics) || p.Percentage <= 0 {
			t.Fatalf("progress = %+v", p)
		}
	})

	t.Run("DeleteStudent", func(t *testing.T) {
		id := strconv.Itoa(studentID)
		expectStatus(t, mustDo(t, http.MethodGet, "/delete_student/"+id, nil, ""), http.StatusOK)
		expectStatus(t, mustDo(t, http.MethodGet, "/student_marks/"+id, nil, ""), http.StatusNotFound)
	})
}

func mustDo(t *testing.T, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	return mustDo(t, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status %d (want %d): %s", resp.StatusCode, want, readBody(resp))
	}
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}
