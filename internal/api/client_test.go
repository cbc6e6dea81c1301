package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/synthlab/synthlink/internal/config"
	"github.com/synthlab/synthlink/internal/models"
)

func trainReq(model, dataset string) models.TrainRequest {
	return models.TrainRequest{ModelName: model, DatasetID: dataset}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.New()
	cfg.ServiceURL = server.URL
	cfg.APIKey = "test-key"

	client, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestHealthUnreachable(t *testing.T) {
	cfg := config.New()
	cfg.ServiceURL = "http://127.0.0.1:1" // nothing listens here

	client, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Health(context.Background()); err == nil {
		t.Error("expected error for unreachable service")
	}
}

func TestTrainModel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/model/train" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["model_name"] != "ctgan" || body["dataset_id"] != "d-1" {
			t.Errorf("unexpected body: %v", body)
		}

		json.NewEncoder(w).Encode(map[string]string{"job_id": "j-123"})
	}))

	jobID, err := client.TrainModel(context.Background(), trainReq("ctgan", "d-1"))
	if err != nil {
		t.Fatalf("TrainModel: %v", err)
	}
	if jobID != "j-123" {
		t.Errorf("jobID = %q, want j-123", jobID)
	}
}

func TestTrainModelMissingJobID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))

	_, err := client.TrainModel(context.Background(), trainReq("ctgan", "d-1"))
	if !errors.Is(err, ErrMissingJobID) {
		t.Fatalf("expected ErrMissingJobID, got %v", err)
	}
}

func TestTrainModelRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"unknown model"}`, http.StatusUnprocessableEntity)
	}))

	_, err := client.TrainModel(context.Background(), trainReq("bogus", "d-1"))
	if err == nil {
		t.Fatal("expected error for rejected train request")
	}
	if !strings.Contains(err.Error(), "422") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestGetJobStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/model/status/j-123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "running",
			"percent": 42.5,
			"message": "epoch 120/300",
		})
	}))

	st, err := client.GetJobStatus(context.Background(), "j-123")
	if err != nil {
		t.Fatalf("GetJobStatus: %v", err)
	}
	if st.Status != "running" {
		t.Errorf("status = %q", st.Status)
	}
	if st.Percent == nil || *st.Percent != 42.5 {
		t.Errorf("percent = %v, want 42.5", st.Percent)
	}
	if st.Message != "epoch 120/300" {
		t.Errorf("message = %q", st.Message)
	}
}

func TestGetJobStatusOmittedPercent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "pending"})
	}))

	st, err := client.GetJobStatus(context.Background(), "j-123")
	if err != nil {
		t.Fatalf("GetJobStatus: %v", err)
	}
	if st.Percent != nil {
		t.Errorf("omitted percent must decode as nil, got %v", *st.Percent)
	}
}

func TestGetJobStatusEmptyID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty job id")
	}))

	_, err := client.GetJobStatus(context.Background(), "")
	if !errors.Is(err, ErrEmptyJobID) {
		t.Fatalf("expected ErrEmptyJobID, got %v", err)
	}
}

func TestGenerate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/model/generate/j-123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("count"); got != "250" {
			t.Errorf("count = %q, want 250", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"job_id": "j-123",
			"synthetic_data": []map[string]any{
				{"age": 31, "income": 54000.5},
				{"age": 47, "income": 91200.0},
			},
		})
	}))

	result, err := client.Generate(context.Background(), "j-123", 250)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.JobID != "j-123" {
		t.Errorf("jobID = %q", result.JobID)
	}
	if len(result.SyntheticData) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.SyntheticData))
	}
	if result.SyntheticData[0]["city"] != nil {
		t.Error("unexpected field in record")
	}
}

func TestUploadDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	content := "a,b\n1,2\n3,4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/dataset/upload" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if hdr.Filename != "data.csv" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		data, _ := io.ReadAll(f)
		if string(data) != content {
			t.Errorf("uploaded content mismatch: %q", data)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"dataset_id": "d-9",
			"rows":       2,
			"columns":    2,
		})
	}))

	ds, err := client.UploadDataset(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("UploadDataset: %v", err)
	}
	if ds.DatasetID != "d-9" || ds.Rows != 2 || ds.Columns != 2 {
		t.Errorf("unexpected dataset: %+v", ds)
	}
}

func TestUploadDatasetMissingID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("a\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))

	_, err := client.UploadDataset(context.Background(), path, nil)
	if err == nil || !strings.Contains(err.Error(), "dataset_id") {
		t.Fatalf("expected missing dataset_id error, got %v", err)
	}
}
