package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"chat-importer/internal/domain/dto"
)

type fakeServer struct {
	mu        sync.Mutex
	chunks    map[int][]byte
	failOnce  map[int]bool
	finalized bool
	init      dto.InitiateUploadRequest
	users     map[string]bool
}

func (s *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload/init", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.users[r.Header.Get("X-User-ID")] = true
		s.mu.Unlock()
		json.NewDecoder(r.Body).Decode(&s.init)
		json.NewEncoder(w).Encode(dto.InitiateUploadResponse{UploadID: "u-1", ProgressID: "p-1"})
	})
	mux.HandleFunc("/upload/chunk", func(w http.ResponseWriter, r *http.Request) {
		index, _ := strconv.Atoi(r.FormValue("chunk_index"))
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failOnce[index] {
			delete(s.failOnce, index)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "internal_error"})
			return
		}
		f, _, err := r.FormFile("chunk")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		s.chunks[index] = data
		json.NewEncoder(w).Encode(dto.UploadChunkResponse{Success: true, UploadedChunks: len(s.chunks)})
	})
	mux.HandleFunc("/upload/finalize", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.finalized = true
		s.mu.Unlock()
		json.NewEncoder(w).Encode(dto.FinalizeUploadResponse{Success: true, ProgressID: "p-1", RedirectURL: "/imports/p-1"})
	})
	mux.HandleFunc("/imports/p-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dto.ImportProgressResponse{ID: "p-1", Status: "completed", Percent: 100})
	})
	return mux
}

func TestRunUploadSendsEveryChunk(t *testing.T) {
	srv := &fakeServer{chunks: map[int][]byte{}, failOnce: map[int]bool{1: true}, users: map[string]bool{}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "export.txt")
	content := []byte("0123456789abcdefghij-tail")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	uo := &uploadOptions{chunkSize: 10, parallel: 2, retries: 3, checksum: true, wait: true}
	if err := runUpload(context.Background(), newAPIClient(ts.URL, "alice"), path, uo); err != nil {
		t.Fatalf("runUpload: %v", err)
	}

	if srv.init.TotalChunks != 3 || srv.init.Filename != "export.txt" || srv.init.Checksum == "" {
		t.Fatalf("unexpected init: %+v", srv.init)
	}
	if !srv.users["alice"] {
		t.Fatal("X-User-ID was not sent")
	}
	var joined []byte
	for i := 0; i < 3; i++ {
		joined = append(joined, srv.chunks[i]...)
	}
	if string(joined) != string(content) {
		t.Fatalf("server assembled %q", joined)
	}
	if !srv.finalized {
		t.Fatal("finalize was not called")
	}
}

func TestUploadWithRetryStopsOnClientErrors(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "unauthorized", Message: "not yours"})
	}))
	defer ts.Close()

	_, err := uploadWithRetry(context.Background(), newAPIClient(ts.URL, "bob"), "u-1", 0, []byte("x"), 3)
	ae, ok := err.(*apiError)
	if !ok || ae.Status != http.StatusForbidden || ae.Body.Error != "unauthorized" {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
