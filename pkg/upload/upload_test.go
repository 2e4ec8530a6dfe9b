package upload

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tus/tusd/pkg/handler"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	s, err := NewServer(opts, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestNewServerCreatesDirs(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "staging")
	dest := filepath.Join(base, "files")

	newTestServer(t, Options{Dir: dir, DestDir: dest})

	for _, d := range []string{dir, dest} {
		if fi, err := os.Stat(d); err != nil || !fi.IsDir() {
			t.Errorf("directory %s was not created: %v", d, err)
		}
	}
}

func TestMountServesTusEndpoint(t *testing.T) {
	s := newTestServer(t, Options{BasePath: "/files/"})

	mux := http.NewServeMux()
	s.Mount(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	// A tus creation request must reach the handler and come back with a
	// Location for the new upload.
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/files/", nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Tus-Resumable", "1.0.0")
	req.Header.Set("Upload-Length", "5")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creation returned status %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		t.Fatal("creation response missing Location header")
	}

	// The per-upload route must resolve too.
	head, err := http.NewRequest(http.MethodHead, location, nil)
	if err != nil {
		t.Fatalf("building head request: %v", err)
	}
	head.Header.Set("Tus-Resumable", "1.0.0")
	headResp, err := http.DefaultClient.Do(head)
	if err != nil {
		t.Fatalf("head request failed: %v", err)
	}
	headResp.Body.Close()
	if headResp.StatusCode != http.StatusOK {
		t.Fatalf("head on created upload returned status %d, want %d", headResp.StatusCode, http.StatusOK)
	}
	if headResp.Header.Get("Upload-Length") != "5" {
		t.Errorf("head Upload-Length = %q, want 5", headResp.Header.Get("Upload-Length"))
	}

	// The creation notification should surface as a StageAdded event.
	ev := <-s.Events()
	if ev.Stage != StageAdded {
		t.Fatalf("event stage = %d, want StageAdded", ev.Stage)
	}
	if ev.Total != 5 {
		t.Errorf("event total = %d, want 5", ev.Total)
	}
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		file  string
		want  bool
	}{
		{"no restriction", nil, "anything.bin", true},
		{"allowed ext", []string{".txt", ".md"}, "notes.md", true},
		{"case insensitive", []string{".TXT"}, "a.txt", true},
		{"rejected ext", []string{".txt"}, "image.png", false},
		{"no ext", []string{".txt"}, "Makefile", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Options{AcceptTypes: tt.types})
			if got := s.accepts(tt.file); got != tt.want {
				t.Errorf("accepts(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestEventInfoParsesMetadata(t *testing.T) {
	ev := eventInfo(handler.HookEvent{
		Upload: handler.FileInfo{
			ID:     "abc123",
			Offset: 42,
			Size:   100,
			MetaData: handler.MetaData{
				"filename": "report.pdf",
				"folderId": "7",
			},
		},
	})

	if ev.ID != "abc123" || ev.Name != "report.pdf" {
		t.Errorf("identity fields wrong: %+v", ev)
	}
	if ev.FolderID != 7 {
		t.Errorf("folderID = %d, want 7", ev.FolderID)
	}
	if ev.Bytes != 42 || ev.Total != 100 {
		t.Errorf("progress fields wrong: %+v", ev)
	}
}

func TestEventInfoMissingFolder(t *testing.T) {
	ev := eventInfo(handler.HookEvent{
		Upload: handler.FileInfo{ID: "x", MetaData: handler.MetaData{}},
	})
	if ev.FolderID != 0 {
		t.Errorf("folderID = %d, want 0 for missing metadata", ev.FolderID)
	}
}

func TestFinalizeMovesFileIntoPlace(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "staging")
	dest := filepath.Join(base, "files")
	s := newTestServer(t, Options{Dir: dir, DestDir: dest})

	staged := filepath.Join(dir, "upload1")
	if err := os.WriteFile(staged, []byte("payload"), 0644); err != nil {
		t.Fatalf("staging file: %v", err)
	}
	if err := os.WriteFile(staged+".info", []byte("{}"), 0644); err != nil {
		t.Fatalf("staging info file: %v", err)
	}

	final, err := s.finalize(handler.HookEvent{
		Upload: handler.FileInfo{
			ID:       "upload1",
			MetaData: handler.MetaData{"filename": "report.pdf"},
		},
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if final != filepath.Join(dest, "report.pdf") {
		t.Errorf("final path = %s", final)
	}
	data, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("reading finalized file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("finalized content = %q", data)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Error("staged upload not removed")
	}
	if _, err := os.Stat(staged + ".info"); !os.IsNotExist(err) {
		t.Error("staged info file not removed")
	}
}

func TestFinalizeWithoutDestKeepsStagedPath(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, Options{Dir: dir})

	final, err := s.finalize(handler.HookEvent{
		Upload: handler.FileInfo{ID: "upload2"},
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if final != filepath.Join(dir, "upload2") {
		t.Errorf("final path = %s, want staged location", final)
	}
}
