// Package upload wraps a tus resumable-upload endpoint and turns its
// notification channels into a single ordered event stream the grid
// controller can consume. The tus handler does the protocol work
// (chunking, offsets, resumption); this package only binds grid metadata
// onto its events and finalizes completed files.
package upload

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/otiai10/copy"
	"github.com/sirupsen/logrus"
	"github.com/tus/tusd/pkg/filestore"
	"github.com/tus/tusd/pkg/handler"
)

// Stage identifies a point in one upload's lifecycle.
type Stage int

const (
	// StageAdded fires when the upload is created (tus POST).
	StageAdded Stage = iota
	// StageProgress fires as chunks arrive.
	StageProgress
	// StageComplete fires once the final chunk landed and the file was
	// moved into place.
	StageComplete
	// StageError fires for terminated or rejected uploads.
	StageError
)

// Event is one lifecycle notification, carrying the grid metadata the
// client attached to the upload.
type Event struct {
	Stage    Stage
	ID       string
	Name     string // filename from upload metadata
	FolderID int64  // drop target folder id from upload metadata
	Bytes    int64
	Total    int64
	Path     string // final location, set on StageComplete
	Err      error
}

// Options configures the upload endpoint.
type Options struct {
	// Dir holds partial uploads while they are in flight.
	Dir string
	// DestDir is where completed uploads are moved.
	DestDir string
	// BasePath is the URL prefix the handler is mounted under.
	BasePath string
	// MaxSize rejects uploads larger than this many bytes; 0 means no cap.
	MaxSize int64
	// AcceptTypes limits uploads to the given filename extensions
	// (".txt", ".png", ...); empty accepts everything.
	AcceptTypes []string
}

// Server is a mounted tus endpoint plus the goroutine that multiplexes its
// notification channels into Events.
type Server struct {
	opts    Options
	handler *handler.Handler
	events  chan Event
	done    chan struct{}
	log     *logrus.Entry
}

// NewServer builds the tus handler and starts forwarding its
// notifications. Callers drain Events until Close.
func NewServer(opts Options, log *logrus.Logger) (*Server, error) {
	if opts.Dir == "" {
		opts.Dir = "./uploads"
	}
	if opts.BasePath == "" {
		opts.BasePath = "/upload/tus/"
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("upload: create upload dir: %w", err)
	}
	if opts.DestDir != "" {
		if err := os.MkdirAll(opts.DestDir, 0755); err != nil {
			return nil, fmt.Errorf("upload: create destination dir: %w", err)
		}
	}

	store := filestore.New(opts.Dir)
	composer := handler.NewStoreComposer()
	store.UseIn(composer)

	h, err := handler.NewHandler(handler.Config{
		StoreComposer:           composer,
		BasePath:                opts.BasePath,
		MaxSize:                 opts.MaxSize,
		NotifyCreatedUploads:    true,
		NotifyUploadProgress:    true,
		NotifyCompleteUploads:   true,
		NotifyTerminatedUploads: true,
	})
	if err != nil {
		return nil, fmt.Errorf("upload: create tus handler: %w", err)
	}

	if log == nil {
		log = logrus.New()
	}
	s := &Server{
		opts:    opts,
		handler: h,
		events:  make(chan Event, 16),
		done:    make(chan struct{}),
		log:     log.WithField("component", "upload"),
	}
	go s.forward()
	return s, nil
}

// Handler returns the http.Handler to mount at Options.BasePath. The tus
// handler routes relative paths, so the whole prefix including its
// trailing slash is stripped first.
func (s *Server) Handler() http.Handler {
	return http.StripPrefix(s.opts.BasePath, s.handler)
}

// Mount registers the handler on mux under Options.BasePath.
func (s *Server) Mount(mux *http.ServeMux) {
	mux.Handle(s.opts.BasePath, s.Handler())
}

// Events is the ordered lifecycle stream.
func (s *Server) Events() <-chan Event {
	return s.events
}

// Close stops event forwarding. The HTTP handler itself is torn down with
// its server.
func (s *Server) Close() {
	close(s.done)
}

func (s *Server) forward() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.handler.CreatedUploads:
			info := eventInfo(ev)
			if !s.accepts(info.Name) {
				info.Stage = StageError
				info.Err = fmt.Errorf("upload: file type not accepted: %s", info.Name)
				s.emit(info)
				continue
			}
			info.Stage = StageAdded
			s.emit(info)
		case ev := <-s.handler.UploadProgress:
			info := eventInfo(ev)
			info.Stage = StageProgress
			s.emit(info)
		case ev := <-s.handler.CompleteUploads:
			info := eventInfo(ev)
			final, err := s.finalize(ev)
			if err != nil {
				s.log.WithError(err).Warn("failed to finalize upload")
				info.Stage = StageError
				info.Err = err
			} else {
				info.Stage = StageComplete
				info.Path = final
			}
			s.emit(info)
		case ev := <-s.handler.TerminatedUploads:
			info := eventInfo(ev)
			info.Stage = StageError
			info.Err = fmt.Errorf("upload: terminated: %s", info.ID)
			s.emit(info)
		}
	}
}

func (s *Server) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Server) accepts(name string) bool {
	if len(s.opts.AcceptTypes) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range s.opts.AcceptTypes {
		if strings.ToLower(a) == ext {
			return true
		}
	}
	return false
}

// finalize moves the finished upload out of the tus store into DestDir
// under its original filename.
func (s *Server) finalize(ev handler.HookEvent) (string, error) {
	if s.opts.DestDir == "" {
		return filepath.Join(s.opts.Dir, ev.Upload.ID), nil
	}
	name := ev.Upload.MetaData["filename"]
	if name == "" {
		name = ev.Upload.ID
	}
	src := filepath.Join(s.opts.Dir, ev.Upload.ID)
	dst := filepath.Join(s.opts.DestDir, filepath.Base(name))
	if err := copy.Copy(src, dst); err != nil {
		return "", fmt.Errorf("upload: move %s into place: %w", ev.Upload.ID, err)
	}
	if err := os.RemoveAll(src); err != nil {
		return "", fmt.Errorf("upload: remove staged upload %s: %w", ev.Upload.ID, err)
	}
	// The tus info file is bookkeeping for the staged upload; drop it too.
	os.Remove(src + ".info")
	return dst, nil
}

func eventInfo(ev handler.HookEvent) Event {
	folderID, _ := strconv.ParseInt(ev.Upload.MetaData["folderId"], 10, 64)
	return Event{
		ID:       ev.Upload.ID,
		Name:     ev.Upload.MetaData["filename"],
		FolderID: folderID,
		Bytes:    ev.Upload.Offset,
		Total:    ev.Upload.Size,
	}
}
