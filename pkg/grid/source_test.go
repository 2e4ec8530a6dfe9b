package grid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filegrid/pkg/tree"
)

func TestFetchSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name": "docs", "kind": "folder", "children": [{"name": "a.txt"}]},
			{"name": "readme.md"}
		]`))
	}))
	defer srv.Close()

	nodes, err := FetchSource(srv.URL)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "docs", nodes[0].Name)
	assert.Equal(t, tree.KindFolder, nodes[0].EffectiveKind())
	require.Len(t, nodes[0].Children, 1)
	assert.Equal(t, tree.KindFile, nodes[0].Children[0].EffectiveKind())
}

func TestFetchSourceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := FetchSource(srv.URL)
	require.Error(t, err)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	}))
	defer bad.Close()

	_, err = FetchSource(bad.URL)
	require.Error(t, err)
}

func TestNewWithSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name": "remote.txt"}]`))
	}))
	defer srv.Close()

	ctrl, err := New(Options{Source: srv.URL}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, ctrl.Store().Len())
	assert.NotNil(t, itemByName(t, ctrl, "remote.txt"))
}
