package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-auth-service/internal/domain/entity"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
	status   int
}

func (f *fakeES) handler(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(b))
	status := f.status
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
		return
	}
	if strings.HasSuffix(r.URL.Path, "/_search") {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"u1","_source":{"id":"u1","email":"ann@example.com","name":"Ann","avatar_url":"","created_at":"2026-03-01T10:00:00Z"}}]}}`))
		return
	}
	_, _ = w.Write([]byte(`{"result":"created"}`))
}

func newIndex(t *testing.T, f *fakeES) *UserIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)
	es, err := NewClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	return NewUserIndex(es, "users")
}

func TestIndex_SendsPublicFieldsOnly(t *testing.T) {
	f := &fakeES{}
	ix := newIndex(t, f)

	u := &entity.User{ID: "u1", Email: "ann@example.com", Name: "Ann", Password: "$2a$12$secret", CreatedAt: time.Now()}
	require.NoError(t, ix.Index(context.Background(), u))

	require.Len(t, f.requests, 1)
	assert.Equal(t, "PUT /users/_doc/u1", f.requests[0])
	assert.NotContains(t, f.bodies[0], "secret")

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.bodies[0]), &doc))
	assert.Equal(t, "ann@example.com", doc["email"])
	assert.NotContains(t, doc, "updated_at")
}

func TestIndex_ErrorStatus(t *testing.T) {
	f := &fakeES{status: http.StatusBadRequest}
	ix := newIndex(t, f)

	err := ix.Index(context.Background(), &entity.User{ID: "u1"})
	assert.Error(t, err)
}

func TestRemove_ToleratesMissingDocument(t *testing.T) {
	f := &fakeES{status: http.StatusNotFound}
	ix := newIndex(t, f)

	require.NoError(t, ix.Remove(context.Background(), "u1"))
	assert.Equal(t, "DELETE /users/_doc/u1", f.requests[0])
}

func TestSearch(t *testing.T) {
	f := &fakeES{}
	ix := newIndex(t, f)

	hits, err := ix.Search(context.Background(), "ann", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "u1", hits[0].ID)
	assert.Equal(t, "Ann", hits[0].Name)
	assert.Nil(t, hits[0].UpdatedAt)

	assert.True(t, strings.HasSuffix(f.requests[0], "/users/_search"))
	assert.Contains(t, f.bodies[0], `"email^2"`)
	assert.Contains(t, f.bodies[0], `"size":5`)
}
