package database

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"lead-qualifier/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type esCall struct {
	method string
	path   string
	body   string
}

// fakeElasticsearch answers HEAD /<index> with headStatus and PUT /<index>
// with putStatus and putBody.
func fakeElasticsearch(t *testing.T, headStatus, putStatus int, putBody string) (*ElasticsearchClient, func() []esCall) {
	var (
		mu    sync.Mutex
		calls []esCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, esCall{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(headStatus)
		case http.MethodPut:
			w.WriteHeader(putStatus)
			_, _ = w.Write([]byte(putBody))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return c, func() []esCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]esCall(nil), calls...)
	}
}

// ==========================
// EnsureIndex
// ==========================

func TestEnsureIndex(t *testing.T) {
	const mapping = `{"mappings":{}}`

	tests := []struct {
		name       string
		headStatus int
		putStatus  int
		putBody    string
		wantPut    bool
		wantErr    bool
	}{
		{name: "already exists", headStatus: http.StatusOK},
		{name: "created", headStatus: http.StatusNotFound, putStatus: http.StatusOK, putBody: `{"acknowledged":true}`, wantPut: true},
		{
			name: "created concurrently", headStatus: http.StatusNotFound, putStatus: http.StatusBadRequest,
			putBody: `{"error":{"type":"resource_already_exists_exception"}}`, wantPut: true,
		},
		{
			name: "create rejected", headStatus: http.StatusNotFound, putStatus: http.StatusBadRequest,
			putBody: `{"error":{"type":"mapper_parsing_exception"}}`, wantPut: true, wantErr: true,
		},
		{name: "cluster error", headStatus: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := fakeElasticsearch(t, tt.headStatus, tt.putStatus, tt.putBody)

			err := c.EnsureIndex(context.Background(), "webhook-attempts", mapping)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			var puts []esCall
			for _, call := range calls() {
				if call.method == http.MethodPut {
					puts = append(puts, call)
				}
			}
			if !tt.wantPut {
				assert.Empty(t, puts)
				return
			}
			require.Len(t, puts, 1)
			assert.Equal(t, "/webhook-attempts", puts[0].path)
			assert.JSONEq(t, mapping, puts[0].body)
		})
	}
}

func TestNewElasticsearch_RequiresAddresses(t *testing.T) {
	_, err := NewElasticsearch(config.ElasticsearchConfig{})
	assert.Error(t, err)
}
