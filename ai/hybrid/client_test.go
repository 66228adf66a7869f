package hybrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatflow/chatflow/ai"
	"github.com/chatflow/chatflow/core"
)

func testConfig(host string) *ai.Config {
	return ai.NewConfig(ai.WithEmbeddingHost(host))
}

func TestEmbedTexts(t *testing.T) {
	var gotBody embedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/hybrid-embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		resp := map[string]any{
			"dense_vectors": [][]float32{{0.1, 0.2}, {0.3, 0.4}},
			"sparse_vectors": []map[string]any{
				{"indices": []uint32{1, 5}, "values": []float32{0.5, 0.7}},
				{"indices": []uint32{2}, "values": []float32{0.9}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	vectors, err := client.EmbedTexts(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, gotBody.Texts)
	require.Len(t, vectors.Dense, 2)
	require.Len(t, vectors.Sparse, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors.Dense[0])
	assert.Equal(t, []uint32{1, 5}, vectors.Sparse[0].Indices)
	assert.Equal(t, []float32{0.9}, vectors.Sparse[1].Values)
}

func TestEmbedTexts_EmptyInput(t *testing.T) {
	client, err := NewClient(testConfig("http://localhost:9"))
	require.NoError(t, err)

	_, err = client.EmbedTexts(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestEmbedTexts_TransportFailure(t *testing.T) {
	// Nothing listens on this address.
	client, err := NewClient(testConfig("http://127.0.0.1:1"))
	require.NoError(t, err)

	_, err = client.EmbedTexts(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, core.ErrTransport)
}

func TestEmbedTexts_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.EmbedTexts(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, core.ErrTransport)
}

func TestEmbedTexts_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing sparse vectors",
			body: `{"dense_vectors": [[0.1]]}`,
		},
		{
			name: "missing dense vectors",
			body: `{"sparse_vectors": [{"indices": [1], "values": [0.5]}]}`,
		},
		{
			name: "mismatched lengths",
			body: `{"dense_vectors": [[0.1], [0.2]], "sparse_vectors": [{"indices": [1], "values": [0.5]}]}`,
		},
		{
			name: "not json",
			body: `<html>oops</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewClient(testConfig(server.URL))
			require.NoError(t, err)

			_, err = client.EmbedTexts(context.Background(), []string{"text"})
			assert.ErrorIs(t, err, core.ErrBackendProtocol)
		})
	}
}
