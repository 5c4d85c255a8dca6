package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/ports/outbound"
)

func tempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "food.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not really a jpeg"), 0o644))
	return path
}

func TestClient_Predict_RanksByConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		_, _, err := r.FormFile("image")
		require.NoError(t, err)

		// deliberately unsorted
		json.NewEncoder(w).Encode(predictionResponse{
			Predictions: []outbound.Prediction{
				{Name: "banana", Confidence: 0.12},
				{Name: "apple", Confidence: 0.95},
				{Name: "pear", Confidence: 0.4},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, zap.NewNop())
	require.True(t, client.Ready())

	predictions, err := client.Predict(context.Background(), tempImage(t))
	require.NoError(t, err)
	require.Len(t, predictions, 3)

	assert.Equal(t, "apple", predictions[0].Name)
	assert.Equal(t, 0.95, predictions[0].Confidence)
	assert.Equal(t, "pear", predictions[1].Name)
	assert.Equal(t, "banana", predictions[2].Name)
}

func TestClient_Predict_EmptyListOnUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(predictionResponse{})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())

	predictions, err := client.Predict(context.Background(), tempImage(t))
	require.NoError(t, err)
	assert.Empty(t, predictions)
}

func TestClient_Predict_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())

	_, err := client.Predict(context.Background(), tempImage(t))
	assert.Error(t, err)
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient(Config{}, zap.NewNop())

	assert.False(t, client.Ready())
	_, err := client.Predict(context.Background(), "whatever.jpg")
	assert.Error(t, err)
}
