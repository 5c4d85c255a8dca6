// Package classifier wraps the food image classification service. The
// model is a black box behind HTTP: one multipart upload in, a ranked
// prediction list out.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/ports/outbound"
)

// Config holds the classifier service settings. An empty BaseURL disables
// classification entirely; the chat layer degrades to text-only replies.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements outbound.ImageClassifier over the classifier's HTTP
// API.
type Client struct {
	client  *resty.Client
	baseURL string
	logger  *zap.Logger
}

// NewClient creates a classifier client. No connection is made until the
// first prediction.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	var rc *resty.Client
	if cfg.BaseURL != "" {
		rc = resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout)
	}

	return &Client{
		client:  rc,
		baseURL: cfg.BaseURL,
		logger:  logger.Named("classifier"),
	}
}

// Ready reports whether a classifier endpoint is configured.
func (c *Client) Ready() bool {
	return c.client != nil
}

// predictionResponse is the classifier's wire format.
type predictionResponse struct {
	Predictions []outbound.Prediction `json:"predictions"`
}

// Predict uploads the image and returns ranked predictions, confidence
// descending. An empty list without an error means the model could not
// recognize the image.
func (c *Client) Predict(ctx context.Context, imagePath string) ([]outbound.Prediction, error) {
	if !c.Ready() {
		return nil, fmt.Errorf("classifier not configured")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetFile("image", imagePath).
		Post("/predict")
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode())
	}

	var parsed predictionResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	predictions := parsed.Predictions
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Confidence > predictions[j].Confidence
	})

	c.logger.Debug("image classified",
		zap.String("image", imagePath),
		zap.Int("predictions", len(predictions)))
	return predictions, nil
}
