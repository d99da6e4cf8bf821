package swingsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/swinglab/pkg/logger"
)

// HTTPClient wraps http.Client with the JSON helpers the runner needs.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// GetJSON fetches url and decodes a 200 response into v.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, bytes.TrimSpace(body))
	}
	return json.Unmarshal(body, v)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// submitSwings posts swings concurrently to POST /v1/analyses.
func submitSwings(ctx context.Context, config *Config, swings []Swing, stats *Stats) {
	log := logger.Get()
	log.Info(ctx, "submitting swings", logger.Int("swings", len(swings)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/v1/analyses"

	var accepted, duplicate, rejected, failed, submitted atomic.Int64

	swingCh := make(chan Swing, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for swing := range swingCh {
				outcome := submitSingleSwing(ctx, client, url, swing)
				n := submitted.Add(1)
				switch outcome {
				case outcomeAccepted:
					accepted.Add(1)
				case outcomeDuplicate:
					duplicate.Add(1)
				case outcomeRejected:
					rejected.Add(1)
				default:
					failed.Add(1)
				}
				if config.Verbose {
					log.Debug(ctx, "swing submitted",
						logger.String("id", swing.Request.ID),
						logger.String("outcome", outcome),
						logger.Int("submitted", int(n)))
				}
			}
		}()
	}

	go func() {
		defer close(swingCh)
		for _, swing := range swings {
			select {
			case <-ctx.Done():
				return
			case swingCh <- swing:
			}
		}
	}()

	wg.Wait()

	stats.SwingsSubmitted = int(submitted.Load())
	stats.SwingsAccepted = int(accepted.Load())
	stats.SwingsDuplicate = int(duplicate.Load())
	stats.SwingsRejected = int(rejected.Load())
	stats.SwingsFailed = int(failed.Load())

	log.Info(ctx, "swing submission completed",
		logger.Int("accepted", stats.SwingsAccepted),
		logger.Int("duplicate", stats.SwingsDuplicate),
		logger.Int("rejected", stats.SwingsRejected),
		logger.Int("failed", stats.SwingsFailed))
}

func submitSingleSwing(ctx context.Context, client *HTTPClient, url string, swing Swing) string {
	resp, err := client.Post(ctx, url, swing.Request)
	if err != nil {
		return outcomeFailed
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return outcomeFailed
	}

	switch resp.StatusCode {
	case StatusAccepted:
		return outcomeAccepted
	case StatusOK:
		var a Analysis
		if err := json.Unmarshal(body, &a); err == nil && a.Duplicate {
			return outcomeDuplicate
		}
		return outcomeAccepted
	case http.StatusTooManyRequests:
		return outcomeRejected
	default:
		return outcomeFailed
	}
}
