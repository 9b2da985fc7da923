package tablestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/hireflowdev/interview-assistant/pkg/config"
)

// Record is one row in a named collection. Field names are owned by the
// deployment, not by this client, which is why the submission engine probes
// for them instead of assuming a schema.
type Record map[string]interface{}

// Client talks to the generic tabular backend. Collections are addressed by
// name and filtered by field equality only.
type Client interface {
	// List returns up to limit records matching all filters.
	List(ctx context.Context, collection string, filters map[string]string, limit int) ([]Record, error)

	// Create inserts a record. Schema rejections come back as *RejectionError.
	Create(ctx context.Context, collection string, record Record) (Record, error)

	// Update patches the record with the given id.
	Update(ctx context.Context, collection string, id string, patch Record) (Record, error)
}

// listResponse is the backend's list envelope.
type listResponse struct {
	Records []Record `json:"records"`
}

// restyClient is the production implementation.
type restyClient struct {
	http       *resty.Client
	maxRetries int
	logger     *zap.Logger
}

// NewClient builds a tablestore client from config. With UseMock set it
// returns an in-memory implementation so the rest of the system can run
// without a live backend.
func NewClient(cfg *config.TablestoreConfig, logger *zap.Logger) Client {
	if cfg.UseMock {
		if logger != nil {
			logger.Info("🧪 Tablestore client running in mock mode")
		}
		return NewMockClient()
	}

	// Bearer auth rides on the transport so every request carries it.
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	rc := resty.NewWithClient(httpClient).
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &restyClient{
		http:       rc,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// List returns up to limit records matching all filters.
func (c *restyClient) List(ctx context.Context, collection string, filters map[string]string, limit int) ([]Record, error) {
	req := c.http.R().SetContext(ctx)
	for field, value := range filters {
		req.SetQueryParam(fmt.Sprintf("filter[%s]", field), value)
	}
	if limit > 0 {
		req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
	}

	resp, err := c.execute(ctx, func() (*resty.Response, error) {
		return req.Get(fmt.Sprintf("/collections/%s/records", collection))
	})
	if err != nil {
		return nil, fmt.Errorf("tablestore list %s: %w", collection, err)
	}
	if resp.IsError() {
		return nil, classifyRejection(resp.StatusCode(), resp.Body())
	}

	var out listResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("tablestore list %s: decode response: %w", collection, err)
	}
	return out.Records, nil
}

// Create inserts a record into the collection.
func (c *restyClient) Create(ctx context.Context, collection string, record Record) (Record, error) {
	resp, err := c.execute(ctx, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(record).
			Post(fmt.Sprintf("/collections/%s/records", collection))
	})
	if err != nil {
		return nil, fmt.Errorf("tablestore create %s: %w", collection, err)
	}
	if resp.IsError() {
		rej := classifyRejection(resp.StatusCode(), resp.Body())
		if c.logger != nil {
			c.logger.Debug("Tablestore rejected create",
				zap.String("collection", collection),
				zap.String("kind", string(rej.Kind)),
				zap.String("field", rej.Field),
				zap.Int("status", rej.StatusCode),
			)
		}
		return nil, rej
	}

	var created Record
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		return nil, fmt.Errorf("tablestore create %s: decode response: %w", collection, err)
	}
	return created, nil
}

// Update patches the record with the given id.
func (c *restyClient) Update(ctx context.Context, collection string, id string, patch Record) (Record, error) {
	resp, err := c.execute(ctx, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(patch).
			Patch(fmt.Sprintf("/collections/%s/records/%s", collection, id))
	})
	if err != nil {
		return nil, fmt.Errorf("tablestore update %s/%s: %w", collection, id, err)
	}
	if resp.IsError() {
		return nil, classifyRejection(resp.StatusCode(), resp.Body())
	}

	var updated Record
	if err := json.Unmarshal(resp.Body(), &updated); err != nil {
		return nil, fmt.Errorf("tablestore update %s/%s: decode response: %w", collection, id, err)
	}
	return updated, nil
}

// execute runs one request with retries on network failures and gateway
// errors. Schema rejections (4xx) pass straight through: retrying a payload
// the backend refused by shape would only produce the same refusal, and the
// submission engine needs to see the rejection exactly once.
func (c *restyClient) execute(ctx context.Context, fn func() (*resty.Response, error)) (*resty.Response, error) {
	var resp *resty.Response

	operation := func() error {
		var err error
		resp, err = fn()
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("⚠️ Tablestore request failed, will retry", zap.Error(err))
			}
			return err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			err = fmt.Errorf("tablestore returned status %d", resp.StatusCode())
			if c.logger != nil {
				c.logger.Warn("⚠️ Tablestore gateway error, will retry",
					zap.Int("status", resp.StatusCode()),
				)
			}
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}
