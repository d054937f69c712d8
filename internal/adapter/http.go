package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-task-keeper/internal/config"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
	"github.com/MKhiriev/go-task-keeper/models"
)

const (
	storeEndpoint     = "/api/store"
	subscribeEndpoint = "/api/subscribe"
)

// DefaultReconnectInterval is the minimal delay between two websocket dials
// of one subscription.
const DefaultReconnectInterval = 2 * time.Second

type httpRemoteStore struct {
	client  *utils.HTTPClient
	baseURL string

	reconnectInterval time.Duration

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPRemoteStore constructs the HTTP implementation of [RemoteStore].
// It normalises and validates the base URL from adapterCfg.HTTPAddress,
// configures the underlying HTTP client with the resolved base URL and request
// timeout, and initialises the shared HMAC hasher pool used for transport
// integrity hashes.
//
// Returns [ErrInvalidAddress] (wrapped) if adapterCfg.HTTPAddress is empty or
// cannot be parsed as a valid URL.
func NewHTTPRemoteStore(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	utils.InitHasherPool(appCfg.HashKey)

	s := &httpRemoteStore{
		client:            utils.NewHTTPClientFor(baseURL, adapterCfg.RequestTimeout),
		baseURL:           baseURL,
		reconnectInterval: DefaultReconnectInterval,
		logger:            logger,
	}
	s.SetToken(adapterCfg.Token)

	return s, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [RemoteStore]. It stores token (whitespace-trimmed) for
// use in the Authorization header of all subsequent requests.
func (h *httpRemoteStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [RemoteStore].
func (h *httpRemoteStore) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Get implements [RemoteStore]. It reads GET /api/store?path=...
func (h *httpRemoteStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	resp, err := h.authedRequest(ctx).
		SetQueryParam("path", path).
		Get(storeEndpoint)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return json.RawMessage(resp.Body()), nil
}

// Set implements [RemoteStore]. It computes the transport integrity hash over
// req.Values and POSTs the batch to POST /api/store. The writer tag travels
// both in the body and in the X-Writer-Tag header.
func (h *httpRemoteStore) Set(ctx context.Context, req models.SetRequest) (models.SetResponse, error) {
	var result models.SetResponse

	hash, err := computeTransportHash(req.Values)
	if err != nil {
		return result, fmt.Errorf("set hash payload: %w", err)
	}
	req.Hash = hash

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(utils.WriterTagHeader, req.Writer).
		SetBody(req).
		SetResult(&result).
		Post(storeEndpoint)
	if err != nil {
		return result, fmt.Errorf("set request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return result, err
	}

	return result, nil
}

func (h *httpRemoteStore) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

func computeTransportHash(values []models.PathValue) (string, error) {
	payload, err := json.Marshal(values)
	if err != nil {
		return "", err
	}

	return utils.HashHex(payload), nil
}
