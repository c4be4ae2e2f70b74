package cashfree

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/telelink-next/internal/payout"
)

var (
	ErrConfigInvalid      = errors.New("cashfree config invalid")
	ErrRequestFailed      = errors.New("cashfree request failed")
	ErrResponseInvalid    = errors.New("cashfree response invalid")
	ErrAuthorizationLost  = errors.New("cashfree authorization rejected")
	ErrTransferRejected   = errors.New("cashfree transfer rejected")
	ErrMethodNotSupported = errors.New("cashfree transfer method not supported")
)

const (
	transferModeUPI  = "upi"
	transferModeBank = "banktransfer"

	// tokens last 300s server side; refresh a little early
	tokenSafetyWindow = 30 * time.Second
	defaultTimeout    = 15 * time.Second
)

// Config Cashfree Payouts configuration
type Config struct {
	BaseURL      string `json:"base_url"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	TimeoutSec   int    `json:"timeout_seconds"`
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.ClientSecret = strings.TrimSpace(c.ClientSecret)
}

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return fmt.Errorf("%w: client_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		return fmt.Errorf("%w: client_secret is required", ErrConfigInvalid)
	}
	return nil
}

// Client Cashfree Payouts API client
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	bearerToken string
	tokenExpiry time.Time
}

// New creates a Cashfree payout client
func New(cfg Config) (*Client, error) {
	cfg.normalize()
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	timeout := defaultTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Send requests a direct transfer. The transfer id doubles as the
// idempotency key so a retried withdrawal never pays twice.
func (c *Client) Send(ctx context.Context, input payout.TransferInput) (*payout.TransferResult, error) {
	if c == nil {
		return nil, ErrConfigInvalid
	}
	mode, beneDetails, err := buildBeneDetails(input)
	if err != nil {
		return nil, err
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	params := map[string]interface{}{
		"amount":       input.Amount.StringFixed(2),
		"transferId":   input.TransferID,
		"transferMode": mode,
		"beneDetails":  beneDetails,
	}

	respBytes, status, err := c.postJSON(ctx, "/payout/v1/directTransfer", token, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		// token expired between ensure and use, refresh once
		c.invalidateToken()
		token, err = c.ensureToken(ctx)
		if err != nil {
			return nil, err
		}
		respBytes, status, err = c.postJSON(ctx, "/payout/v1/directTransfer", token, params)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, status)
	}

	var resp struct {
		Status  string `json:"status"`
		SubCode string `json:"subCode"`
		Message string `json:"message"`
		Data    struct {
			ReferenceID  string `json:"referenceId"`
			UTR          string `json:"utr"`
			Acknowledged int    `json:"acknowledged"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if !strings.EqualFold(resp.Status, "SUCCESS") {
		return nil, fmt.Errorf("%w: %s (%s)", ErrTransferRejected, resp.Message, resp.SubCode)
	}

	reference := resp.Data.ReferenceID
	if reference == "" {
		reference = resp.Data.UTR
	}
	return &payout.TransferResult{
		ReferenceID:  reference,
		Acknowledged: resp.Data.Acknowledged == 1,
	}, nil
}

func buildBeneDetails(input payout.TransferInput) (string, map[string]interface{}, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Creator"
	}
	details := map[string]interface{}{
		"name":    name,
		"email":   "payouts@telelink.local",
		"phone":   "9999999999",
		"address": "NA",
	}
	switch strings.ToLower(strings.TrimSpace(input.Method)) {
	case "upi":
		vpa := strings.TrimSpace(input.Destination)
		if vpa == "" {
			return "", nil, fmt.Errorf("%w: empty vpa", ErrConfigInvalid)
		}
		details["vpa"] = vpa
		return transferModeUPI, details, nil
	case "bank":
		// destination travels as "IFSC|ACCOUNT"
		parts := strings.SplitN(strings.TrimSpace(input.Destination), "|", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return "", nil, fmt.Errorf("%w: malformed bank destination", ErrConfigInvalid)
		}
		details["ifsc"] = strings.TrimSpace(parts[0])
		details["bankAccount"] = strings.TrimSpace(parts[1])
		return transferModeBank, details, nil
	default:
		return "", nil, ErrMethodNotSupported
	}
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bearerToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.bearerToken, nil
	}

	endpoint := c.cfg.BaseURL + "/payout/v1/authorize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Client-Id", c.cfg.ClientID)
	req.Header.Set("X-Client-Secret", c.cfg.ClientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: http status %d", ErrAuthorizationLost, resp.StatusCode)
	}

	var authResp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Token  string `json:"token"`
			Expiry int64  `json:"expiry"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &authResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if !strings.EqualFold(authResp.Status, "SUCCESS") || authResp.Data.Token == "" {
		return "", fmt.Errorf("%w: %s", ErrAuthorizationLost, authResp.Message)
	}

	c.bearerToken = authResp.Data.Token
	expiry := time.Unix(authResp.Data.Expiry, 0)
	if authResp.Data.Expiry <= 0 {
		expiry = time.Now().Add(5 * time.Minute)
	}
	c.tokenExpiry = expiry.Add(-tokenSafetyWindow)
	return c.bearerToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.bearerToken = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

func (c *Client) postJSON(ctx context.Context, path, token string, params map[string]interface{}) ([]byte, int, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(string(body)))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return respBytes, resp.StatusCode, nil
}
