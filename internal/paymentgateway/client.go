package paymentgateway

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	paymentgatewaytypes "github.com/frahmantamala/donation-management/internal/core/datamodel/paymentgateway"
)

const (
	sandboxSnapURL    = "https://app.sandbox.midtrans.com/snap/v1"
	productionSnapURL = "https://app.midtrans.com/snap/v1"
	sandboxAPIURL     = "https://api.sandbox.midtrans.com"
	productionAPIURL  = "https://api.midtrans.com"

	defaultTimeout = 15 * time.Second

	maxItemFieldLength     = 50
	maxCustomerFieldLength = 255
)

// ErrTransactionNotFound is returned by GetTransactionStatus when the gateway
// has no transaction for the order id, which happens when the donor never
// opened the payment page.
var ErrTransactionNotFound = errors.New("transaction not found at payment gateway")

// GatewayError is a non-success answer from the gateway.
type GatewayError struct {
	HTTPStatus int
	StatusCode string
	Messages   []string
}

func (e *GatewayError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("midtrans returned %d: %s", e.HTTPStatus, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("midtrans returned %d", e.HTTPStatus)
}

type Config struct {
	ServerKey    string
	IsProduction bool
	IsSanitized  bool
	Is3DS        bool
	SnapURL      string
	APIURL       string
	Timeout      time.Duration
}

// Client talks to Midtrans Snap and the Core API. It is built once from
// configuration and never mutated afterwards.
type Client struct {
	serverKey   string
	snapURL     string
	apiURL      string
	isSanitized bool
	is3DS       bool
	httpClient  *http.Client
	logger      *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	snapURL := config.SnapURL
	apiURL := config.APIURL
	if snapURL == "" {
		snapURL = sandboxSnapURL
		if config.IsProduction {
			snapURL = productionSnapURL
		}
	}
	if apiURL == "" {
		apiURL = sandboxAPIURL
		if config.IsProduction {
			apiURL = productionAPIURL
		}
	}

	return &Client{
		serverKey:   config.ServerKey,
		snapURL:     strings.TrimRight(snapURL, "/"),
		apiURL:      strings.TrimRight(apiURL, "/"),
		isSanitized: config.IsSanitized,
		is3DS:       config.Is3DS,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// CreateTransaction opens a hosted Snap payment session.
func (c *Client) CreateTransaction(ctx context.Context, req *paymentgatewaytypes.SnapRequest) (*paymentgatewaytypes.SnapResponse, error) {
	c.prepare(req)

	if err := req.Validate(); err != nil {
		c.logger.Error("snap request validation failed", "error", err, "order_id", req.TransactionDetails.OrderID)
		return nil, fmt.Errorf("validation error: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snap request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.snapURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	c.setHeaders(httpReq)

	c.logger.Info("creating snap transaction",
		"order_id", req.TransactionDetails.OrderID,
		"gross_amount", req.TransactionDetails.GrossAmount,
		"enabled_payments", req.EnabledPayments)

	respBody, status, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	if status != http.StatusCreated && status != http.StatusOK {
		gwErr := decodeGatewayError(status, respBody)
		c.logger.Error("snap transaction rejected",
			"order_id", req.TransactionDetails.OrderID,
			"status", status,
			"error", gwErr)
		return nil, gwErr
	}

	var snapResp paymentgatewaytypes.SnapResponse
	if err := json.Unmarshal(respBody, &snapResp); err != nil {
		return nil, fmt.Errorf("failed to decode snap response: %w", err)
	}
	if snapResp.RedirectURL == "" {
		return nil, &GatewayError{HTTPStatus: status, Messages: []string{"missing redirect_url"}}
	}

	c.logger.Info("snap transaction created",
		"order_id", req.TransactionDetails.OrderID,
		"token", snapResp.Token)

	return &snapResp, nil
}

// GetTransactionStatus queries the Core API for the latest state of orderID.
func (c *Client) GetTransactionStatus(ctx context.Context, orderID string) (*paymentgatewaytypes.TransactionStatusResponse, error) {
	endpoint := fmt.Sprintf("%s/v2/%s/status", c.apiURL, url.PathEscape(orderID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	respBody, status, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNotFound {
		return nil, ErrTransactionNotFound
	}
	if status != http.StatusOK {
		return nil, decodeGatewayError(status, respBody)
	}

	var statusResp paymentgatewaytypes.TransactionStatusResponse
	if err := json.Unmarshal(respBody, &statusResp); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}

	// the Core API answers unknown orders with HTTP 200 and status_code 404
	if statusResp.StatusCode == "404" {
		return nil, ErrTransactionNotFound
	}
	if statusResp.TransactionStatus == "" {
		return nil, &GatewayError{HTTPStatus: status, StatusCode: statusResp.StatusCode, Messages: []string{statusResp.StatusMessage}}
	}

	return &statusResp, nil
}

// Signature computes the Midtrans signature_key for a notification:
// hex(sha512(order_id + status_code + gross_amount + server_key)).
func (c *Client) Signature(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + c.serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature reports whether signature matches the fields byte for byte.
func (c *Client) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	expected := c.Signature(orderID, statusCode, grossAmount)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

func (c *Client) prepare(req *paymentgatewaytypes.SnapRequest) {
	if c.is3DS && req.CreditCard == nil {
		req.CreditCard = &paymentgatewaytypes.CreditCard{Secure: true}
	}
	if !c.isSanitized {
		return
	}
	req.CustomerDetails.FirstName = truncate(req.CustomerDetails.FirstName, maxCustomerFieldLength)
	req.CustomerDetails.Email = truncate(req.CustomerDetails.Email, maxCustomerFieldLength)
	for i := range req.ItemDetails {
		req.ItemDetails[i].ID = truncate(req.ItemDetails[i].ID, maxItemFieldLength)
		req.ItemDetails[i].Name = truncate(req.ItemDetails[i].Name, maxItemFieldLength)
	}
}

func (c *Client) setHeaders(req *http.Request) {
	auth := base64.StdEncoding.EncodeToString([]byte(c.serverKey + ":"))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("midtrans request failed", "error", err, "url", req.URL.String())
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func decodeGatewayError(status int, body []byte) *GatewayError {
	gwErr := &GatewayError{HTTPStatus: status}
	var errResp paymentgatewaytypes.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		gwErr.StatusCode = errResp.StatusCode
		gwErr.Messages = errResp.ErrorMessages
		if len(gwErr.Messages) == 0 && errResp.StatusMessage != "" {
			gwErr.Messages = []string{errResp.StatusMessage}
		}
	}
	return gwErr
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
