// Package payments talks to the external card gateway. The gateway holds
// the money; this service only ever sends it the server-side order total and
// later asks it to verify a transaction reference reported by the client.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDeclined   = errors.New("gateway declined the charge")
	ErrUnverified = errors.New("transaction could not be verified")
)

const requestTimeout = 10 * time.Second

// Default is the process-wide client, set from config at startup.
var Default *Client

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func Init(baseURL, apiKey string) {
	Default = NewClient(baseURL, apiKey)
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type intentRequest struct {
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
}

type intentResponse struct {
	IntentRef string `json:"intent_ref"`
}

// CreateIntent asks the gateway to authorize a charge for the order total.
// The request is bounded by both ctx and the client timeout; on timeout
// nothing durable has changed and the call is safe to repeat.
func (c *Client) CreateIntent(ctx context.Context, orderID uuid.UUID, amount int64) (string, error) {
	body, err := json.Marshal(intentRequest{OrderID: orderID.String(), Amount: amount})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/intents", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusPaymentRequired:
		return "", ErrDeclined
	default:
		return "", fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var out intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.IntentRef == "" {
		return "", errors.New("gateway returned an empty intent reference")
	}
	return out.IntentRef, nil
}

type Charge struct {
	TransactionRef string `json:"transaction_ref"`
	IntentRef      string `json:"intent_ref"`
	Amount         int64  `json:"amount"`
	Status         string `json:"status"`
}

// VerifyTransaction confirms with the gateway that the reference belongs to
// a settled charge. Anything other than a succeeded charge is ErrUnverified.
func (c *Client) VerifyTransaction(ctx context.Context, transactionRef string) (Charge, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/charges/"+transactionRef, nil)
	if err != nil {
		return Charge{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Charge{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Charge{}, ErrUnverified
	}
	if resp.StatusCode != http.StatusOK {
		return Charge{}, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var charge Charge
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		return Charge{}, err
	}
	if charge.Status != "succeeded" {
		return Charge{}, ErrUnverified
	}
	return charge, nil
}
