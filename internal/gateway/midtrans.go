package gateway

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the Midtrans Snap API. Amounts are whole rupiah.
type Client struct {
	baseURL   string
	serverKey string
	http      *http.Client
}

func NewClient(baseURL, serverKey string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		serverKey: serverKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// TransactionItem is one line sent to the gateway checkout page.
type TransactionItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// CustomerDetails identifies the paying customer on the checkout page.
type CustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Transaction is the gateway's handle for one created payment.
type Transaction struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type createTransactionRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	ItemDetails     []TransactionItem `json:"item_details,omitempty"`
	CustomerDetails *CustomerDetails  `json:"customer_details,omitempty"`
}

type gatewayErrorResponse struct {
	ErrorMessages []string `json:"error_messages"`
}

// CreateTransaction registers a Snap transaction and returns the client
// token and redirect URL. A non-2xx response is returned as an error; no
// payment may be recorded without a token.
func (c *Client) CreateTransaction(ctx context.Context, orderID string, grossAmount int64, items []TransactionItem, customer CustomerDetails) (Transaction, error) {
	reqBody := createTransactionRequest{ItemDetails: items}
	reqBody.TransactionDetails.OrderID = orderID
	reqBody.TransactionDetails.GrossAmount = grossAmount
	if customer.FirstName != "" {
		reqBody.CustomerDetails = &customer
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Transaction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/snap/v1/transactions", bytes.NewReader(payload))
	if err != nil {
		return Transaction{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.serverKey+":")))

	resp, err := c.http.Do(req)
	if err != nil {
		return Transaction{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transaction{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gatewayErr gatewayErrorResponse
		if err := json.Unmarshal(body, &gatewayErr); err == nil && len(gatewayErr.ErrorMessages) > 0 {
			return Transaction{}, fmt.Errorf("gateway rejected transaction: %s", strings.Join(gatewayErr.ErrorMessages, "; "))
		}
		return Transaction{}, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var tx Transaction
	if err := json.Unmarshal(body, &tx); err != nil {
		return Transaction{}, err
	}
	if tx.Token == "" {
		return Transaction{}, fmt.Errorf("gateway response missing token")
	}

	return tx, nil
}

// VerifySignature checks a webhook's signature key: the SHA-512 digest of
// order_id + status_code + gross_amount + server key.
func (c *Client) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + c.serverKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(signatureKey))) == 1
}
