package gateway

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateTransactionSendsSnapRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody createTransactionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"snap-token","redirect_url":"https://pay.example/redirect"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "SB-server-key")
	tx, err := client.CreateTransaction(context.Background(), "CTR-1", 150000, []TransactionItem{
		{ID: "menu-1", Name: "Nasi Box", Price: 75000, Quantity: 2},
	}, CustomerDetails{FirstName: "Budi", Phone: "6281200000001"})
	if err != nil {
		t.Fatalf("CreateTransaction returned error: %v", err)
	}

	if gotPath != "/snap/v1/transactions" {
		t.Fatalf("expected snap transactions path, got %s", gotPath)
	}
	if !strings.HasPrefix(gotAuth, "Basic ") {
		t.Fatalf("expected basic auth header, got %q", gotAuth)
	}
	if gotBody.TransactionDetails.OrderID != "CTR-1" || gotBody.TransactionDetails.GrossAmount != 150000 {
		t.Fatalf("unexpected transaction details: %+v", gotBody.TransactionDetails)
	}
	if tx.Token != "snap-token" || tx.RedirectURL != "https://pay.example/redirect" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}

func TestCreateTransactionSurfacesGatewayErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error_messages":["Access denied due to unauthorized transaction"]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "wrong-key")
	_, err := client.CreateTransaction(context.Background(), "CTR-2", 50000, nil, CustomerDetails{})
	if err == nil {
		t.Fatal("expected error for unauthorized gateway response")
	}
	if !strings.Contains(err.Error(), "unauthorized transaction") {
		t.Fatalf("expected gateway message in error, got %v", err)
	}
}

func TestCreateTransactionRejectsMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "SB-server-key")
	if _, err := client.CreateTransaction(context.Background(), "CTR-3", 50000, nil, CustomerDetails{}); err == nil {
		t.Fatal("expected error when gateway response has no token")
	}
}

func TestVerifySignature(t *testing.T) {
	client := NewClient("https://app.sandbox.midtrans.com", "SB-server-key")

	sum := sha512.Sum512([]byte("CTR-1" + "200" + "150000.00" + "SB-server-key"))
	signature := hex.EncodeToString(sum[:])

	if !client.VerifySignature("CTR-1", "200", "150000.00", signature) {
		t.Fatal("expected matching signature to verify")
	}
	if !client.VerifySignature("CTR-1", "200", "150000.00", strings.ToUpper(signature)) {
		t.Fatal("expected uppercase signature to verify")
	}
	if client.VerifySignature("CTR-1", "200", "150000.00", "deadbeef") {
		t.Fatal("expected mismatched signature to fail")
	}
	if client.VerifySignature("CTR-2", "200", "150000.00", signature) {
		t.Fatal("expected signature for another order to fail")
	}
}
