package supplier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestPlaceOrder(t *testing.T) {
	t.Run("posts the order and parses the response", func(t *testing.T) {
		var gotAuth string
		var gotReq OrderRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(OrderResponse{OrderID: "SUP-7", Cost: 12.34})
		}))
		defer server.Close()

		client := NewClient(zap.NewNop())
		resp, err := client.PlaceOrder(context.Background(), server.URL, "secret-key", OrderRequest{
			Reference: "ORD-1001",
			Items:     []OrderItem{{SKU: "SKU-1", Quantity: 2}},
		})
		if err != nil {
			t.Fatalf("PlaceOrder failed: %v", err)
		}

		if resp.OrderID != "SUP-7" || resp.Cost != 12.34 {
			t.Errorf("unexpected response: %+v", resp)
		}
		if gotAuth != "Bearer secret-key" {
			t.Errorf("expected bearer auth, got %q", gotAuth)
		}
		if gotReq.Reference != "ORD-1001" || len(gotReq.Items) != 1 {
			t.Errorf("unexpected request payload: %+v", gotReq)
		}
	})

	t.Run("returns an API error with the response body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream unavailable"))
		}))
		defer server.Close()

		client := NewClient(zap.NewNop())
		_, err := client.PlaceOrder(context.Background(), server.URL, "", OrderRequest{})

		apiErr, ok := err.(*APIError)
		if !ok {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.StatusCode != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", apiErr.StatusCode)
		}
		if apiErr.Body != "upstream unavailable" {
			t.Errorf("expected body to be preserved, got %q", apiErr.Body)
		}
	})

	t.Run("omits the auth header without a key", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(OrderResponse{OrderID: "SUP-8"})
		}))
		defer server.Close()

		client := NewClient(zap.NewNop())
		if _, err := client.PlaceOrder(context.Background(), server.URL, "", OrderRequest{}); err != nil {
			t.Fatalf("PlaceOrder failed: %v", err)
		}
		if gotAuth != "" {
			t.Errorf("expected no auth header, got %q", gotAuth)
		}
	})
}
