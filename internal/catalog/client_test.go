package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/adityarahmanda/kopitera-backend/pkg/errors"
)

func TestListProducts(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"productId":1,"name":"Latte","price":25000,"stock":10,"isAvailable":true,"category":"coffee"}]`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 0)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Latte" || products[0].Price != 25000 {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 0)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.GetProduct(context.Background(), 42)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestGetProductInvalidID(t *testing.T) {
	t.Parallel()

	client, err := NewClient("http://localhost:9", 0)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.GetProduct(context.Background(), 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("   ", 0); err == nil {
		t.Fatal("expected error for empty base url")
	}
}
