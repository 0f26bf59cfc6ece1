package shop

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bunhouse/storefront-go/pkg/model"
	"github.com/bunhouse/storefront-go/storage"
	"github.com/bunhouse/storefront-go/token"
	"github.com/bunhouse/storefront-go/transport"
)

func newTransports(t *testing.T, baseURL string) (api, public *transport.Transport) {
	t.Helper()

	region := model.RegionOman
	region.BaseURL = baseURL
	cfg := transport.Config{
		Region: func() model.Region { return region },
		Tokens: token.NewManager(storage.NewMemoryStore()),
		Logger: zerolog.Nop(),
	}
	api, err := transport.New(cfg)
	if err != nil {
		t.Fatalf("transport.New failed: %v", err)
	}
	public, err = transport.NewPublic(cfg)
	if err != nil {
		t.Fatalf("transport.NewPublic failed: %v", err)
	}
	return api, public
}

func envelope(t *testing.T, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	raw, err := json.Marshal(model.Envelope{Success: true, Data: data})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return raw
}

func TestListProducts(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/Products" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotQuery = r.URL.RawQuery
		w.Write(envelope(t, []Product{
			{ID: 1, NameEn: "Espresso Blend", NameAr: "خلطة إسبريسو", Price: 4.5, InStock: true},
			{ID: 2, NameEn: "Dallah Pot", NameAr: "دلة", Price: 18, InStock: false},
		}))
	}))
	defer server.Close()
	_, public := newTransports(t, server.URL)
	catalog := NewCatalogService(public)

	products, err := catalog.ListProducts(context.Background(), ListProductsParams{
		Page:   2,
		Search: "espresso",
	})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 2 || products[0].NameAr != "خلطة إسبريسو" {
		t.Fatalf("products = %+v", products)
	}
	if gotQuery != "page=2&search=espresso" {
		t.Fatalf("query = %q", gotQuery)
	}
}

func TestUnsuccessfulEnvelopeBecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.Envelope{Success: false, Message: "product not found"})
	}))
	defer server.Close()
	_, public := newTransports(t, server.URL)
	catalog := NewCatalogService(public)

	_, err := catalog.GetProduct(context.Background(), 99)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *model.APIError", err)
	}
	if apiErr.Message != "product not found" {
		t.Fatalf("Message = %q", apiErr.Message)
	}
}

func TestListOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelope(t, []Order{{ID: 11, Status: "Pending", Total: 42.5}}))
	}))
	defer server.Close()
	api, public := newTransports(t, server.URL)
	orders := NewOrderService(api, public)

	list, err := orders.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != 11 || list[0].Status != "Pending" {
		t.Fatalf("orders = %+v", list)
	}
}

func TestCreateWholesaleOrderValidatesBeforeNetwork(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()
	api, public := newTransports(t, server.URL)
	orders := NewOrderService(api, public)

	bad := []WholesaleOrderInput{
		{},
		{CompanyName: "Bun House", ContactName: "Ali", Phone: "not-a-number",
			Items: []WholesaleItem{{ProductID: 1, Quantity: 2}}},
		{CompanyName: "Bun House", ContactName: "Ali", Phone: "92506030",
			Email: "not-an-email", Items: []WholesaleItem{{ProductID: 1, Quantity: 2}}},
		{CompanyName: "Bun House", ContactName: "Ali", Phone: "92506030"},
		{CompanyName: "Bun House", ContactName: "Ali", Phone: "92506030",
			Items: []WholesaleItem{{ProductID: 1, Quantity: 0}}},
	}
	for i, input := range bad {
		if _, err := orders.CreateWholesaleOrder(context.Background(), input); err == nil {
			t.Fatalf("input %d accepted: %+v", i, input)
		}
	}
	if calls.Load() != 0 {
		t.Fatal("invalid input must not reach the network")
	}
}

func TestCreateWholesaleOrderFillsClientReference(t *testing.T) {
	var got WholesaleOrderInput
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write(envelope(t, Order{ID: 7, Status: "Pending", Wholesale: true}))
	}))
	defer server.Close()
	api, public := newTransports(t, server.URL)
	orders := NewOrderService(api, public)

	order, err := orders.CreateWholesaleOrder(context.Background(), WholesaleOrderInput{
		CompanyName: "Bun House",
		ContactName: "Ali",
		Phone:       "92506030",
		Items:       []WholesaleItem{{ProductID: 1, Quantity: 12}},
	})
	if err != nil {
		t.Fatalf("CreateWholesaleOrder failed: %v", err)
	}
	if order.ID != 7 || !order.Wholesale {
		t.Fatalf("order = %+v", order)
	}
	if got.ClientReference == "" {
		t.Fatal("clientReference not generated for the submission")
	}

	// A caller-provided reference is passed through untouched.
	_, err = orders.CreateWholesaleOrder(context.Background(), WholesaleOrderInput{
		CompanyName:     "Bun House",
		ContactName:     "Ali",
		Phone:           "92506030",
		Items:           []WholesaleItem{{ProductID: 1, Quantity: 12}},
		ClientReference: "retry-1",
	})
	if err != nil {
		t.Fatalf("CreateWholesaleOrder failed: %v", err)
	}
	if got.ClientReference != "retry-1" {
		t.Fatalf("ClientReference = %q, want caller value kept", got.ClientReference)
	}
}

func TestNotificationSettingsRoundTrip(t *testing.T) {
	var gotMethod string
	var gotSettings NotificationSettings
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		switch r.Method {
		case http.MethodGet:
			w.Write(envelope(t, NotificationSettings{WhatsAppEnabled: true, WhatsAppNumber: "96892506030"}))
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&gotSettings); err != nil {
				t.Errorf("decode request: %v", err)
			}
			json.NewEncoder(w).Encode(model.Envelope{Success: true})
		}
	}))
	defer server.Close()
	api, _ := newTransports(t, server.URL)
	svc := NewNotificationService(api)

	settings, err := svc.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if !settings.WhatsAppEnabled || settings.WhatsAppNumber != "96892506030" {
		t.Fatalf("settings = %+v", settings)
	}

	settings.NotifyOnWholesale = true
	if err := svc.UpdateSettings(context.Background(), settings); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if gotMethod != http.MethodPut || !gotSettings.NotifyOnWholesale {
		t.Fatalf("method = %q, settings = %+v", gotMethod, gotSettings)
	}
}
