package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/pizzeria/cart"
	"github.com/ray-remotestate/pizzeria/catalog"
	"github.com/ray-remotestate/pizzeria/checkout"
	"github.com/ray-remotestate/pizzeria/config"
	"github.com/ray-remotestate/pizzeria/handlers"
	"github.com/ray-remotestate/pizzeria/models"
	"github.com/ray-remotestate/pizzeria/utils"
)

type menuRepo struct{}

func (menuRepo) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Pizza", Slug: "pizza"}, {ID: 2, Name: "Calzone & Pide", Slug: "calzone"}}, nil
}

func (menuRepo) ListProducts(context.Context) ([]models.Product, error) {
	return []models.Product{
		{ID: 1, CategoryID: 1, Name: "Pizza Tonno", BasePrice: 700, Family: models.FamilySized, OptionSet: models.OptionSetPizza,
			Variants: models.Variants{{Name: "Ø26cm", Price: 700}, {Name: "Ø32cm", Price: 950}}, IsAvailable: true},
		{ID: 2, CategoryID: 2, Name: "Calzone Spezial", BasePrice: 1150, Family: models.FamilySimple, OptionSet: models.OptionSetCalzone, IsAvailable: true},
		{ID: 3, CategoryID: 1, Name: "Pizza Menü", BasePrice: 1090, Family: models.FamilyPizzaBundle1, OptionSet: models.OptionSetNone, IsAvailable: true},
		{ID: 4, CategoryID: 1, Name: "Pizza Hawaii", BasePrice: 800, Family: models.FamilySized, OptionSet: models.OptionSetPizza, IsAvailable: false},
	}, nil
}

type orderStore struct {
	mu     sync.Mutex
	orders map[uuid.UUID]models.Order
}

func (s *orderStore) Create(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	s.orders[o.ID] = *o
	return nil
}

func (s *orderStore) Get(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &o, nil
}

func (s *orderStore) List(_ context.Context, status models.OrderStatus, _ int) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *orderStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.ErrNotFound
	}
	if o.Status != from {
		return models.ErrStatusConflict
	}
	o.Status = to
	s.orders[id] = o
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	config.SecretKey = []byte("test-secret")

	catalogSvc := catalog.NewService(menuRepo{}, nil)
	h := &handlers.Handler{
		Catalog:  catalogSvc,
		Carts:    cart.NewMemoryStore(),
		Checkout: checkout.NewService(&orderStore{orders: map[uuid.UUID]models.Order{}}, catalogSvc, nil, nil, checkout.Fees{}),
	}
	ts := httptest.NewServer(SetupRoutes(h).Router)
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type cartBody struct {
	Items      []cart.Line `json:"items"`
	TotalPrice int64       `json:"totalPrice"`
	TotalItems int         `json:"totalItems"`
}

var customer = map[string]any{
	"customer":      map[string]string{"firstName": "Ayse", "lastName": "Yilmaz", "email": "ayse@example.de", "phone": "030 1234567"},
	"address":       map[string]string{"street": "Hauptstraße", "houseNumber": "12", "postalCode": "10115", "city": "Berlin"},
	"paymentMethod": "cash",
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	if resp := do(t, ts, http.MethodGet, "/health", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCatalogRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, ts, http.MethodGet, "/api/products?categoryId=1", "", nil)
	var products []models.Product
	decode(t, resp, &products)
	if len(products) != 2 {
		t.Errorf("expected 2 available pizzas, got %d", len(products))
	}

	if resp := do(t, ts, http.MethodGet, "/api/products?categoryId=abc", "", nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad categoryId, got %d", resp.StatusCode)
	}
	if resp := do(t, ts, http.MethodGet, "/api/products/99", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if resp := do(t, ts, http.MethodGet, "/api/products/4", "", nil); resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for unavailable product, got %d", resp.StatusCode)
	}

	resp = do(t, ts, http.MethodGet, "/api/products/3/configurator", "", nil)
	var plan struct {
		Steps []struct {
			Kind    string         `json:"kind"`
			Label   string         `json:"label"`
			Choices []models.Extra `json:"choices"`
		} `json:"steps"`
		Slots []string `json:"slots"`
	}
	decode(t, resp, &plan)
	if len(plan.Steps) != 3 || plan.Steps[0].Label != "Pizza" || plan.Steps[2].Label != "Getränk" {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if len(plan.Steps[0].Choices) != 1 || plan.Steps[0].Choices[0].Name != "Pizza Tonno" {
		t.Errorf("menu should offer the available sized pizzas, got %+v", plan.Steps[0].Choices)
	}
}

func TestCartFlow(t *testing.T) {
	ts := newTestServer(t)

	add := map[string]any{
		"productId": 1,
		"steps":     []map[string]any{{"choice": "Ø26cm"}, {"extras": []string{"mit Thunfisch", "mit Oliven"}}},
	}
	resp := do(t, ts, http.MethodPost, "/api/cart/s1/items", "", add)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", resp.StatusCode)
	}
	var c cartBody
	decode(t, resp, &c)
	if c.TotalPrice != 900 || len(c.Items) != 1 || len(c.Items[0].Extras) != 2 {
		t.Fatalf("unexpected cart %+v", c)
	}
	if c.Items[0].Extras[0] != "mit Thunfisch (+1,00€)" {
		t.Errorf("unexpected extras %v", c.Items[0].Extras)
	}

	other := map[string]any{
		"productId": 1,
		"steps":     []map[string]any{{"choice": "Ø26cm"}, {"extras": []string{}}},
	}
	resp = do(t, ts, http.MethodPost, "/api/cart/s1/items", "", other)
	decode(t, resp, &c)
	if len(c.Items) != 1 || c.Items[0].Quantity != 2 || c.TotalPrice != 1800 {
		t.Errorf("same product and variant should bump the line, got %+v", c)
	}

	calzone := map[string]any{"productId": 2, "steps": []map[string]any{{"extras": []string{"mit Oliven"}}}}
	resp = do(t, ts, http.MethodPost, "/api/cart/s1/items", "", calzone)
	decode(t, resp, &c)
	if c.TotalPrice != 1800+1250 || c.TotalItems != 3 {
		t.Errorf("unexpected cart after calzone %+v", c)
	}

	unknownExtra := map[string]any{"productId": 2, "steps": []map[string]any{{"extras": []string{"mit Ananas"}}}}
	resp = do(t, ts, http.MethodPost, "/api/cart/s3/items", "", unknownExtra)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unknown extra: expected 200, got %d", resp.StatusCode)
	}
	var withUnknown cartBody
	decode(t, resp, &withUnknown)
	if withUnknown.TotalPrice != 1150 || len(withUnknown.Items) != 1 || withUnknown.Items[0].Extras[0] != "mit Ananas" {
		t.Errorf("unknown extra should be listed at no charge, got %+v", withUnknown)
	}

	bad := map[string]any{"productId": 1, "steps": []map[string]any{{"choice": "Ø40cm"}}}
	if resp := do(t, ts, http.MethodPost, "/api/cart/s1/items", "", bad); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unknown variant: expected 422, got %d", resp.StatusCode)
	}
	incomplete := map[string]any{"productId": 1, "steps": []map[string]any{}}
	if resp := do(t, ts, http.MethodPost, "/api/cart/s1/items", "", incomplete); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("missing variant: expected 422, got %d", resp.StatusCode)
	}

	resp = do(t, ts, http.MethodPut, "/api/cart/s1/items", "", map[string]any{"productId": 1, "variant": "Ø26cm", "quantity": 0})
	decode(t, resp, &c)
	if len(c.Items) != 1 || c.TotalPrice != 1250 {
		t.Errorf("quantity 0 should remove the line, got %+v", c)
	}

	resp = do(t, ts, http.MethodDelete, "/api/cart/s1/items?productId=2", "", nil)
	decode(t, resp, &c)
	if len(c.Items) != 0 {
		t.Errorf("expected empty cart, got %+v", c)
	}
}

func TestCheckoutFlow(t *testing.T) {
	ts := newTestServer(t)

	if resp := do(t, ts, http.MethodPost, "/api/cart/s2/checkout", "", customer); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("empty cart checkout: expected 422, got %d", resp.StatusCode)
	}

	add := map[string]any{"productId": 2, "steps": []map[string]any{{"extras": []string{"mit Knoblauch"}}}}
	do(t, ts, http.MethodPost, "/api/cart/s2/items", "", add)

	invalid := map[string]any{
		"customer":      map[string]string{"firstName": "Ayse", "lastName": "Yilmaz", "email": "nope", "phone": "030 1234567"},
		"address":       customer["address"],
		"paymentMethod": "cash",
	}
	resp := do(t, ts, http.MethodPost, "/api/cart/s2/checkout", "", invalid)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid email: expected 422, got %d", resp.StatusCode)
	}
	var verr struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, resp, &verr)
	if verr.Fields["email"] == "" {
		t.Errorf("expected a field error on email, got %v", verr.Fields)
	}

	resp = do(t, ts, http.MethodPost, "/api/cart/s2/checkout", "", customer)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	var res checkout.Result
	decode(t, resp, &res)
	if res.Total != 1150 || res.OrderNumber == "" {
		t.Errorf("unexpected result %+v", res)
	}

	var c cartBody
	decode(t, do(t, ts, http.MethodGet, "/api/cart/s2", "", nil), &c)
	if len(c.Items) != 0 {
		t.Error("cart should be cleared after checkout")
	}
}

func TestAdminOrders(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{
		"customer":      customer["customer"],
		"address":       customer["address"],
		"paymentMethod": "paypal",
		"items":         []map[string]any{{"productId": 1, "quantity": 2, "priceAtOrder": 700, "variant": "Ø26cm"}},
	}
	resp := do(t, ts, http.MethodPost, "/api/orders", "", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d", resp.StatusCode)
	}
	var res checkout.Result
	decode(t, resp, &res)

	if resp := do(t, ts, http.MethodGet, "/api/admin/orders", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", resp.StatusCode)
	}

	staff, err := utils.GenerateAccessToken(uuid.New(), []string{string(models.RoleStaff)})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	var orders []models.Order
	decode(t, do(t, ts, http.MethodGet, "/api/admin/orders?status=pending", staff, nil), &orders)
	if len(orders) != 1 || orders[0].Total != 1400 {
		t.Errorf("unexpected orders %+v", orders)
	}
	if resp := do(t, ts, http.MethodGet, "/api/admin/orders?status=shipped", staff, nil); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unknown status filter: expected 422, got %d", resp.StatusCode)
	}

	path := "/api/admin/orders/" + res.OrderID.String()
	resp = do(t, ts, http.MethodPatch, path+"/status", staff, map[string]string{"status": "confirmed"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d", resp.StatusCode)
	}
	var o struct {
		Status               models.OrderStatus   `json:"status"`
		AvailableTransitions []models.OrderStatus `json:"availableTransitions"`
	}
	decode(t, resp, &o)
	if o.Status != models.StatusConfirmed || len(o.AvailableTransitions) != 2 || o.AvailableTransitions[0] != models.StatusPreparing {
		t.Errorf("unexpected order after confirm %+v", o)
	}

	if resp := do(t, ts, http.MethodPatch, path+"/status", staff, map[string]string{"status": "delivered"}); resp.StatusCode != http.StatusConflict {
		t.Errorf("skipping ahead: expected 409, got %d", resp.StatusCode)
	}
	if resp := do(t, ts, http.MethodGet, "/api/admin/orders/not-a-uuid", staff, nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", resp.StatusCode)
	}
	if resp := do(t, ts, http.MethodGet, "/api/admin/orders/"+uuid.NewString(), staff, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown order: expected 404, got %d", resp.StatusCode)
	}

	if resp := do(t, ts, http.MethodGet, "/api/admin/staff", staff, nil); resp.StatusCode != http.StatusForbidden {
		t.Errorf("staff listing staff: expected 403, got %d", resp.StatusCode)
	}
}

func TestChatDisabled(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodPost, "/api/chat", "", map[string]string{"message": "Hallo"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a model, got %d", resp.StatusCode)
	}
}
