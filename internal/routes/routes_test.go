package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/testutil"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db := testutil.OpenDB(t)
	rc, _ := testutil.OpenCache(t)

	clock := services.NewClock(time.UTC)
	txr := database.NewTxRunner(db, 1, time.Second, 5*time.Second)
	tracker := services.NewStockTracker(clock)
	shops := services.NewShopDirectory(db, rc, cache.Keys{Prefix: "test"}, time.Hour, txr, services.NewProductReconciler(tracker))
	products := services.NewProductService(txr, tracker, shops)
	sales := services.NewSalesService(db, clock)
	actions := services.NewActions(shops, products, sales, services.ModeRaise)

	cfg := &config.Config{JWTSecret: testSecret}
	app := fiber.New()
	app.Use(requestid.New())
	Setup(app, cfg, actions,
		handlers.NewHealthHandler(db, rc),
		handlers.NewShopHandler(actions),
		handlers.NewProductHandler(actions),
		handlers.NewSalesHandler(actions),
	)
	return app
}

func tokenFor(t *testing.T, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func do(t *testing.T, app *fiber.App, method, path, email string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, email))
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	code, body := do(t, app, http.MethodGet, "/api/health", "", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %s", code, body)
	}
	health := decode[dto.HealthResponse](t, body)
	if health.DB != "ok" || health.Cache != "ok" {
		t.Fatalf("health = %+v", health)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	app := newTestApp(t)
	code, _ := do(t, app, http.MethodPost, "/api/shops", "", map[string]string{"name": "acme"})
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
}

func TestCreateShopStatuses(t *testing.T) {
	app := newTestApp(t)

	code, body := do(t, app, http.MethodPost, "/api/shops", "a@x.com", map[string]string{"name": "acme"})
	if code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", code, body)
	}
	created := decode[dto.ShopResponse](t, body)
	if created.Shop.Email != "a@x.com" {
		t.Fatalf("shop email = %q, want token email", created.Shop.Email)
	}

	code, body = do(t, app, http.MethodPost, "/api/shops", "b@x.com", map[string]string{"name": "acme"})
	if code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, body %s", code, body)
	}
	if msg := decode[dto.ErrorResponse](t, body).Message; msg != services.ErrShopNameTaken.Msg {
		t.Fatalf("message = %q", msg)
	}

	code, _ = do(t, app, http.MethodPost, "/api/shops", "c@x.com", map[string]string{"name": "a"})
	if code != http.StatusBadRequest {
		t.Fatalf("invalid name status = %d, want 400", code)
	}
}

func TestOwnerRoutesNeedShop(t *testing.T) {
	app := newTestApp(t)
	code, _ := do(t, app, http.MethodPost, "/api/products", "nobody@x.com", map[string]any{"name": "rice"})
	if code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", code)
	}
}

func TestShopLookups(t *testing.T) {
	app := newTestApp(t)
	do(t, app, http.MethodPost, "/api/shops", "a@x.com", map[string]string{"name": "acme"})

	code, body := do(t, app, http.MethodGet, "/api/shops", "a@x.com", nil)
	if code != http.StatusOK || decode[dto.ShopResponse](t, body).Shop.Name != "acme" {
		t.Fatalf("own shop = %d %s", code, body)
	}
	code, _ = do(t, app, http.MethodGet, "/api/shops/acme", "b@x.com", nil)
	if code != http.StatusOK {
		t.Fatalf("by name status = %d", code)
	}
	code, _ = do(t, app, http.MethodGet, "/api/shops/ghost", "b@x.com", nil)
	if code != http.StatusNotFound {
		t.Fatalf("unknown name status = %d, want 404", code)
	}
	code, _ = do(t, app, http.MethodGet, "/api/shops?email=nobody@x.com", "b@x.com", nil)
	if code != http.StatusNotFound {
		t.Fatalf("unknown email status = %d, want 404", code)
	}
}

func TestShopLookupsArePublic(t *testing.T) {
	app := newTestApp(t)
	do(t, app, http.MethodPost, "/api/shops", "a@x.com", map[string]string{"name": "acme"})

	code, body := do(t, app, http.MethodGet, "/api/shops/acme", "", nil)
	if code != http.StatusOK || decode[dto.ShopResponse](t, body).Shop.Email != "a@x.com" {
		t.Fatalf("anonymous by name = %d %s", code, body)
	}
	code, body = do(t, app, http.MethodGet, "/api/shops?email=a@x.com", "", nil)
	if code != http.StatusOK || decode[dto.ShopResponse](t, body).Shop.Name != "acme" {
		t.Fatalf("anonymous by email = %d %s", code, body)
	}
	code, _ = do(t, app, http.MethodGet, "/api/shops", "", nil)
	if code != http.StatusBadRequest {
		t.Fatalf("anonymous without email = %d, want 400", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/shops", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("bad token request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token = %d, want 401", resp.StatusCode)
	}
}

func TestStockFlow(t *testing.T) {
	app := newTestApp(t)
	do(t, app, http.MethodPost, "/api/shops", "a@x.com", map[string]string{"name": "acme"})

	code, body := do(t, app, http.MethodPut, "/api/shops", "a@x.com", map[string]any{
		"name":     "acme",
		"products": []map[string]any{{"name": "rice", "stock_count": 10, "metric": "KG"}},
	})
	if code != http.StatusOK {
		t.Fatalf("update shop = %d %s", code, body)
	}
	shop := decode[dto.ShopResponse](t, body).Shop
	if len(shop.Products) != 1 {
		t.Fatalf("products = %+v", shop.Products)
	}
	rice := shop.Products[0]

	code, body = do(t, app, http.MethodPut, "/api/products/"+rice.ID.String(), "a@x.com", map[string]any{"stock_count": 4})
	if code != http.StatusOK {
		t.Fatalf("update product = %d %s", code, body)
	}
	if p := decode[dto.ProductResponse](t, body).Product; p.SoldCount != 6 || p.StockCount != 4 {
		t.Fatalf("product = %+v, want stock 4 sold 6", p)
	}

	foreign := uuid.New()
	code, body = do(t, app, http.MethodPost, "/api/sales", "a@x.com", map[string]any{
		"sales_filter": "daily",
		"product_ids":  []uuid.UUID{rice.ID, foreign},
	})
	if code != http.StatusOK {
		t.Fatalf("sales = %d %s", code, body)
	}
	sales := decode[dto.SalesResponse](t, body).SalesMap
	if len(sales) != 1 || sales[rice.ID] != 6 {
		t.Fatalf("sales map = %v, want {%s: 6}", sales, rice.ID)
	}

	code, _ = do(t, app, http.MethodPost, "/api/sales", "a@x.com", map[string]any{"sales_filter": "hourly"})
	if code != http.StatusBadRequest {
		t.Fatalf("bad filter status = %d, want 400", code)
	}

	code, _ = do(t, app, http.MethodPut, "/api/products/not-a-uuid", "a@x.com", map[string]any{"stock_count": 1})
	if code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", code)
	}
	code, _ = do(t, app, http.MethodPut, "/api/products/"+foreign.String(), "a@x.com", map[string]any{"stock_count": 1})
	if code != http.StatusNotFound {
		t.Fatalf("unknown product status = %d, want 404", code)
	}

	code, body = do(t, app, http.MethodPost, "/api/products", "a@x.com", map[string]any{"name": "rice", "stock_count": 1})
	if code != http.StatusConflict {
		t.Fatalf("duplicate product = %d %s", code, body)
	}
}
