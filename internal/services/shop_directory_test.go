package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
)

func TestCreateShopWritesBothIndexes(t *testing.T) {
	env := newTestEnv(t)
	shop := env.mustCreateShop(t, "  acme ", "a@x.com")

	if shop.Name != "acme" {
		t.Fatalf("name = %q, want trimmed %q", shop.Name, "acme")
	}
	if got, _ := env.mr.Get(env.keys.ShopName("acme")); got != "a@x.com" {
		t.Fatalf("name index = %q, want a@x.com", got)
	}
	raw, err := env.mr.Get(env.keys.ShopEmail("a@x.com"))
	if err != nil {
		t.Fatalf("record entry missing: %v", err)
	}
	var cached models.Shop
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		t.Fatalf("decode cached record: %v", err)
	}
	if cached.ID != shop.ID || cached.Email != "a@x.com" {
		t.Fatalf("cached record = %+v, want id %s", cached, shop.ID)
	}
}

func TestGetShopRoundTripWarmAndCold(t *testing.T) {
	env := newTestEnv(t)
	shop := env.mustCreateShop(t, "acme", "a@x.com")

	check := func(label string) {
		t.Helper()
		byEmail, err := env.shops.GetByEmail(env.ctx, "a@x.com")
		if err != nil {
			t.Fatalf("%s: get by email: %v", label, err)
		}
		byName, err := env.shops.GetByName(env.ctx, "acme")
		if err != nil {
			t.Fatalf("%s: get by name: %v", label, err)
		}
		for _, got := range []*models.Shop{byEmail, byName} {
			if got.ID != shop.ID || got.Name != "acme" || got.Email != "a@x.com" {
				t.Fatalf("%s: got %+v, want shop %s", label, got, shop.ID)
			}
		}
	}

	check("warm")
	env.mr.FlushAll()
	check("cold")

	if !env.mr.Exists(env.keys.ShopEmail("a@x.com")) || !env.mr.Exists(env.keys.ShopName("acme")) {
		t.Fatal("cold read did not backfill both indexes")
	}
}

func TestGetShopNotFound(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.shops.GetByEmail(env.ctx, "nobody@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByEmail err = %v, want not found", err)
	}
	if _, err := env.shops.GetByName(env.ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByName err = %v, want not found", err)
	}
	if _, err := env.shops.GetByEmail(env.ctx, "  "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank email err = %v, want not found", err)
	}
}

func TestCreateShopNameConflict(t *testing.T) {
	for _, flush := range []bool{false, true} {
		name := "warm"
		if flush {
			name = "cold"
		}
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			env.mustCreateShop(t, "acme", "a@x.com")
			if flush {
				env.mr.FlushAll()
			}

			_, err := env.shops.Create(env.ctx, &dto.CreateShopRequest{Name: "acme", Email: "b@x.com"})
			if !errors.Is(err, ErrShopNameTaken) || !errors.Is(err, ErrConflict) {
				t.Fatalf("err = %v, want shop name conflict", err)
			}

			var count int64
			env.db.Model(&models.Shop{}).Count(&count)
			if count != 1 {
				t.Fatalf("shops = %d, want 1", count)
			}
			if got, _ := env.mr.Get(env.keys.ShopName("acme")); got != "a@x.com" {
				t.Fatalf("conflicting holder not cached, name index = %q", got)
			}
		})
	}
}

func TestCreateShopEmailConflict(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateShop(t, "acme", "a@x.com")

	_, err := env.shops.Create(env.ctx, &dto.CreateShopRequest{Name: "other", Email: "a@x.com"})
	if !errors.Is(err, ErrShopEmailTaken) {
		t.Fatalf("err = %v, want email conflict", err)
	}
}

func TestCreateShopValidation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		req  dto.CreateShopRequest
	}{
		{"short name", dto.CreateShopRequest{Name: "a", Email: "a@x.com"}},
		{"long name", dto.CreateShopRequest{Name: "abcdefghijklmnop", Email: "a@x.com"}},
		{"missing email", dto.CreateShopRequest{Name: "acme"}},
		{"bad email", dto.CreateShopRequest{Name: "acme", Email: "not-an-email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.shops.Create(env.ctx, &tt.req); !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestGetByNameDropsStaleIndex(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateShop(t, "acme", "a@x.com")
	env.mr.Set(env.keys.ShopName("ghost"), "a@x.com")

	if _, err := env.shops.GetByName(env.ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if env.mr.Exists(env.keys.ShopName("ghost")) {
		t.Fatal("stale name index entry was not removed")
	}
}

func TestGetByEmailDiscardsUnreadableEntry(t *testing.T) {
	env := newTestEnv(t)
	shop := env.mustCreateShop(t, "acme", "a@x.com")
	env.mr.Set(env.keys.ShopEmail("a@x.com"), "{not json")

	got, err := env.shops.GetByEmail(env.ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != shop.ID {
		t.Fatalf("id = %s, want %s", got.ID, shop.ID)
	}
	raw, _ := env.mr.Get(env.keys.ShopEmail("a@x.com"))
	if !json.Valid([]byte(raw)) {
		t.Fatalf("record entry not rewritten: %q", raw)
	}
}

func TestUpdateShopRenameInvalidatesOldName(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateShop(t, "acme", "a@x.com")

	updated, err := env.shops.Update(env.ctx, &dto.UpdateShopRequest{Email: "a@x.com", Name: "acme2"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "acme2" {
		t.Fatalf("name = %q, want acme2", updated.Name)
	}

	if _, err := env.shops.GetByName(env.ctx, "acme"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old name lookup err = %v, want not found", err)
	}
	got, err := env.shops.GetByName(env.ctx, "acme2")
	if err != nil || got.ID != updated.ID {
		t.Fatalf("new name lookup = %+v, %v", got, err)
	}
	if env.mr.Exists(env.keys.ShopName("acme")) {
		t.Fatal("old name index entry still cached")
	}
}

func TestUpdateShopRenameConflict(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateShop(t, "acme", "a@x.com")
	env.mustCreateShop(t, "beta", "b@x.com")
	env.mr.FlushAll()

	_, err := env.shops.Update(env.ctx, &dto.UpdateShopRequest{Email: "a@x.com", Name: "beta"})
	if !errors.Is(err, ErrShopNameTaken) {
		t.Fatalf("err = %v, want name conflict", err)
	}
	got, err := env.shops.GetByEmail(env.ctx, "a@x.com")
	if err != nil || got.Name != "acme" {
		t.Fatalf("shop after rejected rename = %+v, %v", got, err)
	}
}

func TestUpdateShopUnknownOwner(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.shops.Update(env.ctx, &dto.UpdateShopRequest{Email: "nobody@x.com", Name: "acme"})
	if !errors.Is(err, ErrShopNotFound) {
		t.Fatalf("err = %v, want shop not found", err)
	}
}

func TestShopDirectoryWithoutCache(t *testing.T) {
	env := newTestEnvWithCache(t, cache.Disabled{})
	shop := env.mustCreateShop(t, "acme", "a@x.com")

	if _, err := env.shops.Create(env.ctx, &dto.CreateShopRequest{Name: "acme", Email: "b@x.com"}); !errors.Is(err, ErrShopNameTaken) {
		t.Fatalf("conflict without cache: err = %v", err)
	}
	if _, err := env.shops.Update(env.ctx, &dto.UpdateShopRequest{Email: "a@x.com", Name: "acme2"}); err != nil {
		t.Fatalf("rename without cache: %v", err)
	}
	got, err := env.shops.GetByName(env.ctx, "acme2")
	if err != nil || got.ID != shop.ID {
		t.Fatalf("GetByName = %+v, %v", got, err)
	}
}

func TestShopDirectorySurvivesCacheOutage(t *testing.T) {
	env := newTestEnv(t)
	shop := env.mustCreateShop(t, "acme", "a@x.com")
	env.mr.Close()

	got, err := env.shops.GetByEmail(env.ctx, "a@x.com")
	if err != nil || got.ID != shop.ID {
		t.Fatalf("GetByEmail during outage = %+v, %v", got, err)
	}
	if _, err := env.shops.Create(env.ctx, &dto.CreateShopRequest{Name: "beta", Email: "b@x.com"}); err != nil {
		t.Fatalf("Create during outage: %v", err)
	}
	if _, err := env.shops.GetByName(env.ctx, "beta"); err != nil {
		t.Fatalf("GetByName during outage: %v", err)
	}
}
