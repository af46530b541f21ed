package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/pizzeria")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != ":8080" {
		t.Errorf("expected default port, got %q", cfg.Port)
	}
	if cfg.CatalogCacheTTL != 5*time.Minute {
		t.Errorf("expected 5m catalog ttl, got %s", cfg.CatalogCacheTTL)
	}
	if cfg.DeliveryFeeCents != 0 {
		t.Errorf("expected no delivery fee, got %d", cfg.DeliveryFeeCents)
	}
	if string(SecretKey) != "secret" {
		t.Errorf("secret key not set")
	}
	if cfg.SeedAdmin() {
		t.Error("no admin should be seeded without ADMIN_EMAIL")
	}
}

func TestLoad_Port(t *testing.T) {
	tests := map[string]string{
		"8080":           ":8080",
		":9000":          ":9000",
		"127.0.0.1:8081": "127.0.0.1:8081",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "secret")
			t.Setenv("DATABASE_URL", "postgres://localhost/pizzeria")
			t.Setenv("PORT", in)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Port != want {
				t.Errorf("expected %q, got %q", want, cfg.Port)
			}
		})
	}
}

func TestLoad_Admin(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/pizzeria")
	t.Setenv("ADMIN_EMAIL", " chef@pizzeria.de ")
	t.Setenv("ADMIN_PASSWORD", "margherita")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.SeedAdmin() || cfg.AdminEmail != "chef@pizzeria.de" || cfg.AdminName != "Admin" {
		t.Errorf("unexpected admin config %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/pizzeria")
	t.Setenv("DELIVERY_FEE_CENTS", "250")
	t.Setenv("FREE_DELIVERY_THRESHOLD_CENTS", "2500")
	t.Setenv("CART_TTL", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DeliveryFeeCents != 250 || cfg.FreeDeliveryThresholdCents != 2500 {
		t.Errorf("unexpected delivery config %+v", cfg)
	}
	if cfg.CartTTL != 2*time.Hour {
		t.Errorf("expected 2h cart ttl, got %s", cfg.CartTTL)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret":       {"JWT_SECRET_KEY": "", "DATABASE_URL": "postgres://x"},
		"missing database":     {"JWT_SECRET_KEY": "s", "DATABASE_URL": ""},
		"bad fee":              {"JWT_SECRET_KEY": "s", "DATABASE_URL": "postgres://x", "DELIVERY_FEE_CENTS": "2,50"},
		"negative fee":         {"JWT_SECRET_KEY": "s", "DATABASE_URL": "postgres://x", "DELIVERY_FEE_CENTS": "-1"},
		"bad ttl":              {"JWT_SECRET_KEY": "s", "DATABASE_URL": "postgres://x", "CART_TTL": "soon"},
		"admin no password":    {"JWT_SECRET_KEY": "s", "DATABASE_URL": "postgres://x", "ADMIN_EMAIL": "chef@pizzeria.de"},
		"admin short password": {"JWT_SECRET_KEY": "s", "DATABASE_URL": "postgres://x", "ADMIN_EMAIL": "chef@pizzeria.de", "ADMIN_PASSWORD": "pw"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
