package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func baseEnv() map[string]string {
	return map[string]string{
		"SHOP_FIRESTORE_PROJECT_ID": "demo-project",
		"SHOP_AUTH_JWT_SECRET":      "test-secret",
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(baseEnv()))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("unexpected read timeout: %v", cfg.Server.ReadTimeout)
	}
	if cfg.Orders.DeliveryFee != 10 {
		t.Fatalf("expected default delivery fee 10, got %d", cfg.Orders.DeliveryFee)
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Fatalf("unexpected token TTL: %v", cfg.Auth.TokenTTL)
	}
	if cfg.Idempotency.Header != "Idempotency-Key" {
		t.Fatalf("unexpected idempotency header: %q", cfg.Idempotency.Header)
	}
	if cfg.PubSub.ProjectID != "demo-project" {
		t.Fatalf("expected pubsub project to fall back to firestore project, got %q", cfg.PubSub.ProjectID)
	}
}

func TestLoadEnvMapOverridesDefaults(t *testing.T) {
	env := baseEnv()
	env["SHOP_SERVER_PORT"] = "9090"
	env["SHOP_ORDERS_DELIVERY_FEE"] = "3"
	env["SHOP_GATEWAY_MERCHANT_ID"] = "EPAYTEST"
	env["SHOP_GATEWAY_TIMEOUT"] = "5s"

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(env))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Orders.DeliveryFee != 3 {
		t.Fatalf("expected delivery fee 3, got %d", cfg.Orders.DeliveryFee)
	}
	if cfg.Gateway.MerchantID != "EPAYTEST" {
		t.Fatalf("unexpected merchant ID: %q", cfg.Gateway.MerchantID)
	}
	if cfg.Gateway.Timeout != 5*time.Second {
		t.Fatalf("unexpected gateway timeout: %v", cfg.Gateway.Timeout)
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"SHOP_FIRESTORE_PROJECT_ID": "demo-project",
	}))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	found := false
	for _, field := range validationErr.Fields() {
		if field == "Auth.JWTSecret" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Auth.JWTSecret in missing fields, got %v", validationErr.Fields())
	}
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	contents := "# local overrides\nexport SHOP_SERVER_PORT=7001\nSHOP_FIRESTORE_PROJECT_ID=\"dotenv-project\"\nSHOP_AUTH_JWT_SECRET='dotenv-secret'\n"
	if err := os.WriteFile(envFile, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed writing env file: %v", err)
	}

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(envFile))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "7001" {
		t.Fatalf("expected port from dotenv, got %q", cfg.Server.Port)
	}
	if cfg.Firestore.ProjectID != "dotenv-project" {
		t.Fatalf("expected quoted value trimmed, got %q", cfg.Firestore.ProjectID)
	}
	if cfg.Auth.JWTSecret != "dotenv-secret" {
		t.Fatalf("expected single quoted value trimmed, got %q", cfg.Auth.JWTSecret)
	}
}

func TestLoadEnvMapBeatsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("SHOP_SERVER_PORT=7001\n"), 0o600); err != nil {
		t.Fatalf("failed writing env file: %v", err)
	}

	env := baseEnv()
	env["SHOP_SERVER_PORT"] = "7002"

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(envFile), WithEnvMap(env))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7002" {
		t.Fatalf("expected env map to win, got %q", cfg.Server.Port)
	}
}
