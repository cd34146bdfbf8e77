package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// App
	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("IMAGE_DIR", "imgs")
	t.Setenv("TIMEZONE", "Europe/Athens")
	t.Setenv("MAX_CONTENT_LEN", "500")

	// Domain
	t.Setenv("DEFAULT_CREDIT_GRANT", "25")
	t.Setenv("CREDIT_SPEND_PER_CALL", "2")
	t.Setenv("CREDIT_FETCH_TIMEOUT", "3s")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_MODEL", "model-x")
	t.Setenv("ANTHROPIC_MAX_TOKENS", "512")
	t.Setenv("BILLING_BASE_URL", "https://billing.example.com")
	t.Setenv("BILLING_API_KEY", "bk-test")
	t.Setenv("BILLING_TIMEOUT", "7s")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging / Docs
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}

	// App
	if cfg.DBPath != "db.sqlite" || cfg.ImageDir != "imgs" || cfg.MaxContentLen != 500 {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}
	if cfg.Location().String() != "Europe/Athens" {
		t.Fatalf("timezone unexpected: %v", cfg.Location())
	}

	// Domain
	if cfg.Credits.DefaultGrant != 25 || cfg.Credits.SpendPerCall != 2 || cfg.Credits.FetchTimeout != 3*time.Second {
		t.Fatalf("credit fields unexpected: %+v", cfg.Credits)
	}
	if cfg.Anthropic.APIKey != "sk-test" || cfg.Anthropic.Model != "model-x" || cfg.Anthropic.MaxTokens != 512 {
		t.Fatalf("anthropic fields unexpected: %+v", cfg.Anthropic)
	}
	if cfg.Billing.BaseURL != "https://billing.example.com" || cfg.Billing.APIKey != "bk-test" || cfg.Billing.Timeout != 7*time.Second {
		t.Fatalf("billing fields unexpected: %+v", cfg.Billing)
	}

	// Rate limiting (parse fallback to defaults)
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure ||
		cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "app.db" || cfg.ImageDir != "data/images" {
		t.Fatalf("defaults unexpected: %+v", cfg)
	}
	if cfg.Credits.DefaultGrant != 10 || cfg.Credits.SpendPerCall != 1 {
		t.Fatalf("credit defaults unexpected: %+v", cfg.Credits)
	}
	if cfg.Billing.BaseURL != "" {
		t.Fatalf("billing should default to disabled: %+v", cfg.Billing)
	}
}

// --- validation failures ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"negative grant", "DEFAULT_CREDIT_GRANT", "-1", "DEFAULT_CREDIT_GRANT"},
		{"zero spend", "CREDIT_SPEND_PER_CALL", "0", "CREDIT_SPEND_PER_CALL"},
		{"zero max tokens", "ANTHROPIC_MAX_TOKENS", "0", "ANTHROPIC_MAX_TOKENS"},
		{"zero content len", "MAX_CONTENT_LEN", "0", "MAX_CONTENT_LEN"},
		{"bad sampler", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
		{"zero burst", "RATE_BURST", "0", "RATE_BURST"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_TimezoneFallsBackToLocal(t *testing.T) {
	t.Setenv("TIMEZONE", "Not/AZone")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Location() != time.Local {
		t.Fatalf("unparsable timezone should fall back to local, got %v", cfg.Location())
	}
}
