package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/skincare-intake/internal/intake"
	"github.com/jonathan/skincare-intake/internal/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	return tmpFile
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9090,
		"webhook_url": "https://example.app.n8n.cloud/webhook/abc",
		"webhook_timeout_seconds": 45,
		"max_images": 2,
		"render_style": "dracula"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://example.app.n8n.cloud/webhook/abc", cfg.WebhookURL)
	assert.Equal(t, 45, cfg.WebhookTimeoutSeconds)
	assert.Equal(t, 45*time.Second, cfg.WebhookTimeout())
	assert.Equal(t, 2, cfg.MaxImages)
	assert.Equal(t, "dracula", cfg.RenderStyle)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_SchemaViolation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"unknown field", `{"job_url": "https://example.com"}`, "(root)"},
		{"wrong type", `{"port": "8080"}`, "port"},
		{"bad url", `{"webhook_url": "ftp://example.com"}`, "webhook_url"},
		{"unknown style", `{"render_style": "neon"}`, "render_style"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Nil(t, cfg)

			var ve *schemas.ValidationError
			require.ErrorAs(t, err, &ve)
			require.NotEmpty(t, ve.Errors)
			assert.Equal(t, tt.field, ve.Errors[0].Field)
		})
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/x")
	t.Setenv("WEBHOOK_TIMEOUT", "90s")
	t.Setenv("MAX_IMAGES", "not-a-number")
	t.Setenv("MAX_IMAGE_BYTES", "1024")
	t.Setenv("RENDER_STYLE", "light")

	cfg := FromEnv()
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "https://hooks.example.com/x", cfg.WebhookURL)
	assert.Equal(t, 90, cfg.WebhookTimeoutSeconds)
	assert.Equal(t, 0, cfg.MaxImages)
	assert.Equal(t, int64(1024), cfg.MaxImageBytes)
	assert.Equal(t, "light", cfg.RenderStyle)
}

func TestFromEnv_PlainSeconds(t *testing.T) {
	t.Setenv("WEBHOOK_TIMEOUT", "30")
	assert.Equal(t, 30, FromEnv().WebhookTimeoutSeconds)
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("WEBHOOK_URL", "")
	t.Setenv("WEBHOOK_TIMEOUT", "")
	t.Setenv("MAX_IMAGES", "")
	t.Setenv("MAX_IMAGE_BYTES", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("RENDER_STYLE", "")

	path := writeConfig(t, `{"port": 9090, "webhook_url": "https://file.example.com/hook"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Environment wins over the file, the file over defaults
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "https://file.example.com/hook", cfg.WebhookURL)
	assert.Equal(t, Defaults().MaxImages, cfg.MaxImages)
	assert.Equal(t, Defaults().RenderStyle, cfg.RenderStyle)
}

func TestLoad_RejectsInvalidEnv(t *testing.T) {
	t.Setenv("RENDER_STYLE", "neon")

	_, err := Load("")
	require.Error(t, err)

	var ve *schemas.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "render_style", ve.Errors[0].Field)
}

func TestValidate_NegativeValues(t *testing.T) {
	cfg := &Config{MaxImages: -1}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_images")
}

func TestValidate_BadWebhookURL(t *testing.T) {
	cfg := &Config{WebhookURL: "not a url"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "webhook_url")
}

func TestValidate_MissingLogDir(t *testing.T) {
	cfg := &Config{LogFile: "/nonexistent/dir/intake.log"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "log directory not found")
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		Port:       9000,
		WebhookURL: "https://custom.example.com/hook",
	}

	merged := partial.MergeWithDefaults(Defaults())

	// Custom values should be preserved
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "https://custom.example.com/hook", merged.WebhookURL)

	// Default values should fill in empty fields
	assert.Equal(t, 3, merged.MaxImages)
	assert.Equal(t, int64(10<<20), merged.MaxImageBytes)
	assert.Equal(t, "dark", merged.RenderStyle)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Port: 1234}
	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, 1234, merged.Port)
	assert.Empty(t, merged.WebhookURL)
}

func TestDefaults_MatchIntakeLimits(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, intake.DefaultLimits(), cfg.Limits())
}

func TestLimits(t *testing.T) {
	cfg := Config{MaxImages: 2, MaxImageBytes: 4096}
	limits := cfg.Limits()
	assert.Equal(t, 2, limits.MaxImages)
	assert.Equal(t, int64(4096), limits.MaxImageBytes)
}

func TestWebhookStore(t *testing.T) {
	store := NewWebhookStore("")
	assert.Empty(t, store.URL())

	err := store.Set("")
	assert.ErrorIs(t, err, ErrInvalidWebhookURL)

	err = store.Set("javascript:alert(1)")
	assert.ErrorIs(t, err, ErrInvalidWebhookURL)
	assert.Empty(t, store.URL())

	before := store.UpdatedAt()
	require.NoError(t, store.Set("https://example.app.n8n.cloud/webhook/abc"))
	assert.Equal(t, "https://example.app.n8n.cloud/webhook/abc", store.URL())
	assert.False(t, store.UpdatedAt().Before(before))
}

func TestWebhookStore_Concurrent(t *testing.T) {
	store := NewWebhookStore("https://a.example.com/hook")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("https://b.example.com/hook")
		}()
		go func() {
			defer wg.Done()
			_ = store.URL()
		}()
	}
	wg.Wait()
	assert.Equal(t, "https://b.example.com/hook", store.URL())
}

func TestConfigureLogging_File(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "intake.log")
	closer := ConfigureLogging(path)

	log.Printf("[test] hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[test] hello")
}

func TestConfigureLogging_Stderr(t *testing.T) {
	closer := ConfigureLogging("")
	assert.NoError(t, closer.Close())
}
