package config

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadAppliesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigFile("/nonexistent/config.toml")
	if err := Load(context.Background(), v); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := v.GetString("sort"); got != "updated" {
		t.Errorf("sort default = %q, want %q", got, "updated")
	}
	if got := v.GetInt("preview.debounce_ms"); got != 400 {
		t.Errorf("preview.debounce_ms default = %d, want 400", got)
	}
	if v.GetString("data_dir") == "" {
		t.Error("data_dir default is empty")
	}
	if v.GetBool("render.strict_lists") {
		t.Error("render.strict_lists should default to false")
	}
}

func TestValidateValid(t *testing.T) {
	v := viper.New()
	v.Set("data_dir", "/tmp/notedown")
	v.Set("sort", "title")
	v.Set("export.page_size", 100)
	v.Set("preview.debounce_ms", 0)

	if err := Validate(v); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	v := viper.New()
	v.Set("data_dir", "")
	v.Set("sort", "sideways")
	v.Set("export.page_size", 0)
	v.Set("preview.debounce_ms", -1)
	v.Set("share.domain", "notes.example.com")
	v.Set("share.email", "")

	err := Validate(v)
	if err == nil {
		t.Fatal("expected error for invalid config")
	}

	msg := err.Error()
	expected := []string{
		"data_dir is required",
		"sort must be one of",
		"export.page_size must be greater than 0",
		"preview.debounce_ms must not be negative",
		"share.email is required",
	}
	for _, want := range expected {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected error to contain %q, got %q", want, msg)
		}
	}
}
