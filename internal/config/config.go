package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Option is one configuration key with its default and meaning. Options()
// is the single source of truth for defaults and for `config init` output.
type Option struct {
	Key     string
	Default any
	Comment string
}

// Options returns every configuration key notedown understands.
func Options() []Option {
	return []Option{
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; DB is data_dir/notedown.db"},
		{Key: "default_tags", Default: []string{}, Comment: "Tags applied when creating a note without explicit tags"},
		{Key: "sort", Default: "updated", Comment: "Default list ordering: updated|created|title"},

		{Key: "http_addr", Default: ":7465", Comment: "HTTP listen address for the preview daemon"},
		{Key: "auth.token", Default: "", Comment: "Bearer token required by the preview API (empty disables auth)"},
		{Key: "export.page_size", Default: 200, Comment: "Batch size for list/search export paging"},

		{Key: "preview.debounce_ms", Default: 400, Comment: "Auto-save debounce for the live preview session, in milliseconds"},
		{Key: "render.strict_lists", Default: false, Comment: "Wrap every list run in <ul>/<ol> instead of the legacy first-run-only <ul>"},

		{Key: "editor.delete_empty", Default: true, Comment: "Delete note if editor exits with no content"},

		{Key: "share.addr", Default: ":7466", Comment: "QUIC listen address for `share receive`"},
		{Key: "share.domain", Default: "", Comment: "Domain for ACME-managed share TLS (empty uses a self-signed cert)"},
		{Key: "share.email", Default: "", Comment: "Contact email for ACME registration"},
	}
}

func applyDefaults(v *viper.Viper) {
	for _, o := range Options() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated in place.
func Load(ctx context.Context, v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "notedown"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "notedown"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	// Missing file is fine; defaults and env carry the day.
	_ = v.ReadInConfig()

	// Environment: NOTEDOWN_* overrides the file.
	v.SetEnvPrefix("notedown")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}

	// Allow comma-separated env override for default_tags.
	if len(v.GetStringSlice("default_tags")) == 0 {
		if s := strings.TrimSpace(v.GetString("default_tags")); s != "" {
			parts := strings.Split(s, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if t := strings.TrimSpace(p); t != "" {
					out = append(out, t)
				}
			}
			if len(out) > 0 {
				v.Set("default_tags", out)
			}
		}
	}
	return nil
}

// defaultDataDir resolves $XDG_DATA_HOME/notedown or ~/.local/share/notedown.
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "notedown")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "notedown")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "notedown", "config.toml")
}

// ResolveDBURL builds the sqlite store URL from data_dir.
func ResolveDBURL(v *viper.Viper) string {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	if strings.HasPrefix(dir, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return "sqlite://" + filepath.Join(dir, "notedown.db")
}
