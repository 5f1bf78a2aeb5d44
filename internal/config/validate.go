package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/halvard/notedown/pkg/api"
)

// Validate checks the merged configuration and reports every problem at
// once, joined into a single error.
func Validate(v *viper.Viper) error {
	var problems []string

	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		problems = append(problems, "data_dir is required")
	}
	if _, ok := api.ParseSortKey(v.GetString("sort")); !ok {
		problems = append(problems, fmt.Sprintf("sort must be one of updated|created|title, got %q", v.GetString("sort")))
	}
	if v.GetInt("export.page_size") <= 0 {
		problems = append(problems, "export.page_size must be greater than 0")
	}
	if v.GetInt("preview.debounce_ms") < 0 {
		problems = append(problems, "preview.debounce_ms must not be negative")
	}
	if v.GetString("share.domain") != "" && strings.TrimSpace(v.GetString("share.email")) == "" {
		problems = append(problems, "share.email is required when share.domain is set")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid config: " + strings.Join(problems, "; "))
}
