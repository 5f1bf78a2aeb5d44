package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestRenderDefaultTOMLParses(t *testing.T) {
	out := RenderDefaultTOML()

	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(out)); err != nil {
		t.Fatalf("generated TOML does not parse: %v\n%s", err, out)
	}
	if got := v.GetString("sort"); got != "updated" {
		t.Fatalf("sort=%q", got)
	}
	if got := v.GetInt("preview.debounce_ms"); got != 400 {
		t.Fatalf("preview.debounce_ms=%d", got)
	}
}

func TestUpdateTOMLAddsMissingAndFlagsUnknown(t *testing.T) {
	existing := "sort = \"title\"\nold_knob = 3\n"
	out, changed := UpdateTOML(existing)
	if !changed {
		t.Fatal("expected changes")
	}
	if !strings.Contains(out, "sort = \"title\"") {
		t.Fatalf("kept value lost:\n%s", out)
	}
	if !strings.Contains(out, "# OUTDATED") || !strings.Contains(out, "# old_knob = 3") {
		t.Fatalf("unknown key not commented out:\n%s", out)
	}
	if !strings.Contains(out, "debounce_ms") {
		t.Fatalf("missing keys not added:\n%s", out)
	}

	// A fully up-to-date file is left alone.
	again, changed2 := UpdateTOML(out)
	if changed2 {
		t.Fatalf("second pass should be stable, diff:\n%s", again)
	}
}
