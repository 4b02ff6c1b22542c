package internal

import (
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if n := len(cfg.Fields.FieldMap().Names()); n != 9 {
		t.Errorf("mapped fields = %d, want 9", n)
	}
}

func TestFieldsConfig_RequiredFields(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Fields.BlockID = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing block_id mapping should fail")
	}

	cfg = NewDefaultConfig()
	cfg.Fields.Text = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing text mapping should fail")
	}
}

func TestFieldsConfig_OptionalFieldsMayBeEmpty(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Fields.RoamText = ""
	cfg.Fields.Graph = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("optional fields may be unmapped: %v", err)
	}
	if fm := cfg.Fields.FieldMap(); fm.RoamText != "" || fm.Text != "Text" {
		t.Errorf("FieldMap = %+v", fm)
	}
}

func TestFieldsConfig_DuplicateName(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Fields.Source = "Text"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "more than once") {
		t.Errorf("err = %v, want duplicate mapping error", err)
	}
}

func TestImportConfig_CurlyPolicy(t *testing.T) {
	cfg := ImportConfig{InboxPath: "./inbox"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty policy should default: %v", err)
	}
	if cfg.CurlyCommands != "drop" {
		t.Errorf("curly_commands = %q, want %q", cfg.CurlyCommands, "drop")
	}
	cfg.CurlyCommands = "explode"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown curly policy should fail")
	}
}

func TestCollectionConfig_ModelRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Collection.ModelName = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing model name should fail")
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenMode(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "secret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}

	cfg = AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("err = %v, want empty token error", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}
