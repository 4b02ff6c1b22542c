package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/roamdeck/internal/reconcile"
	"github.com/starford/roamdeck/internal/render"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Collection CollectionConfig  `yaml:"collection"`
	Fields     FieldsConfig      `yaml:"fields"`
	Import     ImportConfig      `yaml:"import"`
	Auth       AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Collection.Validate(); err != nil {
		return err
	}
	if err := c.Fields.Validate(); err != nil {
		return err
	}
	if err := c.Import.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CollectionConfig locates the note collection and the model cards use.
type CollectionConfig struct {
	Path      string `yaml:"path"`
	ModelName string `yaml:"model_name"`
	DeckName  string `yaml:"deck_name"`
}

// Validate validates the collection configuration.
func (c *CollectionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.ModelName, validation.Required),
	)
}

// FieldsConfig names the note field each card field is written to. Leave a
// field empty to not write it. Text and BlockID are required.
type FieldsConfig struct {
	Text         string `yaml:"text"`
	RoamText     string `yaml:"roam_text"`
	Source       string `yaml:"source"`
	Graph        string `yaml:"graph"`
	PageTitle    string `yaml:"page_title"`
	PageID       string `yaml:"page_id"`
	BlockID      string `yaml:"block_id"`
	BlockCreated string `yaml:"block_created"`
	BlockUpdated string `yaml:"block_updated"`
}

// Validate validates the field mapping.
func (c *FieldsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Text, validation.Required),
		validation.Field(&c.BlockID, validation.Required),
	); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, n := range c.FieldMap().Names() {
		if seen[n] {
			return fmt.Errorf("fields: %q is mapped more than once", n)
		}
		seen[n] = true
	}
	return nil
}

// FieldMap converts the mapping for the reconciliation engine.
func (c *FieldsConfig) FieldMap() reconcile.FieldMap {
	return reconcile.FieldMap{
		Text:         c.Text,
		RoamText:     c.RoamText,
		Source:       c.Source,
		Graph:        c.Graph,
		PageTitle:    c.PageTitle,
		PageID:       c.PageID,
		BlockID:      c.BlockID,
		BlockCreated: c.BlockCreated,
		BlockUpdated: c.BlockUpdated,
	}
}

// ImportConfig controls how exports are turned into cards.
type ImportConfig struct {
	GraphName     string `yaml:"graph_name"`
	FilePath      string `yaml:"file_path"`
	InboxPath     string `yaml:"inbox_path"`
	SourceApp     string `yaml:"source_app"`
	CurlyCommands string `yaml:"curly_commands"`
}

// Validate validates the import configuration.
func (c *ImportConfig) Validate() error {
	if c.CurlyCommands == "" {
		c.CurlyCommands = string(render.CurlyDrop)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.InboxPath, validation.Required),
		validation.Field(&c.CurlyCommands, validation.In(string(render.CurlyDrop), string(render.CurlyKeep))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Collection: CollectionConfig{
			Path:      "./roamdeck.db",
			ModelName: "Roam Cloze",
			DeckName:  "Roam",
		},
		Fields: FieldsConfig{
			Text:         "Text",
			RoamText:     "Roam Text",
			Source:       "Source",
			Graph:        "Graph",
			PageTitle:    "Page Title",
			PageID:       "Page ID",
			BlockID:      "Block ID",
			BlockCreated: "Block Created",
			BlockUpdated: "Block Updated",
		},
		Import: ImportConfig{
			InboxPath:     "./inbox",
			SourceApp:     render.DefaultApp,
			CurlyCommands: string(render.CurlyDrop),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
