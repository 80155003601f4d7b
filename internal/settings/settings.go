// Package settings loads, validates and persists the batch script settings.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"scexport/internal/core"
	"scexport/internal/kv"
)

// ValidationError is a settings validation failure. Key is the message key of the
// localised explanation; Args are its format arguments.
type ValidationError struct {
	Field string
	Key   string
	Args  []interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s", e.Field)
}

// Unwrap makes errors.Is(err, core.ErrValidation) hold.
func (e *ValidationError) Unwrap() error {
	return core.ErrValidation
}

// Validate checks s against the allowed ranges.
func Validate(s core.Settings) error {
	if strings.TrimSpace(s.CommandName) == "" {
		return &ValidationError{Field: "commandName", Key: "error.validation.command_empty"}
	}
	if s.CommandsPerLine < core.MinCommandsPerLine || s.CommandsPerLine > core.MaxCommandsPerLine {
		return &ValidationError{
			Field: "commandsPerLine",
			Key:   "error.validation.per_line_range",
			Args:  []interface{}{core.MinCommandsPerLine, core.MaxCommandsPerLine},
		}
	}
	if strings.TrimSpace(s.Separator) == "" {
		return &ValidationError{Field: "separator", Key: "error.validation.separator_empty"}
	}
	return nil
}

// Apply sets one field from its string form. Field names are the JSON names.
func Apply(s *core.Settings, field, value string) error {
	switch field {
	case "commandName":
		s.CommandName = strings.TrimSpace(value)
	case "commandsPerLine":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return &ValidationError{
				Field: field,
				Key:   "error.validation.per_line_range",
				Args:  []interface{}{core.MinCommandsPerLine, core.MaxCommandsPerLine},
			}
		}
		s.CommandsPerLine = n
	case "separator":
		s.Separator = strings.TrimSpace(value)
	default:
		return fmt.Errorf("%w: unknown field %q", core.ErrValidation, field)
	}
	return nil
}

// Manager reads and writes settings through a kv.Store.
type Manager struct {
	store  kv.Store
	logger *zap.Logger
}

// NewManager creates a Manager.
func NewManager(store kv.Store, logger *zap.Logger) *Manager {
	return &Manager{store: store, logger: logger.Named("settings")}
}

// Load returns the stored settings merged over the defaults. Missing or unreadable
// values fall back to defaults; only storage failures are returned.
func (m *Manager) Load(ctx context.Context) (core.Settings, error) {
	settings := core.DefaultSettings()

	data, ok, err := m.store.Get(ctx, core.SettingsKey)
	if err != nil {
		return settings, err
	}
	if !ok {
		return settings, nil
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		m.logger.Warn("Stored settings are corrupt, using defaults", zap.Error(err))
		return core.DefaultSettings(), nil
	}
	return settings, nil
}

// Save validates and persists s. Invalid settings leave the stored value unchanged.
func (m *Manager) Save(ctx context.Context, s core.Settings) error {
	if err := Validate(s); err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := m.store.Set(ctx, core.SettingsKey, data); err != nil {
		return err
	}

	m.logger.Info("Settings saved",
		zap.String("commandName", s.CommandName),
		zap.Int("commandsPerLine", s.CommandsPerLine),
		zap.String("separator", s.Separator))
	return nil
}

// Reset stores and returns the defaults.
func (m *Manager) Reset(ctx context.Context) (core.Settings, error) {
	defaults := core.DefaultSettings()
	if err := m.Save(ctx, defaults); err != nil {
		return core.Settings{}, err
	}
	return defaults, nil
}
