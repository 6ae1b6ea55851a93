package backend

import (
	"context"
	"fmt"

	"pkt.systems/trove/schema"
)

// GetSettings returns all settings, writing the defaults on first access.
func (b *Backend) GetSettings(_ context.Context) (schema.Settings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settingsLocked()
}

// GetSetting returns the setting with the given title.
func (b *Backend) GetSetting(_ context.Context, title string) (schema.Setting, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	settings, err := b.settingsLocked()
	if err != nil {
		return schema.Setting{}, err
	}
	setting, ok := settings.Lookup(title)
	if !ok {
		return schema.Setting{}, fmt.Errorf("%w: %s", schema.ErrSettingNotFound, title)
	}
	return setting, nil
}

// SaveSetting stores the selected value of a setting.
func (b *Backend) SaveSetting(_ context.Context, title, value string) error {
	return b.updateSetting(title, func(s *schema.Setting) {
		selected := value
		s.Selected = &selected
	})
}

// ToggleCheck flips the checkbox of a setting. An unset box becomes checked.
func (b *Backend) ToggleCheck(_ context.Context, title string) error {
	return b.updateSetting(title, func(s *schema.Setting) {
		checked := !s.Checked()
		s.Check = &checked
	})
}

func (b *Backend) updateSetting(title string, apply func(*schema.Setting)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	settings, err := b.settingsLocked()
	if err != nil {
		return err
	}
	for i := range settings {
		for j := range settings[i].Settings {
			if settings[i].Settings[j].Title != title {
				continue
			}
			apply(&settings[i].Settings[j])
			if err := b.store.SaveSettings(settings); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			b.log.Debug("backend setting updated", "setting", title)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", schema.ErrSettingNotFound, title)
}

func (b *Backend) settingsLocked() (schema.Settings, error) {
	settings, ok, err := b.store.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if ok {
		return settings, nil
	}
	settings = schema.DefaultSettings()
	if err := b.store.SaveSettings(settings); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	b.log.Info("backend settings initialized", "path", b.store.SettingsPath())
	return settings, nil
}
