package schema

// Setting is a single user-facing setting.
type Setting struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Select      []string `json:"select,omitempty"`
	Check       *bool    `json:"check"`
	Selected    *string  `json:"selected,omitempty"`
}

// Value returns the selected option, or "" when none is set.
func (s Setting) Value() string {
	if s.Selected == nil {
		return ""
	}
	return *s.Selected
}

// Checked reports the checkbox state, treating unset as false.
func (s Setting) Checked() bool {
	return s.Check != nil && *s.Check
}

// SettingCategory groups settings under a section title.
type SettingCategory struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Settings    []Setting `json:"setting"`
}

// Settings is the ordered list of setting categories.
type Settings []SettingCategory

// Category returns the category with the given title.
func (s Settings) Category(title string) (SettingCategory, bool) {
	for _, category := range s {
		if category.Title == title {
			return category, true
		}
	}
	return SettingCategory{}, false
}

// Lookup returns the first setting with the given title across categories.
func (s Settings) Lookup(title string) (Setting, bool) {
	for _, category := range s {
		for _, setting := range category.Settings {
			if setting.Title == title {
				return setting, true
			}
		}
	}
	return Setting{}, false
}

// DefaultSettings returns the settings written when none exist yet.
func DefaultSettings() Settings {
	return Settings{
		{
			Title:       "General",
			Description: "General settings",
			Settings: []Setting{
				selectSetting("Language", "Language settings", "English", "English"),
			},
		},
		{
			Title:       "Appearance",
			Description: "Appearance settings",
			Settings: []Setting{
				selectSetting("Theme", "Theme settings", "Dark", "Light", "Dark", "Custom"),
				selectSetting("App Font", "Select a font to use in the app", "Times New Roman", "Roboto", "Arial", "Times New Roman", "Courier New"),
				selectSetting("App Font Size", "Select a font size to use in the app", "Medium", "Small", "Medium", "Large"),
				selectSetting("App Font Weight", "Select a font weight to use in the app", "Regular", "Light", "Regular", "Bold"),
				selectSetting("Editor Font", "Select a font to use in the editor", "Roboto", "Roboto", "Arial", "Times New Roman", "Courier New"),
				selectSetting("Editor Font Size", "Select a font size to use in the editor", "Medium", "Small", "Medium", "Large"),
				selectSetting("Editor Font Weight", "Select a font weight to use in the editor", "Regular", "Light", "Regular", "Bold"),
			},
		},
		{
			Title:       "Shortcuts",
			Description: "Shortcuts settings",
			Settings: []Setting{
				selectSetting("Delete Document", "Delete the current document", "meta+backspace", "Ctrl+D", "Cmd+D", "Delete"),
				selectSetting("Close Tab", "Close the current tab", "meta+w", "Ctrl+C", "Cmd+W", "Alt+F4"),
				selectSetting("New Document", "Create a new document", "meta+n", "Ctrl+N", "Cmd+N", "Alt+N"),
				selectSetting("Toggle Toolbar", "Show/hide the toolbar", "meta+b", "Ctrl+T", "Cmd+T", "F11"),
				selectSetting("Cycle Tabs", "Switch between tabs", "meta+a", "Ctrl+Tab", "Cmd+`", "Alt+Tab"),
				selectSetting("Force Close Tab", "Force close the current tab", "ctrl+c", "Ctrl+Alt+C", "Cmd+Alt+W", "Shift+Alt+F4"),
				selectSetting("Go to First Tab", "Switch to the first tab", "ctrl+1", "Ctrl+1", "Cmd+1", "Alt+1"),
				selectSetting("Go to Last Tab", "Switch to the last tab", "ctrl+2", "Ctrl+9", "Cmd+9", "Alt+9"),
				selectSetting("Command Palette", "Open the command palette", "ctrl+3", "Ctrl+P", "Cmd+P", "F1"),
			},
		},
		{
			Title:       "Sync",
			Description: "Sync settings",
			Settings:    []Setting{},
		},
	}
}

func selectSetting(title, description, selected string, options ...string) Setting {
	value := selected
	return Setting{
		Title:       title,
		Description: description,
		Select:      append([]string(nil), options...),
		Selected:    &value,
	}
}
