package models

import "time"

// Theme values accepted for Preferences.Theme.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// View modes accepted for Preferences.ViewMode.
const (
	ViewModeGrid = "grid"
	ViewModeList = "list"
)

// Preferences are the per-viewer UI settings shared by every page of a shell.
type Preferences struct {
	ViewerID    string    `bson:"viewer_id"    json:"-"`
	Theme       string    `bson:"theme"        json:"theme"`
	ViewMode    string    `bson:"view_mode"    json:"viewMode"`
	DisplayName string    `bson:"display_name" json:"displayName"`
	UpdatedAt   time.Time `bson:"updated_at"   json:"updatedAt"`
}

// DefaultPreferences returns the settings used before a viewer saves any.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:    ThemeSystem,
		ViewMode: ViewModeGrid,
	}
}

// Normalize replaces unknown enum values with defaults.
func (p Preferences) Normalize() Preferences {
	switch p.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		p.Theme = ThemeSystem
	}
	switch p.ViewMode {
	case ViewModeGrid, ViewModeList:
	default:
		p.ViewMode = ViewModeGrid
	}
	return p
}
