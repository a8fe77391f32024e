package routes

import (
	"github.com/horockey/settingsapp/internal/model"
	"github.com/samber/lo"
)

// SettingsChunk is the bundle all settings modules are shipped in.
const SettingsChunk = "settings"

var settings = []model.RouteEntry{
	{
		Path:   "/settings",
		Module: "Settings",
		Chunk:  SettingsChunk,
		Children: []model.RouteEntry{
			{
				Path:   "",
				Name:   "Settings",
				Module: "SettingsMenu",
				Chunk:  SettingsChunk,
			},
			{
				Path:   "categories",
				Name:   "SettingsCategories",
				Module: "SettingsCategories",
				Chunk:  SettingsChunk,
			},
			{
				Path:   "about",
				Name:   "SettingsAbout",
				Module: "SettingsAbout",
				Chunk:  SettingsChunk,
			},
			{
				Path:   "data",
				Name:   "SettingsData",
				Module: "SettingsData",
				Chunk:  SettingsChunk,
			},
		},
	},
}

// Settings returns the settings section route table.
// Each call returns a fresh copy.
func Settings() []model.RouteEntry {
	return lo.Map(settings, func(el model.RouteEntry, _ int) model.RouteEntry {
		return el.Clone()
	})
}
