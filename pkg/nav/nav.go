// Package nav describes the dashboard navigation shell.
package nav

import "strings"

// Brand text shown in the sidebar.
const (
	Brand   = "Runic Mailman"
	Tagline = "Mail Server Management"
)

// DefaultTitle is the page title when no item matches the path.
const DefaultTitle = "Dashboard"

// Item is a navigation entry.
type Item struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

var items = []Item{
	{Name: "Dashboard", Path: "/", Icon: "home"},
	{Name: "Installation Wizard", Path: "/installation", Icon: "server"},
	{Name: "Configuration Editor", Path: "/config", Icon: "file-code"},
	{Name: "Monitoring", Path: "/monitoring", Icon: "activity"},
	{Name: "User Management", Path: "/users", Icon: "users"},
	{Name: "SSL Certificates", Path: "/ssl", Icon: "shield"},
}

// Items returns the navigation entries with those matching path marked active.  Matching is exact
// after trimming a trailing slash, so "/config/" activates the Configuration Editor.
func Items(path string) []Item {
	path = clean(path)
	result := make([]Item, len(items))
	for i, it := range items {
		it.Active = it.Path == path
		result[i] = it
	}
	return result
}

// Title returns the name of the active item, or DefaultTitle.
func Title(path string) string {
	path = clean(path)
	for _, it := range items {
		if it.Path == path {
			return it.Name
		}
	}
	return DefaultTitle
}

// Footer returns the sidebar footer for version.
func Footer(version string) string {
	if version == "" {
		version = "1.0.0"
	}
	return Brand + " v" + strings.TrimPrefix(version, "v")
}

func clean(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}
