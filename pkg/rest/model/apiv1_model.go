// Package model holds the JSON documents of the REST API.
package model

import (
	"time"

	"github.com/runic/mailman/pkg/wizard"
)

// JSONErrorV1 is the body of every non-2xx API response.
type JSONErrorV1 struct {
	Error string `json:"error"`
}

// JSONServiceStatusV1 is the status board entry of one service.
type JSONServiceStatusV1 struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Label       string `json:"label"`
	Uptime      string `json:"uptime"`
	LastChecked string `json:"lastChecked"`
}

// JSONStatusV1 is the whole status board.
type JSONStatusV1 struct {
	Refreshing bool                   `json:"refreshing"`
	Services   []*JSONServiceStatusV1 `json:"services"`
}

// JSONComponentV1 is a home page component summary.
type JSONComponentV1 struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Health string `json:"health"`
}

// JSONMailStatsV1 are the home page mail statistics.
type JSONMailStatsV1 struct {
	EmailsProcessed int `json:"emailsProcessed"`
	SpamDetected    int `json:"spamDetected"`
	ActiveUsers     int `json:"activeUsers"`
	DiskUsage       int `json:"diskUsage"`
}

// JSONActivityV1 is one activity feed entry.
type JSONActivityV1 struct {
	Kind        string    `json:"kind"`
	Message     string    `json:"message"`
	Time        time.Time `json:"time"`
	PosixMillis int64     `json:"posix-millis"`
	Ago         string    `json:"ago"`
}

// JSONOverviewV1 is the home page data.
type JSONOverviewV1 struct {
	Components []*JSONComponentV1 `json:"components"`
	Stats      JSONMailStatsV1    `json:"stats"`
	Recent     []*JSONActivityV1  `json:"recent"`
}

// JSONNavItemV1 is a navigation entry.
type JSONNavItemV1 struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

// JSONNavV1 is the navigation shell for a path.
type JSONNavV1 struct {
	Title  string           `json:"title"`
	Footer string           `json:"footer"`
	Items  []*JSONNavItemV1 `json:"items"`
}

// JSONStepV1 describes a wizard step and how it relates to the current one.
type JSONStepV1 struct {
	Index       int    `json:"index"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	State       string `json:"state"`
}

// JSONWizardV1 is the wizard state of the caller's session.  Exactly one of Requirements, Install
// and Complete is set, as named by Kind.
type JSONWizardV1 struct {
	Current      int                       `json:"current"`
	Progress     int                       `json:"progress"`
	NextLabel    string                    `json:"nextLabel"`
	CanPrevious  bool                      `json:"canPrevious"`
	CanNext      bool                      `json:"canNext"`
	Steps        []*JSONStepV1             `json:"steps"`
	Details      wizard.ServerDetails      `json:"details"`
	Kind         string                    `json:"kind"`
	Requirements *wizard.RequirementsPanel `json:"requirements,omitempty"`
	Install      *wizard.InstallPanel      `json:"install,omitempty"`
	Complete     *wizard.CompletePanel     `json:"complete,omitempty"`
}

// JSONServiceV1 is an editor service.
type JSONServiceV1 struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JSONFileHeaderV1 describes a config file without its content.
type JSONFileHeaderV1 struct {
	Service string `json:"service"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Size    int    `json:"size"`
}

// JSONFileV1 is a config file including its content.
type JSONFileV1 struct {
	Service string `json:"service"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// JSONEditorV1 is the editor state of the caller's session.
type JSONEditorV1 struct {
	Service         JSONServiceV1       `json:"service"`
	Files           []*JSONFileHeaderV1 `json:"files"`
	File            *JSONFileV1         `json:"file,omitempty"`
	Buffer          string              `json:"buffer"`
	Modified        bool                `json:"modified"`
	ValidationError string              `json:"validationError,omitempty"`
	Saved           bool                `json:"saved"`
	Saving          bool                `json:"saving"`
	Restarting      bool                `json:"restarting"`
}
