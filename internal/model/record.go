// Package model contains domain types for the migration.
// These types are independent of the Bugzilla, GitHub and GitLab client libraries.
package model

import "fmt"

// Record is a bug as stored in the source tracker.
type Record struct {
	ID        int    `json:"id"`
	Summary   string `json:"summary"`
	Product   string `json:"product"`
	Component string `json:"component"`
	URL       string `json:"url"`
}

// Product is a source tracker product with its components.
type Product struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Components  []Component `json:"components" yaml:"components"`
}

// Component belongs to a Product.
type Component struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ShowBugURL returns the web address of bug id on the tracker at baseURL.
func ShowBugURL(baseURL string, id int) string {
	return fmt.Sprintf("%s/show_bug.cgi?id=%d", baseURL, id)
}
