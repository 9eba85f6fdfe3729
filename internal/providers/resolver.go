// Package providers reconciles the two provider universes (authenticated
// PIMS directory vs. public directory) into one shape and resolves a
// free-text preferred-doctor value against it.
package providers

import "strings"

// Provider is a doctor record in either directory.
type Provider struct {
	ID     string `json:"id"`
	PimsID string `json:"pimsId,omitempty"`
	Name   string `json:"name"`
}

// Resolve matches a free-text preferred-doctor value against the directory.
// The input may carry a "Dr. " prefix. Match order: exact name, exact against
// "Dr. "+name, then case-insensitive substring in either direction. First
// match in directory order wins. A false second return means no provider
// matched; callers treat that as "no recommendation available", not an error.
func Resolve(preferred string, directory []Provider) (Provider, bool) {
	name := strings.TrimSpace(preferred)
	if name == "Dr." || name == "Dr" {
		// Prefix with nothing after it.
		return Provider{}, false
	}
	name = strings.TrimSpace(strings.TrimPrefix(name, "Dr. "))
	if name == "" {
		return Provider{}, false
	}

	for _, p := range directory {
		if p.Name == name {
			return p, true
		}
	}
	for _, p := range directory {
		if "Dr. "+p.Name == name {
			return p, true
		}
	}

	lower := strings.ToLower(name)
	for _, p := range directory {
		pl := strings.ToLower(p.Name)
		if strings.Contains(pl, lower) || strings.Contains(lower, pl) {
			return p, true
		}
	}
	return Provider{}, false
}
