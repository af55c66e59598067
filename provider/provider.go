// Package provider defines the translation collaborator boundary and its
// implementations.
package provider

import "github.com/kotonoha-dev/kotoba"

// Provider is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Provider = kotoba.Provider

// Request is an alias to the main package type.
type Request = kotoba.Request
