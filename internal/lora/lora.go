// Package lora defines the adapter-lifecycle roles, request payloads, and
// the header-to-body formatter for hosting LoRA adapters alongside a base
// model. Adapter handlers resolve through the same priority chain as ping
// and invoke.
package lora

import (
	"fmt"
)

// Adapter lifecycle role names, resolved per request against the customer
// script convention ("model:<role>").
const (
	RoleRegisterAdapter   = "register_adapter"
	RoleUnregisterAdapter = "unregister_adapter"
	RoleUpdateAdapter     = "update_adapter"
	RoleListAdapters      = "list_adapters"
)

// Roles lists all adapter lifecycle roles.
var Roles = []string{
	RoleRegisterAdapter,
	RoleUnregisterAdapter,
	RoleUpdateAdapter,
	RoleListAdapters,
}

// Request headers carrying adapter identity on invocation requests.
const (
	HeaderAdapterID     = "X-Adapter-Identifier"
	HeaderAdapterSource = "X-Adapter-Source"
)

// RegisterAdapterRequest asks the serving engine to load an adapter.
type RegisterAdapterRequest struct {
	AdapterName   string `json:"adapterName"`
	AdapterSource string `json:"adapterSource"`
	Preempt       bool   `json:"preempt,omitempty"`
}

// Validate checks required fields.
func (r *RegisterAdapterRequest) Validate() error {
	if r.AdapterName == "" {
		return fmt.Errorf("adapterName is required")
	}
	if r.AdapterSource == "" {
		return fmt.Errorf("adapterSource is required")
	}
	return nil
}

// UpdateAdapterRequest swaps an adapter's artifact in place.
type UpdateAdapterRequest struct {
	AdapterName   string `json:"adapterName"`
	AdapterSource string `json:"adapterSource"`
}

// Validate checks required fields.
func (r *UpdateAdapterRequest) Validate() error {
	if r.AdapterName == "" {
		return fmt.Errorf("adapterName is required")
	}
	if r.AdapterSource == "" {
		return fmt.Errorf("adapterSource is required")
	}
	return nil
}

// UnregisterAdapterRequest unloads an adapter by name.
type UnregisterAdapterRequest struct {
	AdapterName string `json:"adapterName"`
}

// Validate checks required fields.
func (r *UnregisterAdapterRequest) Validate() error {
	if r.AdapterName == "" {
		return fmt.Errorf("adapterName is required")
	}
	return nil
}

// ListAdaptersRequest pages through loaded adapters.
type ListAdaptersRequest struct {
	MaxResults int    `json:"maxResults,omitempty"`
	NextToken  string `json:"nextToken,omitempty"`
}

// Validate checks paging bounds.
func (r *ListAdaptersRequest) Validate() error {
	if r.MaxResults < 0 {
		return fmt.Errorf("maxResults must not be negative")
	}
	return nil
}
