// Package compat exposes the legacy plain-mapping call surface over one
// factory-selected adapter.
//
// Existing callers pass chat turns as []map[string]interface{} and read the
// familiar completion envelope back; the facade translates both directions
// 1:1 so swapping the adapter layer underneath requires no caller changes.
// Embedding requests gain cross-provider capability fallback: a typed
// CapabilityError from the primary provider routes the single failing call
// to a designated embedding-capable provider, while every other failure
// mode propagates unchanged.
package compat
