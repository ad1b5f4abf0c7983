// Package api exposes the asset and certification registries over HTTP.
// Every /api/v1 route authenticates the caller by API key; the resolved
// identity is the caller context of the registry call.
package api
