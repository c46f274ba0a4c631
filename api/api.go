// Copyright (c) 2025 BVK Chaitanya

// Package api defines the request/response types and url paths for the
// skinbot daemon's control endpoints. All endpoints accept POST requests
// with a JSON body and respond with JSON.
package api
