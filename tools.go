//go:build tools

package tools

// This file tracks versions of CLI tool dependencies.
// It is not compiled into the binary.
//
// - github.com/matryer/moq (mocks: *_mock_test.go, see go:generate lines)
// - github.com/pressly/goose/v3/cmd/goose (tool directive in go.mod; migrations live in
//   internal/adapter/sqlite/migrations and are embedded)
