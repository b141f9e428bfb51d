// Package mocks provides mock implementations for testing the auth edge layer.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces. The mocks are generated with go:generate directives and
// provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	verifier := mocks.NewMockTokenVerifier(ctrl)
//	verifier.EXPECT().Verify(gomock.Any(), "tok").Return(identity, nil)
package mocks

// Generate mocks for the auth port interfaces from internal/ports:
// TokenVerifier, SessionRevoker, ProfileStore, TokenCache.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=ports_mock.go github.com/sankulkush/UTHBUS-sub001/internal/ports TokenVerifier,SessionRevoker,ProfileStore,TokenCache
