//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime. They keep mockgen, invoked by
// `go generate` on contract/contract.go and repositories/transcript.go,
// tracked in go.mod so mocks regenerate the same way on a fresh checkout.
package chat_client

import (
	_ "go.uber.org/mock/mockgen"
)
