package store

import (
	"testing"
)

// Compile-time checks that the interface is importable and usable.
func TestPlatformInterfaceExists(t *testing.T) {
	// This test simply validates that the Platform interface compiles
	// and the sentinel errors are accessible.
	_ = ErrNotFound
	_ = ErrInvalidCredentials
	_ = ErrNotAuthorized
	_ = ErrDuplicate
	_ = SignUpParams{}
	_ = MemberSets{}

	// Ensure the interface is non-nil type.
	var _ Platform
}
