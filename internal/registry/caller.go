package registry

import "github.com/edvin/equipreg/internal/model"

// CallerContext supplies the authenticated identity of the current call. The
// host verifies the identity before the call reaches a registry.
type CallerContext interface {
	CurrentCaller() model.Identity
}

// Caller is a CallerContext for a fixed identity.
type Caller model.Identity

func (c Caller) CurrentCaller() model.Identity {
	return model.Identity(c)
}
