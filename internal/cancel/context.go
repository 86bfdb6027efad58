package cancel

import "context"

// ContextCanceler adapts a context.Context to the Canceler interface.
//
// Each call to Done() performs a non-blocking select on ctx.Done(). Use it
// when consumers also hand the context to PopContext or to downstream work.
type ContextCanceler struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewContext creates a ContextCanceler derived from parent.
// Cancelling parent also stops the consumers.
func NewContext(parent context.Context) *ContextCanceler {
	ctx, cancel := context.WithCancel(parent)
	return &ContextCanceler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Done returns true if the context has been cancelled.
func (c *ContextCanceler) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Cancel cancels the context.
func (c *ContextCanceler) Cancel() {
	c.cancel()
}

// Context returns the underlying context.
func (c *ContextCanceler) Context() context.Context {
	return c.ctx
}
