package lock

// Callbacks defines the interface for lease lifecycle notifications.
// A lost lease never interrupts the holder's in-progress work; the
// callback is the only signal delivered mid-scope.
type Callbacks interface {
	// OnLeaseLost is called once when a renewal cycle finds the lease
	// gone (expired or taken over). The renewal loop stops after it.
	OnLeaseLost(key string)
}

// NoOpCallbacks implements Callbacks with empty methods.
// Useful as a default when no callbacks are provided.
type NoOpCallbacks struct{}

// OnLeaseLost implements Callbacks.OnLeaseLost with an empty method
func (c *NoOpCallbacks) OnLeaseLost(key string) {}
