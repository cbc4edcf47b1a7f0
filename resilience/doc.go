// Package resilience provides the retry and circuit breaker patterns used
// around snapshot storage.
//
// Snapshot writes are retried with exponential backoff; the breaker wraps
// the backend so a dead store fails fast instead of stalling every
// mutation through a full retry cycle:
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("storage"))
//	err := resilience.RetryFunc(ctx, resilience.DefaultRetryConfig(), func() error {
//	    return cb.Execute(func() error { return store.Save(ctx, key, data) })
//	})
package resilience
