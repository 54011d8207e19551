// Package async provides a generic Future used to run validations off the
// caller's goroutine.
//
// Async starts a function in its own goroutine and returns a *Future. The
// caller waits with Await. WaitAll collects several futures in order.
//
// # Usage
//
//	futures := make([]*async.Future[*validator.Result], len(values))
//	for i, value := range values {
//	    futures[i] = engine.ValidateAsync(ctx, value, "required|email")
//	}
//	results, err := async.WaitAll(futures...)
//
// # Error Handling
//
// Futures carry the error returned by the function. A context cancelled
// before the goroutine runs yields the context error, and a panic yields
// ErrPanicked.
package async
