// Package cache provides a small generic LRU cache.
//
// The validator uses it to remember rule declarations it has already parsed,
// so a field validated on every keystroke does not re-parse the same
// "required|min:3" string each time.
//
//	c := cache.NewLRU[string, int](128)
//	c.Add("a", 1)
//	v, ok := c.Get("a") // 1, true
//
// All methods are safe for concurrent use.
package cache
