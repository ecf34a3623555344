// Package registry provides a generic thread-safe registry for values indexed by key.
//
// Registry is designed for read-heavy workloads using sync.RWMutex and keeps
// the order in which keys were registered. Ordered iteration is what lets the
// function identifier table enumerate its entries the same way on every call.
//
//	r := registry.New[string, int]()
//	r.TryRegister("one", 1)
//	r.TryRegister("two", 2)
//	r.TryRegister("one", 10) // false, "one" already present
//
//	r.Values() // [1, 2]
package registry
