// Package handler maps task-type names to the code that processes them.
//
// A Registry is an explicitly constructed object owned by the worker pool,
// not ambient global state. Each registered Handler carries its own binding
// strategy, chosen at registration time from an enumerated set (zero-param,
// raw map, typed struct, keyword parameters) rather than inferred per call.
package handler
