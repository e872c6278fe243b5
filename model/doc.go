// Package model contains the in-memory representation of tool actions and
// the contracts shared across the lifecycle manager. The `action` sub-package
// holds the action record with its status machine; `types` declares the tool
// service interface every executable tool implements. The root model package
// simply aggregates those building blocks so that they can be referenced
// from other parts of the code base with a single import.
package model
