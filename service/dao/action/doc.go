// Package action defines the action store contract together with its memory
// and sqlite implementations. The store is the single source of truth for
// lifecycle state; every status change goes through an atomic conditional
// update so that two concurrent approvals can never both win.
package action
