// Package textutil provides small string helpers shared across packages:
// filesystem-safe tokens for lock and state file names, and a generic
// conditional.
package textutil
