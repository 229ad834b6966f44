// Package readiness decides when a newly created file has finished being
// written.
//
// A Detector polls at a fixed interval until its strategy reports the file
// stable. Two strategies exist: MTimeStrategy waits for two consecutive
// identical modification-time and size readings, and RenameStrategy treats
// a successful rename of the file onto itself as proof that no writer holds
// it. There is no timeout; only context cancellation or the file vanishing
// ends the wait early.
package readiness
