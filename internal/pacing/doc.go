// Package pacing spaces out requests to the race site.
//
// One Pacer is shared by every worker of a run; its waits are serialised, so the
// spacing holds across workers combined.
package pacing
