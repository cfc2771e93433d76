// Package msg defines the message types used by the list screen's Bubbletea
// event loop, and the command factories that produce them.
//
// Messages arrive from two directions: the App forwards store snapshots and
// bus notifications with program.Send, and the Model schedules its own
// timers through the commands in this package.
package msg
