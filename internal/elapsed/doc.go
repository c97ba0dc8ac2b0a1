// Package elapsed converts millisecond timestamps into whole elapsed days and minutes.
package elapsed
