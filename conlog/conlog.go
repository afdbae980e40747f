// Package conlog routes engine diagnostics to whatever sink the host
// game installs. Degraded playback is a diagnostic, never an error:
// the game runs identically whether or not a sound played.
package conlog

import "log"

var p func(string, ...interface{}) = log.Printf

// SetPrintf replaces the diagnostic sink. nil restores log.Printf.
func SetPrintf(f func(string, ...interface{})) {
	if f == nil {
		p = log.Printf
		return
	}
	p = f
}

func Printf(format string, v ...interface{}) {
	p(format, v...)
}
