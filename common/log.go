package common

import "log"

// Logf is the diagnostic sink used across the simulation. A nil Logf writes
// through the standard logger.
type Logf func(format string, args ...any)

func (l Logf) Printf(format string, args ...any) {
	if l == nil {
		log.Printf(format, args...)
		return
	}
	l(format, args...)
}

// Discard drops every message.
func Discard(string, ...any) {}
