// Package logging holds the SDK-wide zap logger. Library code logs through
// Logger; embedding applications may swap it for their own instance.
package logging

import "go.uber.org/zap"

// Logger is the package-level logger. Defaults to zap's production
// configuration writing JSON to stderr.
var Logger = zap.Must(zap.NewProduction())

// SetLogger replaces the SDK-wide logger. Pass zap.NewNop() to silence the
// SDK entirely.
func SetLogger(l *zap.Logger) {
	if l != nil {
		Logger = l
	}
}
