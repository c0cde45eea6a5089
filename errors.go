package onion

import "errors"

var (
	ErrAppRunning    = errors.New("onion: app is already running")
	ErrNilPlugin     = errors.New("onion: plugin is nil")
	ErrPluginInstall = errors.New("onion: plugin install failed")
	ErrStartHook     = errors.New("onion: start hook failed")
	ErrStopHook      = errors.New("onion: stop hook failed")
)
