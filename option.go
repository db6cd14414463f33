package ba

import "time"

// ManagerOption is the configuration surface a session manager exposes
// to Options.
type ManagerOption interface {
	SetSetupTimeout(time.Duration) error
	SetLogger(Logger) error
}

// An Option is a configuration function, which configures the session
// manager.
type Option func(ManagerOption) error

// OptSetupTimeout overrides how long an ADDBA-Request may stay pending
// before the attempt is abandoned.
func OptSetupTimeout(d time.Duration) Option {
	return func(opt ManagerOption) error {
		return opt.SetSetupTimeout(d)
	}
}

// OptLogger sets the logger used by the session manager.
func OptLogger(l Logger) Option {
	return func(opt ManagerOption) error {
		return opt.SetLogger(l)
	}
}
