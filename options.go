package qnxcomm

import "github.com/abilashjram/qnxcomm/internal/logging"

// Options configures a Registry, mirroring go-ublk's DeviceParams/Options
// split: the handful of knobs a caller might reasonably want to override,
// with a constructor supplying sane defaults for everything else.
type Options struct {
	// DefaultTimeoutMS is substituted whenever a caller passes a negative
	// timeout to mean "use the registry default" rather than an explicit
	// value. 0 retains the spec's own send-indefinite / receive-immediate
	// asymmetry.
	DefaultTimeoutMS int

	// Logger receives structured log lines for every operation handler.
	// nil uses logging.Default().
	Logger *logging.Logger
}

// DefaultOptions returns the zero-config Options a Registry uses when
// none is supplied.
func DefaultOptions() *Options {
	return &Options{
		DefaultTimeoutMS: DefaultTimeoutMS,
		Logger:           logging.Default(),
	}
}

// resolveTimeout substitutes o.DefaultTimeoutMS for a negative timeoutMS,
// the registry-wide default every Send/Receive variant honors.
func (o *Options) resolveTimeout(timeoutMS int) int {
	if timeoutMS < 0 {
		return o.DefaultTimeoutMS
	}
	return timeoutMS
}

func (o *Options) logger() *logging.Logger {
	if o == nil || o.Logger == nil {
		return logging.Default()
	}
	return o.Logger
}
