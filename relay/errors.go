package relay

import "errors"

// ErrChannelNotFound indicates that the target channel could not be resolved.
var ErrChannelNotFound = errors.New("channel not found")
