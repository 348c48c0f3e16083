package soloq

import "errors"

// ErrNoPlayers indicates that no players document was configured.
var ErrNoPlayers = errors.New("no players configured")

// ErrInvalidPlayers indicates that the players document is malformed.
var ErrInvalidPlayers = errors.New("invalid players document")

// ErrUnknownFormat indicates an unsupported report format name.
var ErrUnknownFormat = errors.New("unknown report format")
