package config

import "errors"

// ErrMissingToken indicates that DISCORD_TOKEN is not set.
var ErrMissingToken = errors.New("DISCORD_TOKEN is required")

// ErrMissingChannelID indicates that CHANNEL_ID is not set.
var ErrMissingChannelID = errors.New("CHANNEL_ID is required")

// ErrInvalidChannelID indicates that CHANNEL_ID is not a positive integer.
var ErrInvalidChannelID = errors.New("CHANNEL_ID must be a positive integer")

// ErrMissingAPIKey indicates that the report was requested without RIOT_API_KEY.
var ErrMissingAPIKey = errors.New("RIOT_API_KEY is required for the SoloQ report")
