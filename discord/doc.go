// Package discord provides the sarah.Adapter that connects soloqbot to Discord.
//
// The adapter owns the discordgo session. It converts MESSAGE_CREATE events
// into sarah.Input, fans READY events out to registered ReadyHandlers and
// delivers sarah.Output as plain or embed messages. Reconnects and rate
// limiting are left to discordgo.
package discord
