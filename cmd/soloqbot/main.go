// Command soloqbot runs the Discord bot that relays "!send" messages to a fixed
// channel and posts the daily SoloQ report.
//
// Usage:
//
//	export DISCORD_TOKEN="your-bot-token"
//	export CHANNEL_ID="123456789012345678"
//	soloqbot
//
// Print the report once without connecting to Discord:
//
//	soloqbot report
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
