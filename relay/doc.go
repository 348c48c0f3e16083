// Package relay posts to the one Discord channel soloqbot is configured with.
//
// It announces startup when the gateway becomes ready and provides the
// "!send <message>" command that copies arbitrary text to that channel.
package relay
