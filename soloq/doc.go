// Package soloq builds the daily ranked solo queue activity report of a group of players.
//
// Players and their Riot accounts are declared in a JSON or YAML document.
// A Reporter resolves each account through package riot and summarises the
// games played over the last day and week, the newest game and the best
// standing across accounts. NewReportTaskProps schedules the report with
// go-sarah so that it is posted to a Discord channel.
package soloq
