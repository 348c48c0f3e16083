package soloq

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// Format selects how the report is rendered in Discord.
type Format string

const (
	// TableFormat renders a fixed width table inside a code block.
	TableFormat Format = "table"

	// EmbedFormat renders one embed field per column.
	EmbedFormat Format = "embed"
)

// ParseFormat converts a configuration value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return TableFormat, nil
	case TableFormat, EmbedFormat:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

const (
	// ReportTitle is the title of the embed report.
	ReportTitle = "SoloQ Report"

	fieldLimit = 1000
)

var tableHeaders = []string{"Player", "Games 24 Hours", "Games 7 days", "Last Game", "Current Elo", "Main Account", "Reha happy"}

func (r *Row) cells() []string {
	return []string{r.Player, strconv.Itoa(r.Games24), strconv.Itoa(r.Games7), r.LastGame, r.Elo, r.Main, r.Emoji}
}

// numeric columns are right aligned.
var rightAligned = map[int]bool{1: true, 2: true}

// FormatTable renders rows as a fixed width table with a two space gutter.
func FormatTable(rows []*Row) string {
	widths := make([]int, len(tableHeaders))
	for i, h := range tableHeaders {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row.cells() {
			if w := utf8.RuneCountInString(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+2)

	header := make([]string, len(tableHeaders))
	separator := make([]string, len(tableHeaders))
	for i, h := range tableHeaders {
		header[i] = padRight(h, widths[i])
		separator[i] = strings.Repeat("-", widths[i])
	}
	lines = append(lines, strings.Join(header, "  "), strings.Join(separator, "  "))

	for _, row := range rows {
		cells := row.cells()
		for i, cell := range cells {
			if rightAligned[i] {
				cells[i] = padLeft(cell, widths[i])
			} else {
				cells[i] = padRight(cell, widths[i])
			}
		}
		lines = append(lines, strings.Join(cells, "  "))
	}

	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

// BuildEmbed renders rows as an embed with one inline field per column.
func BuildEmbed(rows []*Row) *discordgo.MessageEmbed {
	column := func(pick func(*Row) string) string {
		values := make([]string, 0, len(rows))
		for _, row := range rows {
			values = append(values, pick(row))
		}
		joined := strings.Join(values, "\n")
		if joined == "" {
			return "-"
		}
		return truncate(joined, fieldLimit)
	}

	return &discordgo.MessageEmbed{
		Title: ReportTitle,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Player", Value: column(func(r *Row) string { return r.Player }), Inline: true},
			{Name: "24h", Value: column(func(r *Row) string { return strconv.Itoa(r.Games24) }), Inline: true},
			{Name: "7d", Value: column(func(r *Row) string { return strconv.Itoa(r.Games7) }), Inline: true},
			{Name: "Last Game", Value: column(func(r *Row) string { return r.LastGame }), Inline: true},
			{Name: "Elo", Value: column(func(r *Row) string { return r.Elo }), Inline: true},
			{Name: "Main Account", Value: column(func(r *Row) string { return r.Main }), Inline: true},
			{Name: "Reha happy", Value: column(func(r *Row) string { return r.Emoji }), Inline: false},
		},
	}
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}

// Content renders rows in the given format as a sarah output content.
func Content(rows []*Row, format Format) interface{} {
	if format == EmbedFormat {
		return &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{BuildEmbed(rows)},
		}
	}
	return "```" + FormatTable(rows) + "```"
}
