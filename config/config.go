package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rehabot/soloqbot/discord"
	"github.com/rehabot/soloqbot/relay"
	"github.com/rehabot/soloqbot/riot"
	"github.com/rehabot/soloqbot/soloq"
)

// Environment variable names.
const (
	EnvToken          = "DISCORD_TOKEN"
	EnvChannelID      = "CHANNEL_ID"
	EnvPrefix         = "COMMAND_PREFIX"
	EnvStartupMessage = "STARTUP_MESSAGE"
	EnvAPIKey         = "RIOT_API_KEY"
	EnvPlayersJSON    = "PLAYERS_ACCOUNTS_JSON"
	EnvPlayersFile    = "PLAYERS_ACCOUNTS_FILE"
	EnvSchedule       = "REPORT_SCHEDULE"
	EnvTimeZone       = "REPORT_TIMEZONE"
	EnvFormat         = "REPORT_FORMAT"
	EnvRegion         = "RIOT_REGION"
	EnvAccountCache   = "RIOT_ACCOUNT_CACHE"
)

// Names used by earlier deployments, read when the primary name is unset.
var aliases = map[string]string{
	EnvAPIKey:      "prod_api_key",
	EnvPlayersJSON: "players_json",
}

// DefaultAccountCache is where resolved Riot IDs are kept between runs.
const DefaultAccountCache = "data/riot_account_cache.json"

// Config holds everything the bot reads from its environment.
type Config struct {
	Discord        *discord.Config   `json:"discord" yaml:"discord"`
	ChannelID      discord.ChannelID `json:"channel_id" yaml:"channel_id"`
	Prefix         string            `json:"prefix" yaml:"prefix"`
	StartupMessage string            `json:"startup_message" yaml:"startup_message"`

	// Report is nil when the SoloQ report is not configured.
	Report *Report `json:"report,omitempty" yaml:"report,omitempty"`
}

// Report configures the scheduled SoloQ report.
type Report struct {
	APIKey       string         `json:"-" yaml:"-"`
	Players      soloq.Players  `json:"-" yaml:"-"`
	Schedule     string         `json:"schedule" yaml:"schedule"`
	TimeZone     string         `json:"timezone" yaml:"timezone"`
	Location     *time.Location `json:"-" yaml:"-"`
	Format       soloq.Format   `json:"format" yaml:"format"`
	Region       string         `json:"region" yaml:"region"`
	AccountCache string         `json:"account_cache" yaml:"account_cache"`
}

// LoadDotEnv reads variables from the given file without overriding those already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the bot configuration from the environment.
// The report section is filled only when both an API key and players are present.
func Load() (*Config, error) {
	token := lookup(EnvToken)
	if token == "" {
		return nil, ErrMissingToken
	}

	channelID, err := ParseChannelID(lookup(EnvChannelID))
	if err != nil {
		return nil, err
	}

	prefix := lookup(EnvPrefix)
	if prefix == "" {
		prefix = relay.DefaultPrefix
	}

	dc := discord.NewConfig()
	dc.Token = token
	dc.HelpCommand = prefix + "help"
	dc.AbortCommand = prefix + "abort"

	cfg := &Config{
		Discord:        dc,
		ChannelID:      channelID,
		Prefix:         prefix,
		StartupMessage: lookup(EnvStartupMessage),
	}
	if cfg.StartupMessage == "" {
		cfg.StartupMessage = relay.DefaultStartupMessage
	}

	if lookup(EnvAPIKey) != "" && (lookup(EnvPlayersJSON) != "" || lookup(EnvPlayersFile) != "") {
		report, err := LoadReport()
		if err != nil {
			return nil, err
		}
		cfg.Report = report
	}

	return cfg, nil
}

// LoadReport reads the SoloQ report configuration from the environment.
func LoadReport() (*Report, error) {
	apiKey := lookup(EnvAPIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	players, err := soloq.LoadPlayers(lookup(EnvPlayersJSON), lookup(EnvPlayersFile))
	if err != nil {
		return nil, err
	}

	format, err := soloq.ParseFormat(lookup(EnvFormat))
	if err != nil {
		return nil, err
	}

	report := &Report{
		APIKey:       apiKey,
		Players:      players,
		Schedule:     valueOr(EnvSchedule, soloq.DefaultSchedule),
		TimeZone:     valueOr(EnvTimeZone, soloq.DefaultTimeZone),
		Format:       format,
		Region:       valueOr(EnvRegion, riot.DefaultRegion),
		AccountCache: DefaultAccountCache,
	}
	if v, ok := os.LookupEnv(EnvAccountCache); ok {
		report.AccountCache = strings.TrimSpace(v)
	}

	report.Location, err = time.LoadLocation(report.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimeZone, report.TimeZone, err)
	}

	return report, nil
}

// ParseChannelID validates a Discord channel snowflake.
func ParseChannelID(s string) (discord.ChannelID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrMissingChannelID
	}

	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidChannelID, s)
	}
	return discord.ChannelID(strconv.FormatUint(id, 10)), nil
}

func lookup(name string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	if alias, ok := aliases[name]; ok {
		return strings.TrimSpace(os.Getenv(alias))
	}
	return ""
}

func valueOr(name string, fallback string) string {
	if v := lookup(name); v != "" {
		return v
	}
	return fallback
}
