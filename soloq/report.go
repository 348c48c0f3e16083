package soloq

import (
	"context"
	"time"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/rehabot/soloqbot/riot"
)

const (
	// DefaultTimeZone is where report timestamps are displayed.
	DefaultTimeZone = "Europe/Paris"

	// DefaultEmoji decorates every row.
	DefaultEmoji = "💀"

	noGames          = "No games"
	lastGameLayout   = "02 Jan - 15:04"
	rankedMatchLimit = 100
)

// Row is one player's line in the report.
type Row struct {
	Player   string
	Games24  int
	Games7   int
	LastGame string
	Elo      string
	Main     string
	Emoji    string
}

// ReporterOption defines a function signature for Reporter's functional options.
type ReporterOption func(reporter *Reporter)

// WithRegion sets the routing region for accounts that declare none.
func WithRegion(region string) ReporterOption {
	return func(reporter *Reporter) {
		if region != "" {
			reporter.region = region
		}
	}
}

// WithLocation sets the zone last game timestamps are displayed in.
func WithLocation(location *time.Location) ReporterOption {
	return func(reporter *Reporter) {
		if location != nil {
			reporter.location = location
		}
	}
}

// WithAccountCache sets the cache used to resolve Riot IDs.
func WithAccountCache(cache *riot.AccountCache) ReporterOption {
	return func(reporter *Reporter) {
		reporter.cache = cache
	}
}

// Reporter builds the SoloQ activity report from the Riot API.
type Reporter struct {
	client   *riot.Client
	cache    *riot.AccountCache
	region   string
	location *time.Location
	now      func() time.Time
}

// NewReporter creates a new Reporter querying the API through client.
func NewReporter(client *riot.Client, options ...ReporterOption) *Reporter {
	reporter := &Reporter{
		client:   client,
		cache:    riot.NewAccountCache(""),
		region:   riot.DefaultRegion,
		location: time.UTC,
		now:      time.Now,
	}

	for _, opt := range options {
		opt(reporter)
	}

	return reporter
}

// Report resolves missing PUUIDs and builds one row per player.
func (r *Reporter) Report(ctx context.Context, players Players) []*Row {
	return r.Rows(ctx, r.Hydrate(ctx, players))
}

// Hydrate returns a copy of players where every account that can be resolved carries its PUUID.
// Accounts that fail to resolve are kept without one and contribute nothing to the report.
func (r *Reporter) Hydrate(ctx context.Context, players Players) Players {
	hydrated := make(Players, 0, len(players))
	for _, player := range players {
		accounts := make([]*Account, 0, len(player.Accounts))
		for _, account := range player.Accounts {
			a := *account
			if a.PUUID == "" {
				r.resolve(ctx, &a)
			}
			accounts = append(accounts, &a)
		}
		hydrated = append(hydrated, &Player{Name: player.Name, Accounts: accounts})
	}

	if err := r.cache.Save(); err != nil {
		logger.Errorf("Failed to save account cache: %+v", err)
	}
	return hydrated
}

func (r *Reporter) resolve(ctx context.Context, account *Account) {
	region := r.regionOf(account)

	ids, ok := r.cache.Get(region, account.AccountName)
	if !ok {
		var err error
		ids, err = r.clientFor(account).AccountByRiotID(ctx, region, account.AccountName)
		if err != nil {
			logger.Errorf("Failed to resolve %s: %+v", account.AccountName, err)
			return
		}
		r.cache.Set(region, account.AccountName, ids)
	}

	account.PUUID = ids.PUUID
	account.GameName = ids.GameName
	account.TagLine = ids.TagLine
}

// Rows builds one row per player. Failing lookups are logged and leave their figures out.
func (r *Reporter) Rows(ctx context.Context, players Players) []*Row {
	now := r.now()

	rows := make([]*Row, 0, len(players))
	for _, player := range players {
		row := &Row{
			Player: player.Name,
			Emoji:  DefaultEmoji,
		}
		if len(player.Accounts) > 0 {
			row.Main = player.Accounts[0].AccountName
		}

		var lastGame int64
		var elos []string
		for _, account := range player.Accounts {
			if account.PUUID == "" {
				logger.Debugf("Skipping %s without PUUID", account.AccountName)
				continue
			}

			row.Games24 += r.rankedCount(ctx, account, now.Add(-24*time.Hour), now)
			row.Games7 += r.rankedCount(ctx, account, now.Add(-7*24*time.Hour), now)

			if ts := r.lastGameStart(ctx, account); ts > lastGame {
				lastGame = ts
			}

			entries, err := r.clientFor(account).LeagueEntries(ctx, r.regionOf(account), account.PUUID)
			if err != nil {
				logger.Errorf("Failed to fetch league entries of %s: %+v", account.AccountName, err)
				continue
			}
			elos = append(elos, SoloQueueElo(entries))
		}

		row.LastGame = r.formatGameStart(lastGame)
		row.Elo = Unranked
		if best, ok := MaxElo(elos); ok {
			row.Elo = best
		}

		rows = append(rows, row)
	}
	return rows
}

func (r *Reporter) rankedCount(ctx context.Context, account *Account, from time.Time, to time.Time) int {
	ids, err := r.clientFor(account).MatchIDs(ctx, r.regionOf(account), account.PUUID, riot.MatchQuery{
		StartTime: from,
		EndTime:   to,
		Type:      "ranked",
		Count:     rankedMatchLimit,
	})
	if err != nil {
		logger.Errorf("Failed to count ranked games of %s: %+v", account.AccountName, err)
		return 0
	}
	return len(ids)
}

// lastGameStart returns the start of the newest match in milliseconds since epoch, or zero.
func (r *Reporter) lastGameStart(ctx context.Context, account *Account) int64 {
	client := r.clientFor(account)
	region := r.regionOf(account)

	ids, err := client.MatchIDs(ctx, region, account.PUUID, riot.MatchQuery{Count: 1})
	if err != nil {
		logger.Errorf("Failed to list last match of %s: %+v", account.AccountName, err)
		return 0
	}
	if len(ids) == 0 {
		return 0
	}

	match, err := client.Match(ctx, region, ids[0])
	if err != nil {
		logger.Errorf("Failed to fetch match %s: %+v", ids[0], err)
		return 0
	}
	return match.Info.GameStartTimestamp
}

func (r *Reporter) formatGameStart(ms int64) string {
	if ms <= 0 {
		return noGames
	}
	return time.UnixMilli(ms).In(r.location).Format(lastGameLayout)
}

func (r *Reporter) regionOf(account *Account) string {
	if account.Region != "" {
		return account.Region
	}
	return r.region
}

// clientFor prefers the account's own api_key over the reporter's key.
func (r *Reporter) clientFor(account *Account) *riot.Client {
	if account.APIKey != "" {
		return r.client.WithAPIKey(account.APIKey)
	}
	return r.client
}
