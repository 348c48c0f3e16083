package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklahomer/go-kasumi/logger"
)

const (
	// DefaultRegion is the routing region used when an account names none.
	DefaultRegion = "europe"

	defaultAttempts = 10
	defaultTimeout  = 10 * time.Second
	tokenHeader     = "X-Riot-Token"
)

var platforms = map[string]string{
	"europe":   "euw1",
	"americas": "na1",
	"asia":     "kr",
}

// Platform returns the platform host prefix serving league data for the routing region.
func Platform(region string) string {
	if p, ok := platforms[region]; ok {
		return p
	}
	return "euw1"
}

// Account is the Account-V1 payload for a Riot ID.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// LeagueEntry is a single queue standing returned by League-V4.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
}

// Match holds the parts of a Match-V5 payload the bot reads.
type Match struct {
	Info struct {
		GameStartTimestamp int64 `json:"gameStartTimestamp"`
	} `json:"info"`
}

// MatchQuery narrows a match ID listing. Zero values are omitted from the request.
type MatchQuery struct {
	StartTime time.Time
	EndTime   time.Time
	Type      string
	Start     int
	Count     int
}

func (q MatchQuery) values() url.Values {
	v := url.Values{}
	if !q.StartTime.IsZero() {
		v.Set("startTime", strconv.FormatInt(q.StartTime.Unix(), 10))
	}
	if !q.EndTime.IsZero() {
		v.Set("endTime", strconv.FormatInt(q.EndTime.Unix(), 10))
	}
	if q.Type != "" {
		v.Set("type", q.Type)
	}
	v.Set("start", strconv.Itoa(q.Start))
	if q.Count > 0 {
		v.Set("count", strconv.Itoa(q.Count))
	}
	return v
}

// ClientOption defines a function signature for Client's functional options.
type ClientOption func(client *Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = httpClient
	}
}

// WithBaseURL sends every request to the given base URL instead of the regional Riot hosts.
func WithBaseURL(baseURL string) ClientOption {
	return func(client *Client) {
		client.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAttempts sets how many times a request is tried before giving up.
func WithAttempts(attempts int) ClientOption {
	return func(client *Client) {
		if attempts > 0 {
			client.attempts = attempts
		}
	}
}

// Client talks to the Riot Games REST API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	attempts   int
	wait       func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new Client authenticating with the given API key.
func NewClient(apiKey string, options ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	client := &Client{
		apiKey:     apiKey,
		httpClient: newHTTPClient(defaultTimeout),
		attempts:   defaultAttempts,
		wait:       wait,
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// WithAPIKey returns a copy of the client that authenticates with another key.
func (c *Client) WithAPIKey(apiKey string) *Client {
	clone := *c
	clone.apiKey = apiKey
	return &clone
}

// AccountByRiotID resolves a "GameName#TagLine" Riot ID to its account.
func (c *Client) AccountByRiotID(ctx context.Context, region string, riotID string) (*Account, error) {
	gameName, tagLine, ok := strings.Cut(riotID, "#")
	if !ok || tagLine == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingTagLine, riotID)
	}

	path := fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s", url.PathEscape(gameName), url.PathEscape(tagLine))
	account := &Account{}
	if err := c.get(ctx, c.endpoint(region, path, nil), account); err != nil {
		return nil, err
	}
	return account, nil
}

// MatchIDs lists match IDs played by the given player, newest first.
func (c *Client) MatchIDs(ctx context.Context, region string, puuid string, query MatchQuery) ([]string, error) {
	path := fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids", url.PathEscape(puuid))
	var ids []string
	if err := c.get(ctx, c.endpoint(region, path, query.values()), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Match fetches a single match.
func (c *Client) Match(ctx context.Context, region string, matchID string) (*Match, error) {
	path := fmt.Sprintf("/lol/match/v5/matches/%s", url.PathEscape(matchID))
	match := &Match{}
	if err := c.get(ctx, c.endpoint(region, path, nil), match); err != nil {
		return nil, err
	}
	return match, nil
}

// LeagueEntries lists the ranked standings of the given player.
func (c *Client) LeagueEntries(ctx context.Context, region string, puuid string) ([]*LeagueEntry, error) {
	path := fmt.Sprintf("/lol/league/v4/entries/by-puuid/%s", url.PathEscape(puuid))
	var entries []*LeagueEntry
	if err := c.get(ctx, c.endpoint(Platform(region), path, nil), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) endpoint(host string, path string, query url.Values) string {
	base := c.baseURL
	if base == "" {
		if host == "" {
			host = DefaultRegion
		}
		base = fmt.Sprintf("https://%s.api.riotgames.com", host)
	}

	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get performs a GET and decodes the JSON body into v.
// 429 and 5xx responses as well as transport errors are retried with backoff.
func (c *Client) get(ctx context.Context, endpoint string, v interface{}) error {
	var lastErr error
	var delay time.Duration

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, delay); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set(tokenHeader, c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			logger.Warnf("Riot API request failed on attempt %d: %+v", attempt, err)
			delay = backoff(attempt)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("failed to read response body: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, v); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
			delay = retryAfter(resp.Header.Get("Retry-After"), attempt)
			logger.Warnf("Riot API rate limited, retrying in %s", delay)

		case isTransient(resp.StatusCode):
			lastErr = &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
			delay = backoff(attempt)

		default:
			return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, c.attempts, lastErr)
}

func isTransient(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func retryAfter(header string, attempt int) time.Duration {
	if header != "" {
		if sec, err := strconv.ParseFloat(header, 64); err == nil && sec >= 0 {
			return time.Duration(sec * float64(time.Second))
		}
	}
	return time.Duration(math.Min(math.Pow(2, float64(attempt)), 60)) * time.Second
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Min(math.Pow(1.5, float64(attempt)), 30) * float64(time.Second))
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
