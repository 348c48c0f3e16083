package riot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/patrickmn/go-cache"
)

// AccountCache remembers resolved Riot IDs so that each account is looked up once.
// Entries are keyed by routing region and Riot ID and may be persisted to a JSON file.
// The API key is never part of what is stored.
type AccountCache struct {
	path  string
	items *cache.Cache
}

// NewAccountCache creates a cache backed by the file at path.
// An empty path keeps the cache in memory only. A missing or unreadable file starts an empty cache.
func NewAccountCache(path string) *AccountCache {
	c := &AccountCache{
		path:  path,
		items: cache.New(cache.NoExpiration, 0),
	}

	if path == "" {
		return c
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("Failed to read account cache %s: %+v", path, err)
		}
		return c
	}

	stored := map[string]*Account{}
	if err := json.Unmarshal(b, &stored); err != nil {
		logger.Warnf("Ignoring malformed account cache %s: %+v", path, err)
		return c
	}

	for key, account := range stored {
		if account != nil {
			c.items.Set(key, account, cache.NoExpiration)
		}
	}
	return c
}

func cacheKey(region string, riotID string) string {
	return region + ":" + riotID
}

// Get returns the cached account. Entries without a PUUID are treated as absent.
func (c *AccountCache) Get(region string, riotID string) (*Account, bool) {
	v, ok := c.items.Get(cacheKey(region, riotID))
	if !ok {
		return nil, false
	}

	account, ok := v.(*Account)
	if !ok || account.PUUID == "" {
		return nil, false
	}
	return account, true
}

// Set stores the account.
func (c *AccountCache) Set(region string, riotID string, account *Account) {
	c.items.Set(cacheKey(region, riotID), account, cache.NoExpiration)
}

// Len returns the number of cached entries.
func (c *AccountCache) Len() int {
	return c.items.ItemCount()
}

// Save writes the cache to its file. It is a no-op for memory only caches.
func (c *AccountCache) Save() error {
	if c.path == "" {
		return nil
	}

	stored := map[string]*Account{}
	for key, item := range c.items.Items() {
		if account, ok := item.Object.(*Account); ok {
			stored[key] = account
		}
	}

	b, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode account cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create account cache directory: %w", err)
	}

	if err := os.WriteFile(c.path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write account cache: %w", err)
	}
	return nil
}
