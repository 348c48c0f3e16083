package riot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAccountCache(t *testing.T) {
	t.Run("memory only", func(t *testing.T) {
		c := NewAccountCache("")
		c.Set("europe", "Name#TAG", &Account{PUUID: "p-1"})

		account, ok := c.Get("europe", "Name#TAG")
		if !ok || account.PUUID != "p-1" {
			t.Errorf("Expected cached account, got %+v", account)
		}

		if _, ok := c.Get("americas", "Name#TAG"); ok {
			t.Error("Entries must be scoped by region")
		}

		if err := c.Save(); err != nil {
			t.Errorf("Save on memory only cache must be a no-op, got %+v", err)
		}
	})

	t.Run("entry without puuid is a miss", func(t *testing.T) {
		c := NewAccountCache("")
		c.Set("europe", "Name#TAG", &Account{GameName: "Name"})

		if _, ok := c.Get("europe", "Name#TAG"); ok {
			t.Error("Expected entry without PUUID to be treated as absent")
		}
	})

	t.Run("save and reload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "riot_account_cache.json")

		c := NewAccountCache(path)
		c.Set("europe", "Name#TAG", &Account{PUUID: "p-1", GameName: "Name", TagLine: "TAG"})
		if err := c.Save(); err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}
		if !strings.Contains(string(b), `"europe:Name#TAG"`) {
			t.Errorf("Unexpected cache file content %s", b)
		}

		reloaded := NewAccountCache(path)
		if reloaded.Len() != 1 {
			t.Fatalf("Expected 1 entry, got %d", reloaded.Len())
		}

		account, ok := reloaded.Get("europe", "Name#TAG")
		if !ok || account.TagLine != "TAG" {
			t.Errorf("Expected reloaded account, got %+v", account)
		}
	})

	t.Run("malformed file starts empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		if c := NewAccountCache(path); c.Len() != 0 {
			t.Errorf("Expected empty cache, got %d entries", c.Len())
		}
	})
}
