package soloq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Account is one Riot account belonging to a tracked player.
type Account struct {
	// AccountName is the Riot ID in "GameName#TagLine" form.
	AccountName string `json:"account_name" yaml:"account_name"`

	// PUUID is resolved from AccountName when left empty.
	PUUID string `json:"puuid,omitempty" yaml:"puuid,omitempty"`

	// Region is the routing region. The reporter's default applies when empty.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// APIKey replaces the reporter's key for this account's requests.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	GameName string `json:"game_name,omitempty" yaml:"game_name,omitempty"`
	TagLine  string `json:"tag_line,omitempty" yaml:"tag_line,omitempty"`
}

// Player groups the accounts of one person. The first account is the main one.
type Player struct {
	Name     string
	Accounts []*Account
}

// Players is the list of tracked players in the order they were declared.
type Players []*Player

var (
	_ json.Unmarshaler = (*Players)(nil)
	_ yaml.Unmarshaler = (*Players)(nil)
)

// UnmarshalJSON decodes a {"player": [accounts...]} object while keeping the key order.
func (p *Players) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected an object of players", ErrInvalidPlayers)
	}

	players := Players{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var accounts []*Account
		if err := dec.Decode(&accounts); err != nil {
			return fmt.Errorf("%w: player %q: %w", ErrInvalidPlayers, name, err)
		}
		players = append(players, &Player{Name: name, Accounts: accounts})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = players
	return nil
}

// UnmarshalYAML decodes a players mapping while keeping the key order.
func (p *Players) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.DocumentNode && len(value.Content) == 1 {
		value = value.Content[0]
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: expected a mapping of players", ErrInvalidPlayers)
	}

	players := Players{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		name := value.Content[i].Value

		var accounts []*Account
		if err := value.Content[i+1].Decode(&accounts); err != nil {
			return fmt.Errorf("%w: player %q: %w", ErrInvalidPlayers, name, err)
		}
		players = append(players, &Player{Name: name, Accounts: accounts})
	}

	*p = players
	return nil
}

// Validate checks that every player has at least one named account.
func (p Players) Validate() error {
	if len(p) == 0 {
		return ErrNoPlayers
	}

	for _, player := range p {
		if len(player.Accounts) == 0 {
			return fmt.Errorf("%w: player %q has no accounts", ErrInvalidPlayers, player.Name)
		}
		for _, account := range player.Accounts {
			if account == nil || account.AccountName == "" {
				return fmt.Errorf("%w: missing account_name for player %q", ErrInvalidPlayers, player.Name)
			}
		}
	}
	return nil
}

// ParsePlayers decodes a JSON players document.
func ParsePlayers(text string) (Players, error) {
	var players Players
	if err := json.Unmarshal([]byte(text), &players); err != nil {
		return nil, fmt.Errorf("invalid players JSON: %w", err)
	}

	if err := players.Validate(); err != nil {
		return nil, err
	}
	return players, nil
}

// ReadPlayersFile decodes a players document from a YAML or JSON file, chosen by extension.
func ReadPlayersFile(path string) (Players, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("players file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read players file %s: %w", path, err)
	}

	var players Players
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &players)
	default:
		err = json.Unmarshal(b, &players)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid players file %s: %w", path, err)
	}

	if err := players.Validate(); err != nil {
		return nil, err
	}
	return players, nil
}

// LoadPlayers decodes the inline JSON document when given, or reads the file at path otherwise.
func LoadPlayers(jsonText string, path string) (Players, error) {
	switch {
	case jsonText != "":
		return ParsePlayers(jsonText)
	case path != "":
		return ReadPlayersFile(path)
	default:
		return nil, ErrNoPlayers
	}
}
