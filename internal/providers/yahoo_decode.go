package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/stitts-dev/hoops-oracle/internal/mapper"
)

// Yahoo wraps every collection as {"0": {...}, "1": {...}, "count": N} and every
// resource as a JSON array of single-key objects. These helpers flatten that.

type fantasyContent struct {
	FantasyContent map[string]json.RawMessage `json:"fantasy_content"`
}

// resourceParts returns the array form of a top level resource such as "league" or "team"
func resourceParts(body []byte, resource string) ([]json.RawMessage, error) {
	var content fantasyContent
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	raw, ok := content.FantasyContent[resource]
	if !ok {
		return nil, fmt.Errorf("response has no %q resource", resource)
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, fmt.Errorf("failed to decode %s resource: %w", resource, err)
	}
	return parts, nil
}

// findKey returns the value of key from the first object in parts that carries it
func findKey(parts []json.RawMessage, key string) (json.RawMessage, bool) {
	for _, part := range parts {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(part, &obj); err != nil {
			continue
		}
		if v, ok := obj[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// collectionItems returns the numbered entries of a Yahoo collection in index order
func collectionItems(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '[' {
		// empty collections come back as []
		return nil, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}

	indexes := make([]int, 0, len(obj))
	for k := range obj {
		i, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	items := make([]json.RawMessage, 0, len(indexes))
	for _, i := range indexes {
		items = append(items, obj[strconv.Itoa(i)])
	}
	return items, nil
}

// decodePlayers flattens a "players" collection
func decodePlayers(raw json.RawMessage) ([]mapper.YahooPlayer, error) {
	items, err := collectionItems(raw)
	if err != nil {
		return nil, err
	}

	players := make([]mapper.YahooPlayer, 0, len(items))
	for _, item := range items {
		var wrapper struct {
			Player []json.RawMessage `json:"player"`
		}
		if err := json.Unmarshal(item, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode player entry: %w", err)
		}
		if len(wrapper.Player) == 0 {
			continue
		}
		player, err := decodePlayer(wrapper.Player)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

func decodePlayer(parts []json.RawMessage) (mapper.YahooPlayer, error) {
	var attrs []json.RawMessage
	if err := json.Unmarshal(parts[0], &attrs); err != nil {
		return mapper.YahooPlayer{}, fmt.Errorf("failed to decode player attributes: %w", err)
	}

	var player mapper.YahooPlayer
	if v, ok := findKey(attrs, "player_key"); ok {
		_ = json.Unmarshal(v, &player.PlayerKey)
	}
	if v, ok := findKey(attrs, "player_id"); ok {
		player.PlayerID = scalarString(v)
	}
	if v, ok := findKey(attrs, "name"); ok {
		var name struct {
			Full string `json:"full"`
		}
		_ = json.Unmarshal(v, &name)
		player.Name = name.Full
	}
	if v, ok := findKey(attrs, "editorial_team_abbr"); ok {
		_ = json.Unmarshal(v, &player.Team)
	}
	if v, ok := findKey(attrs, "status"); ok {
		_ = json.Unmarshal(v, &player.Status)
	}
	if v, ok := findKey(attrs, "eligible_positions"); ok {
		player.EligiblePositions = decodePositions(v)
	}

	if len(parts) > 1 {
		if v, ok := findKey(parts[1:], "player_stats"); ok {
			player.Stats = v
		} else if v, ok := findKey(parts[1:], "stats"); ok {
			player.Stats = v
		}
	}
	return player, nil
}

// decodePositions accepts [{"position":"PG"}, ...] as well as ["PG", ...]
func decodePositions(raw json.RawMessage) []string {
	var wrapped []struct {
		Position string `json:"position"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		positions := make([]string, 0, len(wrapped))
		for _, p := range wrapped {
			if p.Position != "" {
				positions = append(positions, p.Position)
			}
		}
		if len(positions) > 0 {
			return positions
		}
	}
	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	return nil
}

func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
