package racecard

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type yamlCard struct {
	Name     string           `yaml:"name"`
	Race     map[string]any   `yaml:"race"`
	Skills   []map[string]any `yaml:"skills"`
	Entrants []map[string]any `yaml:"entrants"`
}

func parseYAML(text string) (*Card, error) {
	var doc yamlCard
	dec := yaml.NewDecoder(strings.NewReader(text))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	card := &Card{Name: doc.Name, Race: doc.Race, Skills: doc.Skills}
	if card.Race == nil {
		card.Race = map[string]any{}
	}
	for i, args := range doc.Entrants {
		name, _ := args["name"].(string)
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: entrant %d has no name", ErrInvalidCard, i+1)
		}
		delete(args, "name")
		card.Entrants = append(card.Entrants, Entrant{Name: name, Args: args})
	}
	return card, nil
}
