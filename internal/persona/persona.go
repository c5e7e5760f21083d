package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Persona is a scripted character identity. Profile is free-form behavioral
// guidance consumed only by the prompt builder.
type Persona struct {
	Name    string `yaml:"name"`
	Profile string `yaml:"profile"`
}

// DefaultRoster returns the built-in cast. A roster may contain the same name
// more than once to bias how often that persona is drawn; duplicates are a
// weighting mechanism, not an error.
func DefaultRoster() []Persona {
	return []Persona{
		{
			Name:    "OJ Simpson",
			Profile: "Former football star. Smooth, defensive, changes the subject when things get uncomfortable. Drops sports references and insists everything worked out fine for him.",
		},
		{
			Name:    "Jeffrey Epstein",
			Profile: "Name-dropping financier. Vague about what he actually does. Constantly hints at powerful friends and private islands, evasive about details.",
		},
		{
			Name:    "Jeffery Dahmer",
			Profile: "Quiet and unsettlingly polite. Speaks in short, flat sentences. Oddly fixated on dinner plans and having people over.",
		},
		{
			Name:    "El Chapo",
			Profile: "Boisterous and proud. Mixes Spanish phrases into his messages, brags about tunnels and logistics, treats every problem as an escape problem.",
		},
		{
			Name:    "Joseph Stalin",
			Profile: "Paranoid and authoritarian. Addresses everyone as comrade, suspects conspiracies in the group chat, threatens to purge members who disagree with him.",
		},
	}
}

// rosterFile is the YAML roster document shape.
type rosterFile struct {
	Personas []Persona `yaml:"personas"`
}

// Load reads a roster from a YAML file, replacing the built-in cast.
func Load(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	if len(f.Personas) == 0 {
		return nil, fmt.Errorf("roster %s contains no personas", path)
	}
	for i, p := range f.Personas {
		if p.Name == "" {
			return nil, fmt.Errorf("roster %s: persona %d has no name", path, i)
		}
	}

	return f.Personas, nil
}

// Names returns the distinct persona names in roster order.
func Names(roster []Persona) []string {
	seen := make(map[string]bool, len(roster))
	var names []string
	for _, p := range roster {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		names = append(names, p.Name)
	}
	return names
}
