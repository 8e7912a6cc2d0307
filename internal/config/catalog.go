package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// LoadCatalog reads the option catalog from a YAML file. A missing file yields
// an empty catalog.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("No options file found, all option values are accepted", "path", path)
			return Catalog{}, nil
		}
		return Catalog{}, fmt.Errorf("failed to read options file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML option catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return c, nil
}

// AllowsRoundType reports whether v is an accepted round type.
func (c Catalog) AllowsRoundType(v string) bool { return allows(c.RoundTypes, v) }

// AllowsGender reports whether v is an accepted gender.
func (c Catalog) AllowsGender(v string) bool { return allows(c.Genders, v) }

// AllowsMatchType reports whether v is an accepted match type.
func (c Catalog) AllowsMatchType(v string) bool { return allows(c.MatchTypes, v) }

// AllowsCourt reports whether the court is listed. With no courts listed, any
// court of a listed tournament title is accepted, or any court at all when no
// titles are listed either.
func (c Catalog) AllowsCourt(tournament, place, court string) bool {
	if len(c.Courts) == 0 {
		return allows(c.TournamentTitles, tournament)
	}
	return slices.Contains(c.Courts, Court{Tournament: tournament, Place: place, Court: court})
}

// AllowsGroup reports whether the group is listed, or no groups are listed at all.
func (c Catalog) AllowsGroup(name string) bool { return allows(c.Groups, name) }

func allows(list []string, v string) bool {
	return len(list) == 0 || slices.Contains(list, v)
}
