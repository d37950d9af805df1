package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed is the initial catalogue content.
type Seed struct {
	Services []SeedService `yaml:"services"`
}

// SeedService is a service and its files as written in a seed document.
type SeedService struct {
	Service `yaml:",inline"`
	Files   []ConfigFile `yaml:"files"`
}

// DefaultSeed returns the built-in catalogue.
func DefaultSeed() *Seed {
	s, err := parseSeed(seedYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in seed: %v", err))
	}
	return s
}

// ReadSeed parses a YAML seed document.
func ReadSeed(r io.Reader) (*Seed, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseSeed(b)
}

// LoadSeed returns the seed stored at path, or the built-in seed when path is empty.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog seed: %w", err)
	}
	defer f.Close()
	s, err := ReadSeed(f)
	if err != nil {
		return nil, fmt.Errorf("catalog seed %s: %w", path, err)
	}
	return s, nil
}

func parseSeed(b []byte) (*Seed, error) {
	s := &Seed{}
	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, err
	}
	seenSvc := make(map[string]bool)
	for i := range s.Services {
		svc := &s.Services[i]
		if svc.ID == "" {
			return nil, fmt.Errorf("service %d has no id", i)
		}
		if seenSvc[svc.ID] {
			return nil, fmt.Errorf("duplicate service %q", svc.ID)
		}
		seenSvc[svc.ID] = true
		seenFile := make(map[string]bool)
		for j := range svc.Files {
			f := &svc.Files[j]
			if f.Name == "" {
				return nil, fmt.Errorf("service %q: file %d has no name", svc.ID, j)
			}
			if seenFile[f.Name] {
				return nil, fmt.Errorf("service %q: duplicate file %q", svc.ID, f.Name)
			}
			seenFile[f.Name] = true
			f.Service = svc.ID
		}
	}
	return s, nil
}
