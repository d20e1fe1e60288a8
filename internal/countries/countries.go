// internal/countries/countries.go
//
// Country pool management for the round engine.
//
// Responsibilities:
//   - Parse a YAML pool document (`countries: [{id, description}]`).
//   - Load from a configured file, or fall back to the embedded default.
//   - Keep a process-wide default pool loaded exactly once (sync.Once).
//
// Constraints:
//   • Ids are trimmed; blank ids are skipped.
//   • Duplicate ids are rejected (rounds must hold distinct countries).
//   • A pool needs at least MinSize countries to deal a round.

package countries

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/flagquiz/assets"
)

// MinSize is the smallest pool that can fill one round.
const MinSize = 3

var (
	ErrTooFew    = fmt.Errorf("countries: pool needs at least %d entries", MinSize)
	ErrDuplicate = errors.New("countries: duplicate id")
)

// Country is one candidate answer.
type Country struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description,omitempty"`
}

type document struct {
	Countries []Country `yaml:"countries"`
}

// Pool is an immutable, ordered set of countries.
type Pool struct {
	list []Country
	byID map[string]Country
}

// Parse builds a Pool from a YAML document.
func Parse(data []byte) (*Pool, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("countries: parse yaml: %w", err)
	}

	p := &Pool{byID: make(map[string]Country, len(doc.Countries))}
	for _, c := range doc.Countries {
		c.ID = strings.TrimSpace(c.ID)
		c.Description = strings.TrimSpace(c.Description)
		if c.ID == "" {
			continue
		}
		if _, dup := p.byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, c.ID)
		}
		p.byID[c.ID] = c
		p.list = append(p.list, c)
	}
	if len(p.list) < MinSize {
		return nil, ErrTooFew
	}
	return p, nil
}

// Load reads a pool from path, or the embedded default when path is empty.
func Load(path string) (*Pool, error) {
	if path == "" {
		return Parse(assets.CountriesYAML())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("countries: read %s: %w", path, err)
	}
	return Parse(data)
}

// IDs returns a copy of the country ids in file order.
func (p *Pool) IDs() []string {
	out := make([]string, len(p.list))
	for i, c := range p.list {
		out[i] = c.ID
	}
	return out
}

// Countries returns a copy of the pool entries.
func (p *Pool) Countries() []Country {
	return append([]Country(nil), p.list...)
}

// Describe returns the flag description for id, if any.
func (p *Pool) Describe(id string) (string, bool) {
	c, ok := p.byID[id]
	return c.Description, ok
}

// Len reports the pool size.
func (p *Pool) Len() int { return len(p.list) }

var (
	initOnce    sync.Once
	defaultPool *Pool
	initErr     error
)

// Init loads the process-wide pool exactly once.
// Later calls return the first result regardless of path.
func Init(path string) error {
	initOnce.Do(func() {
		defaultPool, initErr = Load(path)
	})
	return initErr
}

// Default returns the pool loaded by Init (nil before a successful Init).
func Default() *Pool {
	return defaultPool
}
