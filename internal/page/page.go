// Package page loads counter page definitions and lays them out.
package page

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Page is a declarative counter page.
type Page struct {
	Title    string    `toml:"title"`
	Sections []Section `toml:"section"`
}

// Section groups counters under a heading.
type Section struct {
	Title    string    `toml:"title"`
	Gap      int       `toml:"gap,omitempty"`
	Counters []Counter `toml:"counter"`
}

// Counter declares one counter element. Settings use short keys
// ("end", "duration") and are expanded under the attribute namespace;
// Attributes are raw element attributes.
type Counter struct {
	ID         string         `toml:"id"`
	Label      string         `toml:"label"`
	Classes    []string       `toml:"classes,omitempty"`
	Settings   map[string]any `toml:"settings,omitempty"`
	Attributes map[string]any `toml:"attributes,omitempty"`
}

// Load reads a TOML page from path.
func Load(path string) (*Page, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only page file.
			_ = cerr
		}
	}()
	p, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page %s: %w", path, err)
	}
	return p, nil
}

// Decode reads a TOML page and fills in missing counter ids.
func Decode(r io.Reader) (*Page, error) {
	var p Page
	if _, err := toml.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}
	if err := p.Normalize(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Write encodes the page as TOML to path.
func Write(path string, p *Page) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create page directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create page file: %w", err)
	}
	if err := toml.NewEncoder(file).Encode(p); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to encode page: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close page file: %w", err)
	}
	return nil
}

// Normalize assigns ids to anonymous counters and rejects duplicates.
func (p *Page) Normalize() error {
	seen := map[string]struct{}{}
	n := 0
	for si := range p.Sections {
		if p.Sections[si].Gap < 0 {
			p.Sections[si].Gap = 0
		}
		for ci := range p.Sections[si].Counters {
			n++
			c := &p.Sections[si].Counters[ci]
			c.ID = strings.TrimSpace(c.ID)
			if c.ID == "" {
				c.ID = fmt.Sprintf("counter-%d", n)
			}
			if _, ok := seen[c.ID]; ok {
				return fmt.Errorf("duplicate counter id %q", c.ID)
			}
			seen[c.ID] = struct{}{}
		}
	}
	return nil
}

// CounterCount returns the number of counters on the page.
func (p *Page) CounterCount() int {
	n := 0
	for _, s := range p.Sections {
		n += len(s.Counters)
	}
	return n
}

// ElementAttributes returns the counter's attributes with settings
// expanded under namespace.
func (c Counter) ElementAttributes(namespace string) map[string]string {
	out := make(map[string]string, len(c.Settings)+len(c.Attributes))
	for name, value := range c.Attributes {
		out[strings.ToLower(name)] = Stringify(value)
	}
	keys := make([]string, 0, len(c.Settings))
	for key := range c.Settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		out[strings.ToLower(namespace+key)] = Stringify(c.Settings[key])
	}
	return out
}

// Stringify renders a TOML value as an attribute string.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
