package catalog

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/randalmurphal/fnevents/pkg/fnevents/funcid"
)

// Entry is one identifier line of a catalog document.
type Entry struct {
	ID   funcid.FunctionID `json:"id"`
	Name string            `json:"name"`
	Goal funcid.Goal       `json:"goal"`
}

// Catalog is a parsed catalog document.
type Catalog struct {
	Version string  `json:"version"`
	Entries []Entry `json:"entries"`

	byID map[funcid.FunctionID]int
}

// Parse reads a catalog document.
func Parse(text string) (*Catalog, error) {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		return nil, fmt.Errorf("catalog is empty")
	}

	c := &Catalog{
		Version: strings.TrimSpace(sc.Text()),
		byID:    make(map[funcid.FunctionID]int),
	}
	if c.Version == "" {
		return nil, fmt.Errorf("catalog has no version line")
	}

	line := 1
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, " ")
		if len(fields) != 3 {
			return nil, fmt.Errorf("catalog line %d: expected 3 fields, got %d", line, len(fields))
		}
		v, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", line, err)
		}
		id := funcid.FunctionID(v)
		c.byID[id] = len(c.Entries)
		c.Entries = append(c.Entries, Entry{ID: id, Name: fields[1], Goal: funcid.Goal(fields[2])})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	return c, nil
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id funcid.FunctionID) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.Entries[i], true
}

// Name returns the name for id, or its decimal value if unknown.
func (c *Catalog) Name(id funcid.FunctionID) string {
	if e, ok := c.Lookup(id); ok {
		return e.Name
	}
	return strconv.FormatInt(int64(id), 10)
}
