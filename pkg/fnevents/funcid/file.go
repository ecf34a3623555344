package funcid

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// definitionFile is the on-disk layout of a definitions file:
//
//	functions:
//	  - name: Workspace_OpenDocument
//	    value: 1
//	  - name: Workspace_CloseDocument
//	    value: 2
//	    goal: Perf
type definitionFile struct {
	Functions []Definition `yaml:"functions" json:"functions" toml:"functions"`
}

// LoadFile reads definitions from a .yaml, .yml, .json or .toml file,
// preserving file order. Values are not resolved here; a bad value only
// affects its own entry when the catalog is generated.
func LoadFile(path string) (Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions file: %w", err)
	}

	var f definitionFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".json":
		err = json.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported definitions file extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse definitions %s: %w", path, err)
	}
	return Definitions(f.Functions), nil
}

// Problem describes one defect found by Check.
type Problem struct {
	Name    string
	Message string
}

func (p Problem) String() string {
	return p.Name + ": " + p.Message
}

// Check lints a Source: unresolvable values, duplicate values, duplicate names,
// and names that are empty or contain whitespace. Problems are sorted by name.
func Check(src Source) []Problem {
	var problems []Problem
	byValue := make(map[FunctionID]string)
	names := make(map[string]bool)

	for _, def := range src.Definitions() {
		switch {
		case def.Name == "":
			problems = append(problems, Problem{Name: def.Name, Message: "empty name"})
		case ContainsSpace(def.Name):
			problems = append(problems, Problem{Name: def.Name, Message: "name contains whitespace"})
		}
		if ContainsSpace(string(def.Goal)) {
			problems = append(problems, Problem{Name: def.Name, Message: "goal contains whitespace"})
		}
		if names[def.Name] {
			problems = append(problems, Problem{Name: def.Name, Message: "duplicate name"})
		}
		names[def.Name] = true

		id, err := def.ID()
		if err != nil {
			problems = append(problems, Problem{Name: def.Name, Message: err.Error()})
			continue
		}
		if prev, ok := byValue[id]; ok {
			problems = append(problems, Problem{
				Name:    def.Name,
				Message: fmt.Sprintf("value %d already used by %s", id, prev),
			})
			continue
		}
		byValue[id] = def.Name
	}

	sort.SliceStable(problems, func(i, j int) bool {
		return problems[i].Name < problems[j].Name
	})
	return problems
}
