package memory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fixtureFile is the on-disk layout accepted by LoadFixtures:
//
//	ranges:
//	  "Sheet1!A2:C4":
//	    - [44931, "rent", 10]
//	    - ["", "", ""]
type fixtureFile struct {
	Ranges map[string][][]any `yaml:"ranges"`
}

// NewFromFile builds a store seeded with the ranges listed in a YAML file.
func NewFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	s := New()
	if err := s.LoadFixtures(data); err != nil {
		return nil, fmt.Errorf("load fixtures %s: %w", path, err)
	}
	return s, nil
}

// LoadFixtures registers every range in a YAML fixture document.
// Integers become float64 and null or empty cells become nil so the
// matrices look like what a spreadsheet read would return.
func (s *Store) LoadFixtures(data []byte) error {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	for a1, rows := range f.Ranges {
		for _, row := range rows {
			for i, v := range row {
				row[i] = normalizeCell(v)
			}
		}
		s.Put(a1, rows)
	}
	return nil
}

func normalizeCell(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case string:
		if x == "" {
			return nil
		}
		return x
	default:
		return v
	}
}
