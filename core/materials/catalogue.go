// Package materials lets grant holders order printed materials: the catalogue, their basket and the orders.
package materials

import (
	"io"
	"io/fs"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/biglotteryfund/funding/core"
	appfs "github.com/biglotteryfund/funding/fs"
)

const cataloguePath = "assets/materials.yaml"

var ErrUnknownMaterial = errors.New("unknown material")

type Material struct {
	Code        string    `yaml:"code" json:"code"`
	Title       core.Copy `yaml:"title" json:"title"`
	Description core.Copy `yaml:"description" json:"description"`
	MaxQuantity int       `yaml:"maxQuantity" json:"maxQuantity"`
}

// Catalogue is the list of the materials that can be ordered, in display order.
type Catalogue struct {
	items  []Material
	byCode map[string]int
}

// NewCatalogue indexes materials by code. Codes must be unique and quantities positive.
func NewCatalogue(items []Material) (*Catalogue, error) {
	cat := &Catalogue{items: items, byCode: make(map[string]int, len(items))}
	for i, m := range items {
		if m.Code == "" {
			return nil, errors.Errorf("materials.NewCatalogue: item %d has no code", i)
		}
		if _, ok := cat.byCode[m.Code]; ok {
			return nil, errors.Errorf("materials.NewCatalogue: duplicate code %q", m.Code)
		}
		if m.MaxQuantity < 1 {
			return nil, errors.Errorf("materials.NewCatalogue: %q has no max quantity", m.Code)
		}
		cat.byCode[m.Code] = i
	}
	return cat, nil
}

// ParseCatalogue reads a YAML list of materials.
func ParseCatalogue(r io.Reader) (*Catalogue, error) {
	var items []Material
	if err := yaml.NewDecoder(r).Decode(&items); err != nil {
		return nil, errors.Wrap(err, "decoding catalogue")
	}
	return NewCatalogue(items)
}

// LoadCatalogue reads the catalogue shipped with the binaries.
func LoadCatalogue() (*Catalogue, error) {
	f, err := appfs.FS.Open(cataloguePath)
	if err != nil {
		return nil, errors.Wrap(err, "opening catalogue")
	}
	defer func(f fs.File) { _ = f.Close() }(f)
	return ParseCatalogue(f)
}

func (c *Catalogue) Items() []Material {
	out := make([]Material, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalogue) Get(code string) (Material, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return Material{}, false
	}
	return c.items[i], true
}
