package catalog

import (
	"fmt"
	"os"

	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type fileCatalog struct {
	Products []fileProduct `yaml:"products"`
}

type fileProduct struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Brand       string      `yaml:"brand"`
	Description string      `yaml:"description"`
	Price       string      `yaml:"price"`
	Colors      []fileColor `yaml:"colors"`
	Sizes       []float64   `yaml:"sizes"`
	Category    string      `yaml:"category"`
	Featured    bool        `yaml:"featured"`
	New         bool        `yaml:"new"`
}

type fileColor struct {
	Name      string `yaml:"name"`
	Hex       string `yaml:"hex"`
	MeshColor string `yaml:"mesh_color"`
}

// LoadFile reads a YAML product collection.
//
// Prices are decimal strings, e.g. price: "129.99".
func LoadFile(path string) (*Static, error) {
	const op = "catalog.LoadFile"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return s, nil
}

// Parse decodes a YAML product collection.
func Parse(data []byte) (*Static, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(fc.Products))
	for _, fp := range fc.Products {
		p, err := fp.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return New(products)
}

func (fp fileProduct) toDomain() (domain.Product, error) {
	price, err := decimal.NewFromString(fp.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf(
			"%w %q: price: %w", ErrInvalidProduct, fp.ID, err,
		)
	}

	colors := make([]domain.ProductColor, len(fp.Colors))
	for i, c := range fp.Colors {
		colors[i] = domain.ProductColor(c)
	}

	sizes := make([]domain.Size, len(fp.Sizes))
	for i, s := range fp.Sizes {
		sizes[i] = domain.Size(s)
	}

	return domain.Product{
		ID:          fp.ID,
		Name:        fp.Name,
		Brand:       fp.Brand,
		Description: fp.Description,
		Price:       price,
		Colors:      colors,
		Sizes:       sizes,
		Category:    fp.Category,
		Featured:    fp.Featured,
		New:         fp.New,
	}, nil
}
