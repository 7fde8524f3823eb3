package codec

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"nutriapp/internal/domain"
)

const sampleYAML = `
ingredients:
  - name: onion
    calories: 100
  - name: carrot
    calories: 41
    image: file:///carrot.jpg
recipes:
  - name: Soup
    steps: boil
    ingredients:
      - ingredient: onion
        quantity: 2 cups
      - ingredient: carrot
        quantity: "3"
`

func sampleCatalog() *domain.Catalog {
	return &domain.Catalog{
		Ingredients: []domain.Ingredient{
			{Name: "onion", Calories: 100},
			{Name: "carrot", Calories: 41, ImageURI: "file:///carrot.jpg"},
		},
		Recipes: []domain.CatalogRecipe{
			{
				Name:  "Soup",
				Steps: "boil",
				Ingredients: []domain.CatalogQuantity{
					{Ingredient: "onion", Quantity: "2 cups"},
					{Ingredient: "carrot", Quantity: "3"},
				},
			},
		},
	}
}

func TestYAMLCodecParse(t *testing.T) {
	c := NewYAMLCodec()

	t.Run("parses ingredients and recipes", func(t *testing.T) {
		got, err := c.Parse(strings.NewReader(sampleYAML))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(sampleCatalog(), got) {
			t.Errorf("expected %+v, got %+v", sampleCatalog(), got)
		}
	})

	t.Run("empty document yields empty catalog", func(t *testing.T) {
		got, err := c.Parse(strings.NewReader(""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Ingredients) != 0 || len(got.Recipes) != 0 {
			t.Errorf("expected empty catalog, got %+v", got)
		}
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		_, err := c.Parse(strings.NewReader("ingredients:\n  - name: x\n    kcal: 3\n"))
		if err == nil {
			t.Error("expected error for unknown field")
		}
	})
}

func TestYAMLCodecExportParses(t *testing.T) {
	c := NewYAMLCodec()

	var buf bytes.Buffer
	if err := c.Export(sampleCatalog(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "  - name: onion") {
		t.Errorf("expected two-space indented list, got:\n%s", buf.String())
	}

	got, err := c.Parse(&buf)
	if err != nil {
		t.Fatalf("failed to parse exported YAML: %v", err)
	}
	if !reflect.DeepEqual(sampleCatalog(), got) {
		t.Errorf("expected %+v, got %+v", sampleCatalog(), got)
	}
}

func TestJSONCodec(t *testing.T) {
	c := NewJSONCodec()

	t.Run("export omits store ids", func(t *testing.T) {
		catalog := sampleCatalog()
		catalog.Ingredients[0].ID = 9

		var buf bytes.Buffer
		if err := c.Export(catalog, &buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), `"id"`) {
			t.Errorf("expected no id field, got:\n%s", buf.String())
		}

		got, err := c.Parse(&buf)
		if err != nil {
			t.Fatalf("failed to parse exported JSON: %v", err)
		}
		if !reflect.DeepEqual(sampleCatalog(), got) {
			t.Errorf("expected %+v, got %+v", sampleCatalog(), got)
		}
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := c.Parse(strings.NewReader("{"))
		if err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLookup(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"yaml", "yaml"},
		{"YML", "yaml"},
		{"json", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			c, err := Lookup(tt.format)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Format() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, c.Format())
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, err := Lookup("csv")
		if !errors.Is(err, domain.ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})
}

func TestForPath(t *testing.T) {
	c, err := ForPath("/etc/nutriapp/seed.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Format() != "yaml" {
		t.Errorf("expected yaml, got %s", c.Format())
	}

	if _, err := ForPath("seed"); err == nil {
		t.Error("expected error for missing extension")
	}
}
