package bugzilla

import (
	"context"
	"fmt"
	"sort"

	"github.com/spiffcs/bzmigrate/internal/model"
)

type productQuery struct {
	Type          string   `url:"type"`
	IncludeFields []string `url:"include_fields,comma"`
}

type productsResponse struct {
	Products []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Components  []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"components"`
	} `json:"products"`
}

// Products returns every product the caller can access, with components,
// sorted by name.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	q := productQuery{
		Type: "accessible",
		IncludeFields: []string{
			"name",
			"description",
			"components.name",
			"components.description",
		},
	}

	var out productsResponse
	if err := c.get(ctx, "product", q, &out); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]model.Product, 0, len(out.Products))
	for _, p := range out.Products {
		product := model.Product{Name: p.Name, Description: p.Description}
		for _, comp := range p.Components {
			product.Components = append(product.Components, model.Component{
				Name:        comp.Name,
				Description: comp.Description,
			})
		}
		sort.Slice(product.Components, func(i, j int) bool {
			return product.Components[i].Name < product.Components[j].Name
		})
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].Name < products[j].Name
	})

	return products, nil
}
