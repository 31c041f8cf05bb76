package controllers

import (
	"errors"
	"net/http"

	gql "github.com/graphql-go/graphql"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/pkg/graphql"
)

var categoryType = gql.NewObject(gql.ObjectConfig{
	Name: "Category",
	Fields: gql.Fields{
		"id": &gql.Field{Type: gql.NewNonNull(gql.Int), Resolve: func(p gql.ResolveParams) (interface{}, error) {
			return int(p.Source.(*models.Category).ID), nil
		}},
		"name": &gql.Field{Type: gql.String, Resolve: func(p gql.ResolveParams) (interface{}, error) {
			return p.Source.(*models.Category).Name, nil
		}},
		"label": &gql.Field{Type: gql.String, Resolve: func(p gql.ResolveParams) (interface{}, error) {
			return p.Source.(*models.Category).Label(), nil
		}},
	},
})

func product(p gql.ResolveParams) models.Product {
	return p.Source.(models.Product)
}

var productType = gql.NewObject(gql.ObjectConfig{
	Name: "Product",
	Fields: gql.Fields{
		"id": &gql.Field{Type: gql.NewNonNull(gql.Int), Resolve: func(p gql.ResolveParams) (interface{}, error) {
			return int(product(p).ID), nil
		}},
		"name": &gql.Field{Type: gql.String, Resolve: func(p gql.ResolveParams) (interface{}, error) {
			return product(p).Name, nil
		}},
		"flavor": &gql.Field{Type: gql.String, Resolve: func(p gql.ResolveParams) (interface{}, error) {
			return product(p).Flavor, nil
		}},
		"slug": &gql.Field{Type: gql.String, Resolve: func(p gql.ResolveParams) (interface{}, error) {
			return product(p).Slug, nil
		}},
		// Money travels as a fixed two-decimal string.
		"price": &gql.Field{Type: gql.String, Resolve: func(p gql.ResolveParams) (interface{}, error) {
			return product(p).Price.StringFixed(2), nil
		}},
		"stock": &gql.Field{Type: gql.Int, Resolve: func(p gql.ResolveParams) (interface{}, error) {
			return product(p).Stock, nil
		}},
		"imageUrl": &gql.Field{Type: gql.String, Resolve: func(p gql.ResolveParams) (interface{}, error) {
			return product(p).ImageURL, nil
		}},
		"category": &gql.Field{Type: categoryType, Resolve: func(p gql.ResolveParams) (interface{}, error) {
			if c := product(p).Category; c != nil {
				return c, nil
			}
			return nil, nil
		}},
	},
})

// CatalogSchema exposes read-only catalog queries:
//
//	{ products(q: "choco", categoria: 1) { id name price } }
//	{ product(id: 3) { name stock category { label } } }
func CatalogSchema(catalog *services.CatalogService) (gql.Schema, error) {
	query := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"products": &gql.Field{
				Type: gql.NewList(productType),
				Args: gql.FieldConfigArgument{
					"q":         &gql.ArgumentConfig{Type: gql.String},
					"categoria": &gql.ArgumentConfig{Type: gql.Int},
					"page":      &gql.ArgumentConfig{Type: gql.Int, DefaultValue: 1},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					var f repositories.CatalogFilter
					if q, ok := p.Args["q"].(string); ok {
						f.Query = q
					}
					if id, ok := p.Args["categoria"].(int); ok && id > 0 {
						f.CategoryID = uint(id)
					}
					page, _ := p.Args["page"].(int)
					res, err := catalog.List(p.Context, f, page, 0)
					if err != nil {
						return nil, err
					}
					return res.Products, nil
				},
			},
			"product": &gql.Field{
				Type: productType,
				Args: gql.FieldConfigArgument{
					"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.Int)},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					prod, err := catalog.Product(p.Context, uint(id))
					if errors.Is(err, services.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return prod, nil
				},
			},
		},
	})
	return graphql.NewSchema(query)
}

// GraphQLHandler serves the catalog schema.
func GraphQLHandler(reg *services.Registry) (http.HandlerFunc, error) {
	schema, err := CatalogSchema(reg.Catalog)
	if err != nil {
		return nil, err
	}
	return graphql.Handler(schema), nil
}
