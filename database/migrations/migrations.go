// Package migrations holds the storefront schema. Each file registers its
// migrations from init(); cmd/storefront imports this package for the side
// effect.
package migrations
