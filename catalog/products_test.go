package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "data": {
    "products": {
      "edges": [
        {
          "node": {
            "id": "gid://shopify/Product/101",
            "title": "Oversized Acid Wash Tee",
            "description": "Heavyweight cotton.",
            "handle": "acid-wash-tee",
            "tags": ["streetwear", "tee"],
            "productType": "tees",
            "onlineStoreUrl": "https://riiqx.store/products/acid-wash-tee",
            "priceRange": {"minVariantPrice": {"amount": "1299.00", "currencyCode": "INR"}},
            "images": {"edges": [{"node": {"url": "https://cdn/1.jpg"}}, {"node": {"url": "https://cdn/2.jpg"}}]}
          }
        },
        {
          "node": {
            "id": "gid://shopify/Product/102",
            "title": "No Photos Hoodie",
            "handle": "no-photos",
            "priceRange": {"minVariantPrice": {"amount": "1999.00", "currencyCode": "INR"}},
            "images": {"edges": []}
          }
        },
        {
          "node": {
            "id": "gid://shopify/Product/103",
            "title": "Cargo Pants",
            "handle": "cargo-pants",
            "productType": "pants",
            "priceRange": {"minVariantPrice": {"amount": "2499.50", "currencyCode": "INR"}},
            "images": {"edges": [{"node": {"url": "https://cdn/3.jpg"}}]}
          }
        }
      ]
    }
  }
}`

func TestParseProducts(t *testing.T) {
	products, err := parseProducts([]byte(sampleResponse), "riiqx.store")
	require.NoError(t, err)
	require.Len(t, products, 2, "imageless products are dropped")

	first := products[0]
	assert.Equal(t, "gid://shopify/Product/101", first.ID)
	assert.Equal(t, 1299, first.Price)
	assert.Equal(t, "INR", first.Currency)
	assert.Equal(t, "tees", first.Category)
	assert.Equal(t, []string{"https://cdn/1.jpg", "https://cdn/2.jpg"}, first.Images)
	assert.Equal(t, "https://riiqx.store/products/acid-wash-tee", first.ShopURL)

	// Missing onlineStoreUrl falls back to the handle URL, fractional
	// amounts truncate.
	second := products[1]
	assert.Equal(t, "https://riiqx.store/products/cargo-pants", second.ShopURL)
	assert.Equal(t, 2499, second.Price)
}

func TestParseProductsSurfacesQueryErrors(t *testing.T) {
	raw := `{"errors":[{"message":"field 'bogus' doesn't exist"}]}`
	_, err := parseProducts([]byte(raw), "riiqx.store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, 1299, parseAmount("1299.00"))
	assert.Equal(t, 0, parseAmount("not-a-number"))
}
