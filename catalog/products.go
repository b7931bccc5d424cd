package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"reel-pipeline/types"
)

const (
	storefrontAPIVersion = "2024-01"
	defaultPageSize      = 20
)

const productsQuery = `query Products($first: Int!) {
  products(first: $first) {
    edges {
      node {
        id
        title
        description
        handle
        tags
        productType
        onlineStoreUrl
        priceRange { minVariantPrice { amount currencyCode } }
        images(first: 12) { edges { node { url } } }
      }
    }
  }
}`

// Store reads products from the Shopify Storefront GraphQL API.
type Store struct {
	domain     string
	token      string
	httpClient *http.Client
	rnd        *rand.Rand
	log        *zap.Logger
}

func NewStore(domain, token string, log *zap.Logger) *Store {
	return &Store{
		domain:     domain,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		log:        log,
	}
}

// Products fetches up to limit catalog items. Items without images are
// dropped; a reel cannot be built from them.
func (s *Store) Products(ctx context.Context, limit int) ([]types.Product, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	payload := map[string]any{
		"query":     productsQuery,
		"variables": map[string]any{"first": limit},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("https://%s/api/%s/graphql.json", s.domain, storefrontAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storefront request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storefront status %d: %.200s", resp.StatusCode, raw)
	}

	products, err := parseProducts(raw, s.domain)
	if err != nil {
		return nil, err
	}
	s.log.Info("catalog fetched", zap.Int("products", len(products)))
	return products, nil
}

// ProductByID returns the catalog item matching a full GraphQL id, a bare
// numeric id, or a handle.
func (s *Store) ProductByID(ctx context.Context, id string) (*types.Product, error) {
	products, err := s.Products(ctx, defaultPageSize)
	if err != nil {
		return nil, err
	}
	for i := range products {
		p := &products[i]
		if p.ID == id || p.Handle == id || strings.HasSuffix(p.ID, "/"+id) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("product %q not found", id)
}

// RandomProduct picks one catalog item at random, for scheduled runs that
// do not name a product.
func (s *Store) RandomProduct(ctx context.Context) (*types.Product, error) {
	products, err := s.Products(ctx, defaultPageSize)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errors.New("catalog is empty")
	}
	return &products[s.rnd.Intn(len(products))], nil
}

type productsResponse struct {
	Data struct {
		Products struct {
			Edges []struct {
				Node struct {
					ID             string   `json:"id"`
					Title          string   `json:"title"`
					Description    string   `json:"description"`
					Handle         string   `json:"handle"`
					Tags           []string `json:"tags"`
					ProductType    string   `json:"productType"`
					OnlineStoreURL string   `json:"onlineStoreUrl"`
					PriceRange     struct {
						MinVariantPrice struct {
							Amount       string `json:"amount"`
							CurrencyCode string `json:"currencyCode"`
						} `json:"minVariantPrice"`
					} `json:"priceRange"`
					Images struct {
						Edges []struct {
							Node struct {
								URL string `json:"url"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"images"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func parseProducts(raw []byte, domain string) ([]types.Product, error) {
	var resp productsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode storefront response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("storefront query: %s", resp.Errors[0].Message)
	}

	var products []types.Product
	for _, edge := range resp.Data.Products.Edges {
		n := edge.Node
		if len(n.Images.Edges) == 0 {
			continue
		}

		images := make([]string, 0, len(n.Images.Edges))
		for _, img := range n.Images.Edges {
			images = append(images, img.Node.URL)
		}

		shopURL := n.OnlineStoreURL
		if shopURL == "" {
			shopURL = fmt.Sprintf("https://%s/products/%s", domain, n.Handle)
		}

		products = append(products, types.Product{
			ID:          n.ID,
			Title:       n.Title,
			Description: n.Description,
			Price:       parseAmount(n.PriceRange.MinVariantPrice.Amount),
			Currency:    n.PriceRange.MinVariantPrice.CurrencyCode,
			Category:    n.ProductType,
			Tags:        n.Tags,
			Images:      images,
			ShopURL:     shopURL,
			Handle:      n.Handle,
		})
	}
	return products, nil
}

// parseAmount converts the Storefront decimal string to whole currency
// units, truncating fractional paise/cents.
func parseAmount(amount string) int {
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	return int(f)
}
