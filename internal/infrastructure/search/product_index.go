package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-ddd-ecommerce/internal/application"
	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
)

// ProductIndex keeps product documents in an Elasticsearch index.
type ProductIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewProductIndex(es *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{ES: es, IndexName: index}
}

type productDoc struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
	Featured    bool    `json:"featured"`
	UpdatedAt   string  `json:"updated_at"`
}

func newProductDoc(p *entity.Product) productDoc {
	d := productDoc{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Slug:      p.Slug,
		Price:     p.Price,
		Status:    string(p.Status),
		Featured:  p.Featured,
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339Nano),
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	return d
}

func (x *ProductIndex) Index(ctx context.Context, p *entity.Product) error {
	b, err := json.Marshal(newProductDoc(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: p.ID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(ctx, x.ES)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index product: %s", res.Status())
	}
	return nil
}

// Delete ignores documents that were never indexed.
func (x *ProductIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: id}
	res, err := req.Do(ctx, x.ES)
	if err != nil {
		return fmt.Errorf("delete product doc: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete product doc: %s", res.Status())
	}
	return nil
}

// searchBody is a multi_match over sku, name and description, name boosted.
func searchBody(q string, size int) ([]byte, error) {
	return json.Marshal(map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"sku^3", "name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	})
}

func (x *ProductIndex) Search(ctx context.Context, q string, size int) ([]application.ProductHit, error) {
	b, err := searchBody(q, size)
	if err != nil {
		return nil, err
	}
	res, err := x.ES.Search(
		x.ES.Search.WithContext(ctx),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return []application.ProductHit{}, nil
		}
		return nil, fmt.Errorf("search products: %s", res.Status())
	}
	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]application.ProductHit, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string     `json:"_id"`
				Score  float64    `json:"_score"`
				Source productDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	out := make([]application.ProductHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, application.ProductHit{
			ID:     h.ID,
			SKU:    h.Source.SKU,
			Name:   h.Source.Name,
			Slug:   h.Source.Slug,
			Price:  h.Source.Price,
			Status: h.Source.Status,
			Score:  h.Score,
		})
	}
	return out, nil
}

var _ application.ProductIndexer = (*ProductIndex)(nil)
