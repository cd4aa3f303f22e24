package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Jirayuth/frame_shop/internal/models"
)

// Search runs a fuzzy multi_match over product name and description.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

// IndexProduct upserts a product document, keyed by the catalog ID.
func IndexProduct(ctx context.Context, es *elasticsearch.Client, index string, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("search: encode product: %w", err)
	}

	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("search: index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("search: index: %s", res.Status())
	}
	return nil
}

func DeleteProduct(ctx context.Context, es *elasticsearch.Client, index string, id uint) error {
	res, err := es.Delete(
		index,
		strconv.FormatUint(uint64(id), 10),
		es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: delete: %w", err)
	}
	defer res.Body.Close()

	// 404 just means the document never made it to the index.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: delete: %s", res.Status())
	}
	return nil
}
