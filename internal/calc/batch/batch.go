package batch

import (
	"errors"
	"fmt"

	"MyGens/internal/calc/sizing"
)

var ErrEmpty = errors.New("no items")

type BatchInput struct {
	Items []sizing.Input `json:"items"`
}

type BatchResult struct {
	Results []sizing.Result `json:"results"`
}

// Calculate sizes every item with c. The first failing item aborts the batch.
func Calculate(c *sizing.Calculator, in BatchInput) (BatchResult, error) {
	if len(in.Items) == 0 {
		return BatchResult{}, ErrEmpty
	}
	out := BatchResult{Results: make([]sizing.Result, 0, len(in.Items))}
	for i, item := range in.Items {
		res, err := c.Calculate(item)
		if err != nil {
			return BatchResult{}, fmt.Errorf("item %d: %w", i, err)
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}
