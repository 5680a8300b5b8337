package merge

import (
	"sort"

	"logtail-dashboard/internal/model"
)

// Merge flattens every line of every chunk, tags it with its chunk's
// labels, orders the result by timestamp descending and truncates it to
// limit. Chunk-internal ordering is not trusted.
//
// Ties on equal timestamps are resolved by the stable sort: chunk input
// order first, then within-chunk order.
func Merge(chunks []model.StreamChunk, limit int) []model.MergedLine {
	total := 0
	for _, chunk := range chunks {
		total += len(chunk.Lines)
	}

	merged := make([]model.MergedLine, 0, total)
	for _, chunk := range chunks {
		for _, line := range chunk.Lines {
			merged = append(merged, model.MergedLine{
				Timestamp: line.Timestamp,
				Labels:    chunk.Labels,
				Line:      line.Line,
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})

	if limit >= 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
