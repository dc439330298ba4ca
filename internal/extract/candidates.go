// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"sort"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

// DefaultMaxPairDistance is the block separation limit used when the
// configuration leaves MaxPairDistance unset.
const DefaultMaxPairDistance = 3

// PairCandidates pairs each part mention with every figure mention from
// the same document within maxDistance text blocks. A part that sits in
// the caption block of a figure pairs at distance zero. Candidates are
// returned sorted by part mention ID then figure mention ID so
// re-extraction produces a stable order.
func PairCandidates(docID string, parts, figures []types.Mention, maxDistance int) []types.Candidate {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxPairDistance
	}

	var candidates []types.Candidate
	for _, part := range parts {
		for _, fig := range figures {
			dist := part.Block - fig.Block
			if dist < 0 {
				dist = -dist
			}
			if dist > maxDistance {
				continue
			}
			candidates = append(candidates, types.Candidate{
				ID:              stableID(docID, "candidate", part.ID, fig.ID),
				DocID:           docID,
				PartMentionID:   part.ID,
				FigureMentionID: fig.ID,
				Distance:        dist,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].PartMentionID != candidates[j].PartMentionID {
			return candidates[i].PartMentionID < candidates[j].PartMentionID
		}
		return candidates[i].FigureMentionID < candidates[j].FigureMentionID
	})

	return candidates
}
