// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

// Matcher decides whether a parsed figure becomes a mention and with
// what confidence. Matchers implement the Strategy pattern so a corpus
// run can swap selection policies without touching the batch driver.
type Matcher interface {
	Match(fig types.Figure) (ok bool, confidence float64)
}

// MatchAll accepts every figure with full confidence. It is the default
// policy for corpus construction, where recall matters and filtering is
// deferred to downstream labeling.
type MatchAll struct{}

func (MatchAll) Match(types.Figure) (bool, float64) { return true, 1.0 }

// CaptionKeyword accepts figures whose caption contains any of the
// configured keywords, case-insensitively. Confidence scales with the
// number of distinct keywords hit.
type CaptionKeyword struct {
	Keywords []string
}

func (m CaptionKeyword) Match(fig types.Figure) (bool, float64) {
	if len(m.Keywords) == 0 {
		return false, 0
	}
	caption := strings.ToLower(fig.Caption)
	hits := 0
	for _, kw := range m.Keywords {
		if kw != "" && strings.Contains(caption, strings.ToLower(kw)) {
			hits++
		}
	}
	if hits == 0 {
		return false, 0
	}
	return true, float64(hits) / float64(len(m.Keywords))
}

// All combines matchers with AND semantics; the reported confidence is
// the minimum across members. An empty All matches nothing.
type All []Matcher

func (ms All) Match(fig types.Figure) (bool, float64) {
	if len(ms) == 0 {
		return false, 0
	}
	conf := 1.0
	for _, m := range ms {
		ok, c := m.Match(fig)
		if !ok {
			return false, 0
		}
		if c < conf {
			conf = c
		}
	}
	return true, conf
}
