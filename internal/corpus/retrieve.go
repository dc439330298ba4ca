// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

// QueryOptions holds parameters for corpus queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over mention text.
	Query string

	// Type filters by MentionType.
	Type types.MentionType

	// DocID filters by document.
	DocID string

	// Split filters by split assignment of the owning document.
	Split types.SplitLabel

	// MaxResults limits result count. Zero uses store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Type == "" && q.DocID == "" && q.Split == ""
}

// QueryResult is a Mention with associated document metadata.
type QueryResult struct {
	types.Mention
	DocTitle     string           `json:"doc_title" yaml:"doc_title"`
	Manufacturer string           `json:"manufacturer" yaml:"manufacturer"`
	Split        types.SplitLabel `json:"split,omitempty" yaml:"split,omitempty"`
}

// Retrieve queries the corpus with optional full-text search and
// structured filters. Results are ranked by relevance for full-text
// queries or sorted by doc_id, section, page otherwise.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT m.id, m.type, m.text, m.doc_id, m.section, m.page,
				m.figure_idx, m.confidence,
				d.title, d.manufacturer, d.split, mentions_fts.rank
			FROM mentions_fts
			JOIN mentions m ON m.rowid = mentions_fts.rowid
			LEFT JOIN documents d ON m.doc_id = d.id
			WHERE mentions_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT m.id, m.type, m.text, m.doc_id, m.section, m.page,
				m.figure_idx, m.confidence,
				d.title, d.manufacturer, d.split, 0 AS rank
			FROM mentions m
			LEFT JOIN documents d ON m.doc_id = d.id
			WHERE 1=1`)
	}

	if opts.Type != "" {
		qb.WriteString(` AND m.type = ?`)
		args = append(args, string(opts.Type))
	}

	if opts.DocID != "" {
		qb.WriteString(` AND m.doc_id = ?`)
		args = append(args, opts.DocID)
	}

	if opts.Split != "" {
		qb.WriteString(` AND d.split = ?`)
		args = append(args, string(opts.Split))
	}

	if useFTS {
		qb.WriteString(` ORDER BY mentions_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY m.doc_id, m.section, m.page`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying corpus: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr           QueryResult
			mentionType  string
			docTitle     sql.NullString
			manufacturer sql.NullString
			split        sql.NullString
			rank         float64
		)

		if err := rows.Scan(
			&qr.ID, &mentionType, &qr.Text, &qr.DocID, &qr.Section, &qr.Page,
			&qr.FigureIndex, &qr.Confidence,
			&docTitle, &manufacturer, &split, &rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Type = types.MentionType(mentionType)

		if docTitle.Valid {
			qr.DocTitle = docTitle.String
		}
		if manufacturer.Valid {
			qr.Manufacturer = manufacturer.String
		}
		if split.Valid {
			qr.Split = types.SplitLabel(split.String)
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}

// SplitCount is the per-split document tally used by reporting.
type SplitCount struct {
	Split types.SplitLabel
	Docs  int
}

// Stats holds corpus-wide totals for reporting.
type Stats struct {
	Documents  int
	Mentions   int
	Candidates int
	Splits     []SplitCount
	ByVendor   map[string]int
}

// CollectStats gathers document, mention, and candidate totals plus the
// per-split and per-manufacturer breakdowns.
func (s *Store) CollectStats(ctx context.Context) (Stats, error) {
	var st Stats

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT count(*) FROM documents`, &st.Documents},
		{`SELECT count(*) FROM mentions`, &st.Mentions},
		{`SELECT count(*) FROM candidates`, &st.Candidates},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("counting: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT split, count(*) FROM documents WHERE split IS NOT NULL AND split != '' GROUP BY split ORDER BY split`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting splits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc SplitCount
		var label string
		if err := rows.Scan(&label, &sc.Docs); err != nil {
			return Stats{}, fmt.Errorf("scanning split count: %w", err)
		}
		sc.Split = types.SplitLabel(label)
		st.Splits = append(st.Splits, sc)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	vrows, err := s.db.QueryContext(ctx,
		`SELECT manufacturer, count(*) FROM documents
		 WHERE manufacturer IS NOT NULL AND manufacturer != '' GROUP BY manufacturer`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting manufacturers: %w", err)
	}
	defer vrows.Close()
	st.ByVendor = make(map[string]int)
	for vrows.Next() {
		var vendor string
		var n int
		if err := vrows.Scan(&vendor, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning vendor count: %w", err)
		}
		st.ByVendor[vendor] = n
	}
	return st, vrows.Err()
}

// Trace returns the surrounding section text from the converted HTML for
// a given mention ID. It reads from datasheets/html/ using the mention's
// doc_id and section to locate the source passage.
func (s *Store) Trace(ctx context.Context, mentionID string) (string, error) {
	var docID, section string

	err := s.db.QueryRowContext(ctx,
		`SELECT doc_id, section FROM mentions WHERE id = ?`, mentionID,
	).Scan(&docID, &section)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("mention %s not found", mentionID)
		}
		return "", fmt.Errorf("looking up mention: %w", err)
	}

	htmlPath := filepath.Join(s.datasheetsDir, htmlDir, docID+".html")
	content, err := os.ReadFile(htmlPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", htmlPath, err)
	}

	return extractSectionContext(string(content), section), nil
}

// extractSectionContext finds the named heading in HTML source and
// returns the raw markup between it and the next heading, tags stripped
// to plain text.
func extractSectionContext(content, targetSection string) string {
	lower := strings.ToLower(content)
	target := strings.ToLower(targetSection)

	start := -1
	for _, tag := range []string{"<h1", "<h2", "<h3"} {
		idx := 0
		for {
			pos := strings.Index(lower[idx:], tag)
			if pos < 0 {
				break
			}
			pos += idx
			end := strings.Index(lower[pos:], "</h")
			if end < 0 {
				break
			}
			heading := stripTags(content[pos : pos+end])
			if strings.EqualFold(strings.TrimSpace(heading), strings.TrimSpace(target)) {
				start = pos + end
			}
			idx = pos + end
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return ""
	}

	rest := content[start:]
	stop := len(rest)
	for _, tag := range []string{"<h1", "<h2", "<h3"} {
		if pos := strings.Index(strings.ToLower(rest[1:]), tag); pos >= 0 && pos+1 < stop {
			stop = pos + 1
		}
	}

	return strings.TrimSpace(stripTags(rest[:stop]))
}

// stripTags removes HTML tags, leaving text content.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
