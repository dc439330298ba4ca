// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists extracted mentions and candidates and assigns
// documents to train/dev/test splits.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

const (
	extractedDir = "extracted"
	indexDir     = "index"
	metadataDir  = "metadata"
	htmlDir      = "html"
	dbFile       = "corpus.db"

	// SplitsFile is the persisted split assignment, relative to the corpus dir.
	SplitsFile = "splits.yaml"
)

// Store manages the corpus SQLite database.
type Store struct {
	db            *sql.DB
	corpusDir     string
	datasheetsDir string
	maxResults    int
}

// DBPath returns the location of the corpus SQLite database for a
// corpus directory.
func DBPath(corpusDir string) string {
	return filepath.Join(corpusDir, indexDir, dbFile)
}

// NewStore opens or creates the corpus SQLite database at
// corpusDir/index/corpus.db, creating the schema if it does not exist.
func NewStore(cfg types.CorpusConfig, datasheetsDir string) (*Store, error) {
	dbDir := filepath.Join(cfg.CorpusDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:            db,
		corpusDir:     cfg.CorpusDir,
		datasheetsDir: datasheetsDir,
		maxResults:    maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT,
			manufacturer TEXT,
			source_url TEXT,
			path TEXT,
			format TEXT,
			conversion_status TEXT,
			split TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS mentions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			text TEXT NOT NULL,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			section TEXT,
			page INTEGER,
			figure_idx INTEGER,
			confidence REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mentions_doc_id ON mentions(doc_id)`,
		`CREATE INDEX IF NOT EXISTS idx_mentions_type ON mentions(type)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			id TEXT PRIMARY KEY,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			part_mention TEXT NOT NULL,
			figure_mention TEXT NOT NULL,
			distance INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_doc_id ON candidates(doc_id)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			doc_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='mentions_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE mentions_fts USING fts5(text, content=mentions, content_rowid=rowid)`,
			`CREATE TRIGGER mentions_ai AFTER INSERT ON mentions BEGIN
				INSERT INTO mentions_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
			`CREATE TRIGGER mentions_ad AFTER DELETE ON mentions BEGIN
				INSERT INTO mentions_fts(mentions_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			END`,
			`CREATE TRIGGER mentions_au AFTER UPDATE ON mentions BEGIN
				INSERT INTO mentions_fts(mentions_fts, rowid, text) VALUES('delete', old.rowid, old.text);
				INSERT INTO mentions_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a corpus indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of documents processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads extraction YAML files from corpusDir/extracted/ and
// populates the database. It detects new, changed, and unchanged files
// for incremental updates. On success it writes export.yaml.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	extractDir := filepath.Join(s.corpusDir, extractedDir)
	metaDir := filepath.Join(s.datasheetsDir, metadataDir)

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading extraction directory %s: %w", extractDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-items.yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		docID := strings.TrimSuffix(entry.Name(), "-items.yaml")
		filePath := filepath.Join(extractDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		// Check whether the file has changed since last indexing.
		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE doc_id = ?`, docID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", docID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		var result types.ExtractionResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", docID, err)
			summary.Failed++
			continue
		}

		doc := loadDatasheetMetadata(metaDir, docID)

		if err := s.ingestDocument(ctx, docID, &result, doc, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d mentions, %d candidates)\n", docID, len(result.Mentions), len(result.Candidates))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d mentions, %d candidates)\n", docID, len(result.Mentions), len(result.Candidates))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	// Write export.yaml after successful ingestion.
	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestDocument(ctx context.Context, docID string, result *types.ExtractionResult, doc *types.Datasheet, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old rows if updating.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM mentions WHERE doc_id = ?`, docID); err != nil {
			return fmt.Errorf("deleting old mentions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE doc_id = ?`, docID); err != nil {
			return fmt.Errorf("deleting old candidates: %w", err)
		}
	}

	// Upsert document record. Split assignment survives re-ingestion.
	if doc != nil {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (id, title, manufacturer, source_url, path, format, conversion_status)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				title=excluded.title, manufacturer=excluded.manufacturer,
				source_url=excluded.source_url, path=excluded.path,
				format=excluded.format, conversion_status=excluded.conversion_status`,
			doc.ID, doc.Title, doc.Manufacturer, doc.SourceURL,
			doc.Path, string(doc.Format), string(doc.ConversionStatus),
		)
		if err != nil {
			return fmt.Errorf("upserting document: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO documents (id) VALUES (?)`, docID,
		)
		if err != nil {
			return fmt.Errorf("inserting document stub: %w", err)
		}
	}

	// Insert mentions.
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO mentions (id, type, text, doc_id, section, page, figure_idx, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing mention insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range result.Mentions {
		_, err := stmt.ExecContext(ctx,
			m.ID, string(m.Type), m.Text, m.DocID,
			m.Section, m.Page, m.FigureIndex, m.Confidence,
		)
		if err != nil {
			return fmt.Errorf("inserting mention %s: %w", m.ID, err)
		}
	}

	// Insert candidates.
	for _, c := range result.Candidates {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO candidates (id, doc_id, part_mention, figure_mention, distance)
			 VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.DocID, c.PartMentionID, c.FigureMentionID, c.Distance,
		)
		if err != nil {
			return fmt.Errorf("inserting candidate %s: %w", c.ID, err)
		}
	}

	// Update indexing status.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (doc_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		docID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// ApplySplits writes split labels onto document rows, creating stub rows
// for documents not yet ingested so the assignment is never lost.
func (s *Store) ApplySplits(ctx context.Context, splits Splits) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	apply := func(docs []types.Datasheet, label types.SplitLabel) error {
		for _, d := range docs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO documents (id, split) VALUES (?, ?)
				 ON CONFLICT(id) DO UPDATE SET split=excluded.split`,
				d.ID, string(label),
			); err != nil {
				return fmt.Errorf("assigning %s to %s: %w", d.ID, label, err)
			}
		}
		return nil
	}

	if err := apply(splits.Train, types.SplitTrain); err != nil {
		return err
	}
	if err := apply(splits.Dev, types.SplitDev); err != nil {
		return err
	}
	if err := apply(splits.Test, types.SplitTest); err != nil {
		return err
	}

	return tx.Commit()
}

// loadDatasheetMetadata reads a Datasheet record from metaDir/[docID].yaml.
// Returns nil if the file does not exist or cannot be parsed.
func loadDatasheetMetadata(metaDir, docID string) *types.Datasheet {
	path := filepath.Join(metaDir, docID+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc types.Datasheet
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return &doc
}
