package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jcgiron/centavo/internal/classify"
	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
	"github.com/jcgiron/centavo/internal/parser"
)

// Store is the persistence surface the loader needs on top of what the
// parsers use.
type Store interface {
	parser.Store
	GetStatementByHash(ctx context.Context, hash string) (*model.StatementFile, error)
	CreateStatement(ctx context.Context, st *model.StatementFile) error
	DeleteStatement(ctx context.Context, id int64) error
}

// Classifier runs a classification pass over unassigned transactions after a
// successful parse.
type Classifier interface {
	ClassifyNew(ctx context.Context) (*classify.Summary, error)
}

// Loader runs the full ingestion pipeline for one statement file.
type Loader struct {
	store      Store
	registry   *Registry
	parserDeps parser.Deps
	classifier Classifier
}

// NewLoader creates a loader.
func NewLoader(store Store, registry *Registry, deps parser.Deps, classifier Classifier) *Loader {
	return &Loader{
		store:      store,
		registry:   registry,
		parserDeps: deps,
		classifier: classifier,
	}
}

// Result reports one completed ingestion.
type Result struct {
	Statement    *model.StatementFile
	Transactions int
	Matched      int
	Duplicate    bool
}

// Ingest registers and parses one statement file. A file whose content hash
// was already ingested is reported as a duplicate without touching storage.
// When the parse fails the registered statement row is removed again, so the
// same file can be retried after fixing the problem.
func (l *Loader) Ingest(ctx context.Context, path, tag string) (*Result, error) {
	format, err := l.registry.Validate(tag, path)
	if err != nil {
		return nil, err
	}

	st, duplicate, err := l.register(ctx, path, tag, format.Bank)
	if err != nil {
		return nil, err
	}
	if duplicate {
		slog.Info("statement already ingested",
			"file", filepath.Base(path),
			"statement_id", st.ID,
			"uploaded_at", st.UploadedAt)
		return &Result{Statement: st, Duplicate: true}, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	count, err := format.New(l.parserDeps, ext).Parse(ctx, path, st)
	if err != nil {
		if delErr := l.store.DeleteStatement(ctx, st.ID); delErr != nil {
			slog.Error("failed to roll back statement registration",
				"statement_id", st.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to parse %s as %s: %w", filepath.Base(path), tag, err)
	}

	result := &Result{Statement: st, Transactions: count}
	if l.classifier != nil && count > 0 {
		summary, err := l.classifier.ClassifyNew(ctx)
		if err != nil {
			return nil, fmt.Errorf("statement ingested but classification failed: %w", err)
		}
		result.Matched = summary.Matched
	}

	slog.Info("statement ingested",
		"file", filepath.Base(path),
		"type", tag,
		"transactions", count,
		"classified", result.Matched)
	return result, nil
}

// register hashes the file and claims its row in statement_files. The second
// return is true when the hash was already present.
func (l *Loader) register(ctx context.Context, path, tag, bank string) (*model.StatementFile, bool, error) {
	hash, err := HashFile(path)
	if err != nil {
		return nil, false, err
	}

	existing, err := l.store.GetStatementByHash(ctx, hash)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}

	st := &model.StatementFile{
		Type:     tag,
		Filename: filepath.Base(path),
		Hash:     hash,
		Bank:     bank,
	}
	if err := l.store.CreateStatement(ctx, st); err != nil {
		// Lost a race with a concurrent upload of the same file.
		if errors.Is(err, common.ErrDuplicateEntry) {
			if existing, lookupErr := l.store.GetStatementByHash(ctx, hash); lookupErr == nil {
				return existing, true, nil
			}
		}
		return nil, false, err
	}
	return st, false, nil
}
