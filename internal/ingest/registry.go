// Package ingest dispatches uploaded statement files to the right parser,
// guarding against duplicate ingestion by content hash.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/parser"
)

// Format describes one registered statement type: which bank it belongs to,
// the file extensions it accepts and how to build its parser. Tags that ship
// both spreadsheet and PDF renditions pick the parser by extension.
type Format struct {
	Bank        string
	Description string
	Extensions  []string
	New         func(deps parser.Deps, ext string) parser.Parser
}

// Registry maps statement type tags to their formats.
type Registry struct {
	formats map[string]Format
	tags    []string
}

// NewRegistry returns a registry with every supported statement type.
func NewRegistry() *Registry {
	r := &Registry{formats: make(map[string]Format)}

	r.add("monet-aho-gyt", Format{
		Bank:        "GYT",
		Description: "GYT checking/savings account",
		Extensions:  []string{".xlsx", ".xls", ".pdf"},
		New: func(deps parser.Deps, ext string) parser.Parser {
			if ext == ".pdf" {
				return parser.NewGYTCheckingPDF(deps)
			}
			return parser.NewGYTCheckingXLSX(deps)
		},
	})
	r.add("tc-gyt", Format{
		Bank:        "GYT",
		Description: "GYT credit card",
		Extensions:  []string{".xlsx", ".xls", ".pdf"},
		New: func(deps parser.Deps, ext string) parser.Parser {
			if ext == ".pdf" {
				return parser.NewGYTCardPDF(deps)
			}
			return parser.NewGYTCardXLSX(deps)
		},
	})
	r.add("monet-bi", Format{
		Bank:        "BI",
		Description: "BI checking account",
		Extensions:  []string{".pdf"},
		New: func(deps parser.Deps, _ string) parser.Parser {
			return parser.NewBICheckingPDF(deps)
		},
	})
	r.add("monet-bi-email", Format{
		Bank:        "BI",
		Description: "BI checking account (mailed statement)",
		Extensions:  []string{".pdf"},
		New: func(deps parser.Deps, _ string) parser.Parser {
			return parser.NewBICheckingEmailPDF(deps)
		},
	})
	r.add("monet-bi-legacy", Format{
		Bank:        "BI",
		Description: "BI checking account (pre-2023 layout)",
		Extensions:  []string{".pdf"},
		New: func(deps parser.Deps, _ string) parser.Parser {
			return parser.NewBICheckingLegacyPDF(deps)
		},
	})
	r.add("tc-bi", Format{
		Bank:        "BI",
		Description: "BI credit card",
		Extensions:  []string{".xls", ".xlsx"},
		New: func(deps parser.Deps, _ string) parser.Parser {
			return parser.NewBICardXLS(deps)
		},
	})
	r.add("tc-bi-email", Format{
		Bank:        "BI",
		Description: "BI credit card (mailed statement)",
		Extensions:  []string{".pdf"},
		New: func(deps parser.Deps, _ string) parser.Parser {
			return parser.NewBICardEmailPDF(deps)
		},
	})
	r.add("tc-bi-virtual", Format{
		Bank:        "BI",
		Description: "BI virtual credit card",
		Extensions:  []string{".xlsx", ".xls", ".csv"},
		New: func(deps parser.Deps, _ string) parser.Parser {
			return parser.NewBICardVirtual(deps)
		},
	})
	r.add("tc-promerica", Format{
		Bank:        "Promerica",
		Description: "Promerica credit card",
		Extensions:  []string{".xls"},
		New: func(deps parser.Deps, _ string) parser.Parser {
			return parser.NewPromericaCardHTML(deps)
		},
	})
	r.add("tc-bac", Format{
		Bank:        "BAC",
		Description: "BAC credit card",
		Extensions:  []string{".csv"},
		New: func(deps parser.Deps, _ string) parser.Parser {
			return parser.NewBACCardCSV(deps)
		},
	})
	r.add("ahorro-interbanco", Format{
		Bank:        "Interbanco",
		Description: "Interbanco savings account",
		Extensions:  []string{".pdf"},
		New: func(deps parser.Deps, _ string) parser.Parser {
			return parser.NewInterbancoSavingsPDF(deps)
		},
	})
	r.add("generic", Format{
		Bank:        "GEN",
		Description: "generic movements import",
		Extensions:  []string{".csv", ".xlsx", ".xls"},
		New: func(deps parser.Deps, _ string) parser.Parser {
			return parser.NewGenericMovements(deps)
		},
	})

	return r
}

func (r *Registry) add(tag string, format Format) {
	r.formats[tag] = format
	r.tags = append(r.tags, tag)
}

// Lookup resolves a statement type tag.
func (r *Registry) Lookup(tag string) (Format, error) {
	format, ok := r.formats[tag]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q", common.ErrUnsupportedStatement, tag)
	}
	return format, nil
}

// Validate checks that the tag exists and accepts the file's extension.
func (r *Registry) Validate(tag, path string) (Format, error) {
	format, err := r.Lookup(tag)
	if err != nil {
		return Format{}, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, accepted := range format.Extensions {
		if ext == accepted {
			return format, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %q does not accept %q",
		common.ErrUnsupportedExtension, tag, ext)
}

// Tags returns the registered statement type tags in registration order.
func (r *Registry) Tags() []string {
	tags := make([]string, len(r.tags))
	copy(tags, r.tags)
	return tags
}
