// Package catalog holds the NFT collection and resolves free text to records.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"nft-gallery-agent/internal/domain"
)

// Store is an immutable, insertion-ordered set of catalog records.
type Store struct {
	records []domain.CatalogRecord
	byID    map[string]int
}

// New validates records and returns a Store that preserves their order. Ids
// must be non-empty and unique ignoring case.
func New(records []domain.CatalogRecord) (*Store, error) {
	if len(records) == 0 {
		return nil, errors.New("catalog: at least one record is required")
	}
	s := &Store{
		records: make([]domain.CatalogRecord, len(records)),
		byID:    make(map[string]int, len(records)),
	}
	for i, r := range records {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog: record at index %d has an empty id", i)
		}
		key := strings.ToLower(id)
		if _, dup := s.byID[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate record id %q", id)
		}
		r.ID = id
		r.Attributes = append([]domain.Attribute(nil), r.Attributes...)
		s.records[i] = r
		s.byID[key] = i
	}
	return s, nil
}

// Default returns the compiled-in collection.
func Default() *Store {
	s, err := New(seedRecords)
	if err != nil {
		panic(err)
	}
	return s
}

// All returns a copy of every record in catalog order.
func (s *Store) All() []domain.CatalogRecord {
	out := make([]domain.CatalogRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Len() int { return len(s.records) }

// Get returns the record with the given id, ignoring case.
func (s *Store) Get(id string) (domain.CatalogRecord, bool) {
	i, ok := s.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return domain.CatalogRecord{}, false
	}
	return s.records[i], true
}

// FindRecord resolves a query to a single record. Matching is
// case-insensitive and runs in passes of decreasing strictness:
//
//  1. exact id
//  2. exact name
//  3. name contains the query, or the query contains the name
//  4. description contains the query
//  5. an attribute trait type or value contains the query
//
// Within a pass the first record in catalog order wins.
func (s *Store) FindRecord(query string) (domain.CatalogRecord, bool) {
	return s.find(query, matchPasses)
}

func (s *Store) find(query string, passes []matchPass) (domain.CatalogRecord, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return domain.CatalogRecord{}, false
	}
	for _, pass := range passes {
		for _, r := range s.records {
			if pass(r, q) {
				return r, true
			}
		}
	}
	return domain.CatalogRecord{}, false
}

// minFuzzyText is the shortest message that takes part in the substring
// passes; shorter messages ("hi", "1") only match an exact id or name.
const minFuzzyText = 4

// FindInText resolves a record mentioned anywhere in a sentence. The whole
// text goes through the FindRecord passes first; failing that, each word is
// tried as an exact id so "precio de CHIDO" resolves CHIDO.
func (s *Store) FindInText(text string) (domain.CatalogRecord, bool) {
	passes := matchPasses
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minFuzzyText {
		passes = matchPasses[:exactPasses]
	}
	if r, ok := s.find(text, passes); ok {
		return r, true
	}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_'
	})
	for _, w := range words {
		if r, ok := s.Get(w); ok {
			return r, true
		}
	}
	return domain.CatalogRecord{}, false
}

type matchPass func(r domain.CatalogRecord, q string) bool

// exactPasses is the number of leading passes that compare whole values.
const exactPasses = 2

var matchPasses = []matchPass{
	func(r domain.CatalogRecord, q string) bool {
		return strings.ToLower(r.ID) == q
	},
	func(r domain.CatalogRecord, q string) bool {
		return strings.ToLower(r.Name) == q
	},
	func(r domain.CatalogRecord, q string) bool {
		name := strings.ToLower(r.Name)
		if name == "" {
			return false
		}
		return strings.Contains(name, q) || strings.Contains(q, name)
	},
	func(r domain.CatalogRecord, q string) bool {
		return strings.Contains(strings.ToLower(r.Description), q)
	},
	func(r domain.CatalogRecord, q string) bool {
		for _, a := range r.Attributes {
			if strings.Contains(strings.ToLower(a.TraitType), q) ||
				strings.Contains(strings.ToLower(a.ValueString()), q) {
				return true
			}
		}
		return false
	},
}
