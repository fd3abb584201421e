// Package lexicon holds the versioned keyword tables used to read user
// messages: product types, locations, sort phrases, intent keywords and
// price units. Tables are YAML; a built-in copy is embedded in the binary.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/pkg/utils"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Entry maps alias phrases to one canonical value.
type Entry struct {
	Value   string   `yaml:"value"`
	Phrases []string `yaml:"phrases"`
}

// SortEntry maps phrases to a sort intent.
type SortEntry struct {
	Type    models.Intent `yaml:"type"`
	Phrases []string      `yaml:"phrases"`
}

// Tables is the on-disk form of the lexicon.
type Tables struct {
	Version           int                `yaml:"version"`
	ProductTypes      []Entry            `yaml:"product_types"`
	Cities            []Entry            `yaml:"cities"`
	Districts         []Entry            `yaml:"districts"`
	SortPhrases       []SortEntry        `yaml:"sort_phrases"`
	BestKeywords      []string           `yaml:"best_keywords"`
	RecommendKeywords []string           `yaml:"recommend_keywords"`
	SearchKeywords    []string           `yaml:"search_keywords"`
	QuantityUnits     []string           `yaml:"quantity_units"`
	PriceUnits        map[string]float64 `yaml:"price_units"`
	MeasureUnits      []string           `yaml:"measure_units"`
	FillerPhrases     []string           `yaml:"filler_phrases"`
}

// Validate checks that every entry is usable.
func (t *Tables) Validate() error {
	check := func(kind string, entries []Entry) error {
		for i, e := range entries {
			if strings.TrimSpace(e.Value) == "" {
				return fmt.Errorf("%s[%d]: empty value", kind, i)
			}
			if len(e.Phrases) == 0 {
				return fmt.Errorf("%s[%d] %q: no phrases", kind, i, e.Value)
			}
		}
		return nil
	}
	if err := check("product_types", t.ProductTypes); err != nil {
		return err
	}
	if err := check("cities", t.Cities); err != nil {
		return err
	}
	if err := check("districts", t.Districts); err != nil {
		return err
	}
	for i, s := range t.SortPhrases {
		if !s.Type.IsSort() {
			return fmt.Errorf("sort_phrases[%d]: unknown sort type %q", i, s.Type)
		}
		if len(s.Phrases) == 0 {
			return fmt.Errorf("sort_phrases[%d] %q: no phrases", i, s.Type)
		}
	}
	for unit, mult := range t.PriceUnits {
		if mult <= 0 {
			return fmt.Errorf("price_units[%q]: multiplier must be positive", unit)
		}
	}
	for i, unit := range t.MeasureUnits {
		if _, ok := t.PriceUnits[unit]; ok {
			return fmt.Errorf("measure_units[%d]: %q is also a price unit", i, unit)
		}
	}
	return nil
}

// Parse decodes and compiles YAML tables.
func Parse(data []byte) (*Lexicon, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lexicon: %w", err)
	}
	return compile(&t), nil
}

// Load reads tables from path.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in tables.
func Default() *Lexicon {
	lx, err := Parse(defaultTables)
	if err != nil {
		panic(err)
	}
	return lx
}

type phrase struct {
	text   string
	folded string
}

func newPhrase(s string) phrase {
	n := utils.NormalizeText(s)
	return phrase{text: n, folded: utils.FoldDiacritics(n)}
}

func newPhrases(ss []string) []phrase {
	out := make([]phrase, 0, len(ss))
	for _, s := range ss {
		if p := newPhrase(s); p.text != "" {
			out = append(out, p)
		}
	}
	return out
}

type entry struct {
	value   string
	phrases []phrase
}

type sortEntry struct {
	typ     models.Intent
	phrases []phrase
}

// Lexicon is the compiled, read-only form of Tables. It is safe for
// concurrent use.
type Lexicon struct {
	version      int
	productTypes []entry
	cities       []entry
	districts    []entry
	sorts        []sortEntry
	best         []phrase
	recommend    []phrase
	search       []phrase
	quantity     []phrase
	priceUnits   map[string]float64
	measureUnits map[string]bool
	filler       []phrase
}

func compile(t *Tables) *Lexicon {
	entries := func(es []Entry) []entry {
		out := make([]entry, 0, len(es))
		for _, e := range es {
			out = append(out, entry{value: strings.TrimSpace(e.Value), phrases: newPhrases(e.Phrases)})
		}
		return out
	}
	lx := &Lexicon{
		version:      t.Version,
		productTypes: entries(t.ProductTypes),
		cities:       entries(t.Cities),
		districts:    entries(t.Districts),
		best:         newPhrases(t.BestKeywords),
		recommend:    newPhrases(t.RecommendKeywords),
		search:       newPhrases(t.SearchKeywords),
		quantity:     newPhrases(t.QuantityUnits),
		priceUnits:   make(map[string]float64, len(t.PriceUnits)*2),
		measureUnits: make(map[string]bool, len(t.MeasureUnits)),
		filler:       newPhrases(t.FillerPhrases),
	}
	for _, s := range t.SortPhrases {
		lx.sorts = append(lx.sorts, sortEntry{typ: s.Type, phrases: newPhrases(s.Phrases)})
	}
	for unit, mult := range t.PriceUnits {
		n := utils.NormalizeText(unit)
		lx.priceUnits[n] = mult
		if f := utils.FoldDiacritics(n); f != n {
			if _, ok := lx.priceUnits[f]; !ok {
				lx.priceUnits[f] = mult
			}
		}
	}
	// Measure units are not folded: "chỗ" would collide with "cho".
	for _, unit := range t.MeasureUnits {
		lx.measureUnits[utils.NormalizeText(unit)] = true
	}
	return lx
}

// Version returns the tables version.
func (lx *Lexicon) Version() int { return lx.version }

// Text is a message prepared for phrase matching.
type Text struct {
	Norm string
	// Plain is true when the message was typed without diacritics; phrases are
	// then compared in folded form.
	Plain bool
}

// NewText normalizes raw for matching.
func NewText(raw string) Text {
	n := utils.NormalizeText(raw)
	return Text{Norm: n, Plain: !utils.HasDiacritics(n)}
}

func (t Text) has(p phrase) bool {
	if t.Plain {
		return utils.ContainsPhrase(t.Norm, p.folded)
	}
	return utils.ContainsPhrase(t.Norm, p.text)
}

func (t Text) hasAny(ps []phrase) bool {
	for _, p := range ps {
		if t.has(p) {
			return true
		}
	}
	return false
}

func firstEntry(t Text, es []entry) (string, bool) {
	for _, e := range es {
		if t.hasAny(e.phrases) {
			return e.value, true
		}
	}
	return "", false
}

// ProductType returns the canonical product type of the first matching entry.
func (lx *Lexicon) ProductType(t Text) (string, bool) { return firstEntry(t, lx.productTypes) }

// City returns the canonical city of the first matching entry.
func (lx *Lexicon) City(t Text) (string, bool) { return firstEntry(t, lx.cities) }

// District returns the canonical district of the first matching entry.
func (lx *Lexicon) District(t Text) (string, bool) { return firstEntry(t, lx.districts) }

// SortIntent returns the first sort type, in table order, with a matching phrase.
func (lx *Lexicon) SortIntent(t Text) (models.Intent, bool) {
	for _, s := range lx.sorts {
		if t.hasAny(s.phrases) {
			return s.typ, true
		}
	}
	return "", false
}

// HasBest reports whether t contains a best-intent keyword.
func (lx *Lexicon) HasBest(t Text) bool { return t.hasAny(lx.best) }

// HasRecommend reports whether t contains a recommend-intent keyword.
func (lx *Lexicon) HasRecommend(t Text) bool { return t.hasAny(lx.recommend) }

// HasSearch reports whether t contains a search-intent keyword.
func (lx *Lexicon) HasSearch(t Text) bool { return t.hasAny(lx.search) }

// IsFiller reports whether t contains a filler phrase.
func (lx *Lexicon) IsFiller(t Text) bool { return t.hasAny(lx.filler) }

// QuantityUnits returns the quantity unit words in the form that matches t,
// longest first.
func (lx *Lexicon) QuantityUnits(t Text) []string {
	out := make([]string, 0, len(lx.quantity))
	for _, p := range lx.quantity {
		if t.Plain {
			out = append(out, p.folded)
		} else {
			out = append(out, p.text)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// PriceMultiplier returns the multiplier for a price unit word.
func (lx *Lexicon) PriceMultiplier(unit string) (float64, bool) {
	m, ok := lx.priceUnits[utils.NormalizeText(unit)]
	return m, ok
}

// IsMeasureUnit reports whether word is a non-price unit such as "gb" or
// "inch". A number carrying one is never a price.
func (lx *Lexicon) IsMeasureUnit(word string) bool {
	return lx.measureUnits[utils.NormalizeText(word)]
}
