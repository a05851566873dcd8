// Package location resolves free-text locations into regional cost and
// market factors. Unresolvable text never fails; it resolves to 1.0.
package location

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"building-cost/internal/errors"
	"building-cost/internal/logging"
)

//go:embed data/regions.yaml
var embeddedRegions []byte

// DefaultCacheSize bounds the memoised resolutions when no size is configured
const DefaultCacheSize = 512

// Dataset is the regional factor table
type Dataset struct {
	States []StateEntry `yaml:"states"`
}

// StateEntry is one state with its city overrides
type StateEntry struct {
	Code           string      `yaml:"code"`
	Name           string      `yaml:"name"`
	CostMultiplier float64     `yaml:"cost_multiplier"`
	MarketFactor   float64     `yaml:"market_factor"`
	Cities         []CityEntry `yaml:"cities"`
}

// CityEntry overrides the state factors for one city
type CityEntry struct {
	Name           string  `yaml:"name"`
	CostMultiplier float64 `yaml:"cost_multiplier"`
	MarketFactor   float64 `yaml:"market_factor,omitempty"`
}

// Source says which table row produced a resolution
type Source string

const (
	SourceCity    Source = "city"
	SourceState   Source = "state"
	SourceDefault Source = "default"
)

// Resolution is the outcome of resolving a location string
type Resolution struct {
	Input          string  `json:"input"`
	City           string  `json:"city,omitempty"`
	State          string  `json:"state,omitempty"`
	StateName      string  `json:"state_name,omitempty"`
	CostMultiplier float64 `json:"multiplier"`
	MarketFactor   float64 `json:"market_factor"`
	Matched        bool    `json:"matched"`
	Source         Source  `json:"source"`
}

// Display returns "City, ST", "ST" or the raw input
func (r Resolution) Display() string {
	switch {
	case r.City != "" && r.State != "":
		return r.City + ", " + r.State
	case r.State != "":
		return r.StateName
	default:
		return r.Input
	}
}

type state struct {
	entry  StateEntry
	cities map[string]CityEntry
}

// Resolver parses location text and looks up regional factors.
// It is safe for concurrent use.
type Resolver struct {
	states    map[string]*state   // by code
	names     map[string]string   // lower-case name -> code
	cityIndex map[string][]string // lower-case city -> codes
	cache     *lru.Cache[string, Resolution]
	logger    *zap.Logger
}

// ParseDataset decodes a YAML regions document
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, errors.Parsing("regions dataset", err)
	}
	if len(ds.States) == 0 {
		return nil, errors.New(errors.TypeConfig, "regions dataset has no states")
	}
	return &ds, nil
}

// LoadFile reads a regions dataset from disk
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config(fmt.Sprintf("reading regions file %s", path), err)
	}
	return ParseDataset(data)
}

// DefaultDataset returns the embedded regions dataset
func DefaultDataset() (*Dataset, error) {
	return ParseDataset(embeddedRegions)
}

// NewResolver indexes a dataset. cacheSize <= 0 uses DefaultCacheSize.
func NewResolver(ds *Dataset, cacheSize int) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, Resolution](cacheSize)
	if err != nil {
		return nil, errors.Internal("creating location cache", err)
	}

	r := &Resolver{
		states:    make(map[string]*state, len(ds.States)),
		names:     make(map[string]string, len(ds.States)),
		cityIndex: make(map[string][]string),
		cache:     cache,
		logger:    logging.Named("location"),
	}
	for _, e := range ds.States {
		code := strings.ToUpper(strings.TrimSpace(e.Code))
		if code == "" || e.CostMultiplier <= 0 {
			return nil, errors.Newf(errors.TypeConfig, "invalid region entry %q", e.Name)
		}
		if e.MarketFactor <= 0 {
			e.MarketFactor = 1.0
		}
		st := &state{entry: e, cities: make(map[string]CityEntry, len(e.Cities))}
		for _, c := range e.Cities {
			key := cityKey(c.Name)
			st.cities[key] = c
			r.cityIndex[key] = append(r.cityIndex[key], code)
		}
		r.states[code] = st
		r.names[strings.ToLower(e.Name)] = code
	}
	return r, nil
}

// NewDefaultResolver builds a resolver over the embedded dataset
func NewDefaultResolver(cacheSize int) (*Resolver, error) {
	ds, err := DefaultDataset()
	if err != nil {
		return nil, err
	}
	return NewResolver(ds, cacheSize)
}

// Resolve maps free text to regional factors. Accepted forms are
// "City, ST", "City, State Name", "City ST", a bare state, or a bare city
// that exists in exactly one state.
func (r *Resolver) Resolve(text string) Resolution {
	key := normalize(text)
	if res, ok := r.cache.Get(key); ok {
		res.Input = text
		return res
	}

	res := r.resolve(key)
	res.Input = text
	r.cache.Add(key, res)

	r.logger.Debug("resolved location",
		zap.String("input", text),
		zap.String("source", string(res.Source)),
		zap.Float64("multiplier", res.CostMultiplier))
	return res
}

// CacheLen reports how many resolutions are memoised
func (r *Resolver) CacheLen() int {
	return r.cache.Len()
}

func (r *Resolver) resolve(key string) Resolution {
	if key == "" {
		return unresolved()
	}

	if i := strings.LastIndex(key, ","); i >= 0 {
		city := strings.TrimSpace(key[:i])
		if code, ok := r.stateCode(strings.TrimSpace(key[i+1:])); ok {
			return r.forState(code, city)
		}
		// "City, Something" with an unknown state part: try the city alone
		return r.bareCity(city)
	}

	if code, ok := r.stateCode(key); ok {
		return r.forState(code, "")
	}

	// "City ST" or "City State Name": try progressively longer suffixes
	words := strings.Fields(key)
	for n := 1; n <= 3 && n < len(words); n++ {
		suffix := strings.Join(words[len(words)-n:], " ")
		if code, ok := r.stateCode(suffix); ok {
			return r.forState(code, strings.Join(words[:len(words)-n], " "))
		}
	}

	return r.bareCity(key)
}

func (r *Resolver) stateCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 2 {
		code := strings.ToUpper(s)
		if _, ok := r.states[code]; ok {
			return code, true
		}
	}
	code, ok := r.names[s]
	return code, ok
}

func (r *Resolver) forState(code, city string) Resolution {
	st := r.states[code]
	res := Resolution{
		State:          code,
		StateName:      st.entry.Name,
		CostMultiplier: st.entry.CostMultiplier,
		MarketFactor:   st.entry.MarketFactor,
		Matched:        true,
		Source:         SourceState,
	}
	if city == "" {
		return res
	}
	if c, ok := st.cities[cityKey(city)]; ok {
		res.City = c.Name
		res.CostMultiplier = c.CostMultiplier
		if c.MarketFactor > 0 {
			res.MarketFactor = c.MarketFactor
		}
		res.Source = SourceCity
		return res
	}
	res.City = titleCase(city)
	return res
}

func (r *Resolver) bareCity(city string) Resolution {
	codes := r.cityIndex[cityKey(city)]
	if len(codes) != 1 {
		return unresolved()
	}
	return r.forState(codes[0], city)
}

func unresolved() Resolution {
	return Resolution{CostMultiplier: 1.0, MarketFactor: 1.0, Matched: false, Source: SourceDefault}
}

var countrySuffixes = []string{", united states", ", usa", ", us", " usa"}

func normalize(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	for _, suffix := range countrySuffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	return strings.TrimSpace(s)
}

func cityKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "saint ", "st ")
	return strings.Join(strings.Fields(s), " ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
