package localstore

import (
	"strings"
	"sync"
)

type Preferences struct {
	AdminTab               string `json:"activeTab"`
	AdminSearchQuery       string `json:"adminSearchQuery"`
	ProductsFilterCategory string `json:"productsFilterCategory"`
	ProductsSortField      string `json:"productsSortField"`
	ProductsSortDirection  string `json:"productsSortDirection"`
	DraftText              string `json:"draftText"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		AdminTab:              "products",
		ProductsSortField:     "created_at",
		ProductsSortDirection: "desc",
	}
}

// PreferenceStore holds UI preferences and writes them through on every change.
type PreferenceStore struct {
	mu      sync.Mutex
	storage Storage
	prefs   Preferences
}

func NewPreferenceStore(s Storage) (*PreferenceStore, error) {
	prefs := DefaultPreferences()
	if _, err := LoadJSON(s, KeyPreferences, &prefs); err != nil {
		return nil, err
	}
	return &PreferenceStore{storage: s, prefs: prefs}, nil
}

func (p *PreferenceStore) Get() Preferences {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prefs
}

func (p *PreferenceStore) Update(fn func(*Preferences)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.prefs
	fn(&next)
	if d := strings.ToLower(next.ProductsSortDirection); d != "asc" && d != "desc" {
		next.ProductsSortDirection = "desc"
	}
	if err := SaveJSON(p.storage, KeyPreferences, next); err != nil {
		return err
	}
	p.prefs = next
	return nil
}

func (p *PreferenceStore) Reset() error {
	return p.Update(func(prefs *Preferences) { *prefs = DefaultPreferences() })
}
