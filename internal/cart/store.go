// Package cart is the client-side shopping cart: an explicit state container
// whose contents are written through to local storage on every change.
package cart

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pcshop/internal/localstore"
	"github.com/Skotchmaster/pcshop/internal/models"
)

var (
	ErrInvalidItem     = errors.New("invalid cart item")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNotInCart       = errors.New("item not in cart")
)

const DefaultBuildImage = "https://images.pexels.com/photos/2582937/pexels-photo-2582937.jpeg"

// Line is one cart entry. A build line has IsBuild set, BuildID equal to ID and carries its components.
type Line struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Price      decimal.Decimal  `json:"price"`
	ImageURL   string           `json:"image_url"`
	Quantity   int              `json:"quantity"`
	IsBuild    bool             `json:"isBuild,omitempty"`
	BuildID    string           `json:"build_id,omitempty"`
	Components []models.Product `json:"components,omitempty"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Item struct {
	ID         string
	Name       string
	Price      decimal.Decimal
	ImageURL   string
	IsBuild    bool
	Components []models.Product
}

func FromProduct(p models.Product) Item {
	return Item{
		ID:       p.ID.String(),
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
}

func (it Item) validate() error {
	var missing []string
	if strings.TrimSpace(it.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(it.Name) == "" {
		missing = append(missing, "name")
	}
	if !it.Price.IsPositive() {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(it.ImageURL) == "" {
		missing = append(missing, "image_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidItem, strings.Join(missing, ", "))
	}
	return nil
}

type document struct {
	Items []Line `json:"items"`
}

type Store struct {
	mu      sync.Mutex
	storage localstore.Storage
	lines   []Line

	Logger *slog.Logger
}

// New returns a store rehydrated from storage.
func New(s localstore.Storage) (*Store, error) {
	var doc document
	if _, err := localstore.LoadJSON(s, localstore.KeyCart, &doc); err != nil {
		return nil, err
	}
	return &Store{storage: s, lines: doc.Items, Logger: slog.Default()}, nil
}

func (s *Store) commit(next []Line) error {
	if err := localstore.SaveJSON(s.storage, localstore.KeyCart, document{Items: next}); err != nil {
		return err
	}
	s.lines = next
	return nil
}

func (s *Store) clone() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// AddItem merges into the line with the same id and kind, or appends a new one.
// Invalid items are logged and rejected without touching the cart. A quantity below 1 counts as 1.
func (s *Store) AddItem(item Item, quantity int) error {
	if err := item.validate(); err != nil {
		s.Logger.Warn("cart_add_rejected", "id", item.ID, "error", err)
		return err
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.clone()
	for i := range next {
		if next[i].ID == item.ID && next[i].IsBuild == item.IsBuild {
			next[i].Quantity += quantity
			return s.commit(next)
		}
	}

	line := Line{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		ImageURL: item.ImageURL,
		Quantity: quantity,
		IsBuild:  item.IsBuild,
	}
	if item.IsBuild {
		line.BuildID = item.ID
		line.Components = append([]models.Product(nil), item.Components...)
	}
	return s.commit(append(next, line))
}

// RemoveItem drops every line with the id, whatever its kind.
func (s *Store) RemoveItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		if l.ID != id {
			next = append(next, l)
		}
	}
	if len(next) == len(s.lines) {
		return ErrNotInCart
	}
	return s.commit(next)
}

func (s *Store) UpdateQuantity(id string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.clone()
	found := false
	for i := range next {
		if next[i].ID == id {
			next[i].Quantity = quantity
			found = true
		}
	}
	if !found {
		return ErrNotInCart
	}
	return s.commit(next)
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(nil)
}

func (s *Store) Items() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clone()
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}
