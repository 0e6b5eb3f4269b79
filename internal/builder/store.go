// Package builder holds the in-progress PC build: one product per fixed slot.
package builder

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pcshop/internal/localstore"
	"github.com/Skotchmaster/pcshop/internal/models"
)

type Slot string

const (
	SlotCPU         Slot = "cpu"
	SlotMotherboard Slot = "motherboard"
	SlotGPU         Slot = "gpu"
	SlotRAM         Slot = "ram"
	SlotStorage     Slot = "storage"
	SlotPSU         Slot = "psu"
	SlotCase        Slot = "case"
	SlotCooling     Slot = "cooling"
)

// Slots in display order.
var Slots = []Slot{SlotCPU, SlotMotherboard, SlotGPU, SlotRAM, SlotStorage, SlotPSU, SlotCase, SlotCooling}

// SlotCategories maps a slot to the lower-cased category names whose products fit it.
var SlotCategories = map[Slot][]string{
	SlotCPU:         {"cpu", "processor", "processors"},
	SlotMotherboard: {"motherboard", "motherboards"},
	SlotGPU:         {"gpu", "graphics card", "graphics cards", "video card"},
	SlotRAM:         {"ram", "memory"},
	SlotStorage:     {"storage", "ssd", "hdd"},
	SlotPSU:         {"psu", "power supply", "power supplies"},
	SlotCase:        {"case", "cases"},
	SlotCooling:     {"cooling", "cpu cooler", "coolers"},
}

var ErrUnknownSlot = errors.New("unknown slot")

func ParseSlot(s string) (Slot, error) {
	for _, slot := range Slots {
		if string(slot) == s {
			return slot, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
}

type Store struct {
	mu         sync.Mutex
	storage    localstore.Storage
	components map[Slot]models.Product
}

type document struct {
	Components map[Slot]models.Product `json:"components"`
}

func New(s localstore.Storage) (*Store, error) {
	var doc document
	if _, err := localstore.LoadJSON(s, localstore.KeyBuilder, &doc); err != nil {
		return nil, err
	}
	components := make(map[Slot]models.Product, len(Slots))
	for slot, p := range doc.Components {
		if _, err := ParseSlot(string(slot)); err == nil {
			components[slot] = p
		}
	}
	return &Store{storage: s, components: components}, nil
}

func (s *Store) commit(next map[Slot]models.Product) error {
	if err := localstore.SaveJSON(s.storage, localstore.KeyBuilder, document{Components: next}); err != nil {
		return err
	}
	s.components = next
	return nil
}

func (s *Store) clone() map[Slot]models.Product {
	out := make(map[Slot]models.Product, len(s.components))
	for k, v := range s.components {
		out[k] = v
	}
	return out
}

// AddComponent puts the product in the slot, replacing any previous choice.
func (s *Store) AddComponent(slot Slot, p models.Product) error {
	if _, err := ParseSlot(string(slot)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.clone()
	next[slot] = p
	return s.commit(next)
}

func (s *Store) RemoveComponent(slot Slot) error {
	if _, err := ParseSlot(string(slot)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.clone()
	delete(next, slot)
	return s.commit(next)
}

func (s *Store) ClearBuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(map[Slot]models.Product{})
}

func (s *Store) Component(slot Slot) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.components[slot]
	return p, ok
}

// Components returns the chosen products in slot order.
func (s *Store) Components() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, 0, len(s.components))
	for _, slot := range Slots {
		if p, ok := s.components[slot]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) BuildTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, p := range s.components {
		total = total.Add(p.Price)
	}
	return total
}

func (s *Store) ComponentsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.components)
}

func (s *Store) IsComplete() bool {
	return s.ComponentsCount() == len(Slots)
}

// Missing lists the empty slots in order.
func (s *Store) Missing() []Slot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Slot
	for _, slot := range Slots {
		if _, ok := s.components[slot]; !ok {
			out = append(out, slot)
		}
	}
	return out
}
