package builder

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pcshop/internal/localstore"
	"github.com/Skotchmaster/pcshop/internal/models"
)

func part(name string, price int64) models.Product {
	return models.Product{ID: uuid.New(), Name: name, Price: decimal.NewFromInt(price), ImageURL: name + ".png"}
}

func fill(t *testing.T, s *Store, slots []Slot) {
	t.Helper()
	for i, slot := range slots {
		require.NoError(t, s.AddComponent(slot, part(string(slot), int64(100*(i+1)))))
	}
}

func TestIsComplete_EightVersusSeven(t *testing.T) {
	s, err := New(localstore.NewMemory())
	require.NoError(t, err)

	fill(t, s, Slots[:7])
	assert.Equal(t, 7, s.ComponentsCount())
	assert.False(t, s.IsComplete())
	assert.Equal(t, []Slot{SlotCooling}, s.Missing())

	require.NoError(t, s.AddComponent(SlotCooling, part("cooler", 50)))
	assert.Equal(t, 8, s.ComponentsCount())
	assert.True(t, s.IsComplete())
	assert.Empty(t, s.Missing())
}

func TestAddComponent_ReplacesSlot(t *testing.T) {
	s, err := New(localstore.NewMemory())
	require.NoError(t, err)

	require.NoError(t, s.AddComponent(SlotGPU, part("old", 300)))
	require.NoError(t, s.AddComponent(SlotGPU, part("new", 700)))

	assert.Equal(t, 1, s.ComponentsCount())
	p, ok := s.Component(SlotGPU)
	require.True(t, ok)
	assert.Equal(t, "new", p.Name)
	assert.True(t, decimal.NewFromInt(700).Equal(s.BuildTotal()))
}

func TestUnknownSlot(t *testing.T) {
	s, err := New(localstore.NewMemory())
	require.NoError(t, err)

	assert.ErrorIs(t, s.AddComponent("monitor", part("m", 1)), ErrUnknownSlot)
	assert.ErrorIs(t, s.RemoveComponent("monitor"), ErrUnknownSlot)
}

func TestComponents_SlotOrderAndTotal(t *testing.T) {
	s, err := New(localstore.NewMemory())
	require.NoError(t, err)

	require.NoError(t, s.AddComponent(SlotCase, part("case", 80)))
	require.NoError(t, s.AddComponent(SlotCPU, part("cpu", 320)))
	require.NoError(t, s.AddComponent(SlotRAM, part("ram", 100)))

	got := s.Components()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"cpu", "ram", "case"}, []string{got[0].Name, got[1].Name, got[2].Name})
	assert.True(t, decimal.NewFromInt(500).Equal(s.BuildTotal()))

	require.NoError(t, s.RemoveComponent(SlotRAM))
	assert.True(t, decimal.NewFromInt(400).Equal(s.BuildTotal()))
}

func TestPersistence_RoundTrip(t *testing.T) {
	storage := localstore.NewMemory()
	s, err := New(storage)
	require.NoError(t, err)
	fill(t, s, Slots)

	reloaded, err := New(storage)
	require.NoError(t, err)
	assert.True(t, reloaded.IsComplete())
	assert.True(t, s.BuildTotal().Equal(reloaded.BuildTotal()))

	require.NoError(t, reloaded.ClearBuild())
	again, err := New(storage)
	require.NoError(t, err)
	assert.Zero(t, again.ComponentsCount())
}
