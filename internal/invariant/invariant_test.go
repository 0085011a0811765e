package invariant

import (
	"testing"

	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckQuantityChange(t *testing.T) {
	assert.NoError(t, CheckQuantityChange(10, -10))
	assert.NoError(t, CheckQuantityChange(0, 5))
	assert.NoError(t, CheckQuantityChange(10, 0))

	err := CheckQuantityChange(10, -11)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeStock)

	assert.ErrorIs(t, CheckQuantityChange(0, -1), ErrNegativeStock)
}

func TestCheckReservation(t *testing.T) {
	// 10 on hand, 4 already reserved: 6 more is fine, 7 is not.
	assert.NoError(t, CheckReservation(10, 4, 6))
	assert.ErrorIs(t, CheckReservation(10, 4, 7), ErrInsufficientAvailable)
	assert.NoError(t, CheckReservation(10, 0, 10))
	assert.ErrorIs(t, CheckReservation(0, 0, 1), ErrInsufficientAvailable)
}

func TestCheckCategoryReference(t *testing.T) {
	known := []string{"Ferramentas", "Outros"}
	assert.NoError(t, CheckCategoryReference("Outros", known))
	assert.ErrorIs(t, CheckCategoryReference("Inexistente", known), ErrUnknownCategory)
	assert.ErrorIs(t, CheckCategoryReference("", known), ErrUnknownCategory)
}

func TestKitAvailability(t *testing.T) {
	bolt := uuid.New()
	plate := uuid.New()
	components := []model.KitComponent{
		{ItemID: bolt, QuantityPerKit: 4},
		{ItemID: plate, QuantityPerKit: 1},
	}

	available := map[uuid.UUID]int{bolt: 10, plate: 3}
	// 10/4 = 2 whole kits, plates allow 3: bolts bind.
	assert.Equal(t, 2, KitAvailability(components, available))

	available[bolt] = 12
	assert.Equal(t, 3, KitAvailability(components, available))

	available[plate] = 0
	assert.Equal(t, 0, KitAvailability(components, available))

	// Missing item means zero available, never a panic.
	assert.Equal(t, 0, KitAvailability(components, map[uuid.UUID]int{}))

	// Negative availability (over-reserved elsewhere) floors at zero.
	assert.Equal(t, 0, KitAvailability(components, map[uuid.UUID]int{bolt: -4, plate: 1}))

	assert.Equal(t, 0, KitAvailability(nil, available))
}
