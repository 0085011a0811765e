package snapshot

import (
	"encoding/json"
	"testing"

	"go-almoxarifado/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRewriting(t *testing.T) {
	assert.Equal(t, "reorderPoint", camelKey("reorder_point"))
	assert.Equal(t, "reorder_point", snakeKey("reorderPoint"))
	assert.Equal(t, "name", camelKey("name"))
	assert.Equal(t, "name", snakeKey("name"))

	// The one irregular pair: po_number would mechanically become pONumber.
	assert.Equal(t, "poNumber", camelKey("po_number"))
	assert.Equal(t, "po_number", snakeKey("poNumber"))
}

func TestMarshalWireUsesCamelCase(t *testing.T) {
	snap := &Snapshot{
		Items:          []model.Item{{Name: "Parafuso", Category: "Outros", ReorderPoint: 5}},
		PurchaseOrders: []model.PurchaseOrder{{PONumber: "PO-20260831-abc"}},
	}
	data, err := MarshalWire(snap)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	items, ok := doc["items"].([]any)
	require.True(t, ok)
	item := items[0].(map[string]any)
	assert.Contains(t, item, "reorderPoint")
	assert.NotContains(t, item, "reorder_point")

	orders := doc["purchaseOrders"].([]any)
	order := orders[0].(map[string]any)
	assert.Equal(t, "PO-20260831-abc", order["poNumber"])
	assert.NotContains(t, order, "po_number")
}

func TestWireRoundTrip(t *testing.T) {
	snap := &Snapshot{
		Items: []model.Item{{
			Name:         "Parafuso M6",
			Category:     "Fixação",
			Quantity:     42,
			ReorderPoint: 10,
			Price:        150,
		}},
		Categories: []string{"Fixação", "Outros"},
		PurchaseOrders: []model.PurchaseOrder{{
			PONumber: "PO-20260831-9f8a3c1d",
			Status:   model.POStatusDraft,
		}},
		Movements: []model.Movement{{
			Type:     model.MovementIn,
			Quantity: 42,
			Balance:  42,
		}},
	}
	snap.Items[0].EnsureBase()
	snap.PurchaseOrders[0].EnsureBase()
	snap.Movements[0].ItemID = snap.Items[0].ID
	snap.Movements[0].EnsureBase()

	data, err := MarshalWire(snap)
	require.NoError(t, err)

	decoded, err := UnmarshalWire(data)
	require.NoError(t, err)

	require.Len(t, decoded.Items, 1)
	assert.Equal(t, snap.Items[0].ID, decoded.Items[0].ID)
	assert.Equal(t, snap.Items[0].Name, decoded.Items[0].Name)
	assert.Equal(t, snap.Items[0].Quantity, decoded.Items[0].Quantity)
	assert.Equal(t, snap.Items[0].ReorderPoint, decoded.Items[0].ReorderPoint)
	assert.Equal(t, snap.Categories, decoded.Categories)
	require.Len(t, decoded.PurchaseOrders, 1)
	assert.Equal(t, "PO-20260831-9f8a3c1d", decoded.PurchaseOrders[0].PONumber)
	require.Len(t, decoded.Movements, 1)
	assert.Equal(t, snap.Items[0].ID, decoded.Movements[0].ItemID)
	assert.Equal(t, 42, decoded.Movements[0].Balance)
}

func TestTableOrdersMirrorEachOther(t *testing.T) {
	// Every insertable table is deleted, and inserts run in reverse
	// dependency order of the deletes.
	deleted := map[string]bool{}
	for _, table := range DeleteOrder {
		deleted[table] = true
	}
	for _, table := range InsertOrder {
		assert.True(t, deleted[table], "insert table %q missing from delete order", table)
	}

	// Count sessions are cleared on import but never restored.
	assert.True(t, deleted["count_sessions"])
	assert.NotContains(t, InsertOrder, "count_sessions")

	// Movements go first on delete, last on insert.
	assert.Equal(t, "movements", DeleteOrder[0])
	assert.Equal(t, "movements", InsertOrder[len(InsertOrder)-1])
	assert.Equal(t, "categories", InsertOrder[0])
}
