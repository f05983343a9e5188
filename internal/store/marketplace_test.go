package store

import (
	"context"
	"testing"

	"github.com/ecocycle/connect/types"
)

func TestMaterialWhere_EscapesLikeWildcards(t *testing.T) {
	w := materialWhere(MaterialFilter{Status: types.MaterialAvailable, LocationContains: `50%_off\`})

	want := ` WHERE m.status = $1 AND m.location ILIKE '%' || $2 || '%' ESCAPE '\'`
	if got := w.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if len(w.args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(w.args))
	}
	if got := w.args[1]; got != `50\%\_off\\` {
		t.Fatalf("unexpected escaped location %q", got)
	}
}

func TestMemory_LocationFilterIsLiteral(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, location := range []string{"Pune, Maharashtra", "Block_7%, Pune"} {
		if _, err := m.AddMaterial(ctx, types.Material{Name: "Scrap", Location: location, Status: types.MaterialAvailable, OwnerID: "o1"}); err != nil {
			t.Fatalf("add material: %v", err)
		}
	}

	count, err := m.CountMaterials(ctx, MaterialFilter{LocationContains: "_7%"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 literal match, got %d", count)
	}
}
