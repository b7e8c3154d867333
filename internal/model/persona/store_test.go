package persona

import "testing"

func TestResolveKnownPersona(t *testing.T) {
	store := NewMemoryStore(Seed())

	p, ok := Resolve(store, "Augustine")
	if !ok {
		t.Fatal("expected Augustine to be found")
	}
	if p.Name != "Augustine" {
		t.Fatalf("unexpected name %q", p.Name)
	}
}

func TestResolveEmptyUsesDefault(t *testing.T) {
	store := NewMemoryStore(Seed())

	p, ok := Resolve(store, "")
	if !ok || p.ID != DefaultID {
		t.Fatalf("expected default persona, got %+v (found=%v)", p, ok)
	}
}

func TestResolveUnknownPersona(t *testing.T) {
	store := NewMemoryStore(Seed())

	p, ok := Resolve(store, "augustine")
	if ok {
		t.Fatal("lookup must be exact-match")
	}
	if p.ID != "augustine" || p.Name != "augustine" {
		t.Fatalf("unexpected fallback persona %+v", p)
	}
}

func TestListReturnsCopy(t *testing.T) {
	store := NewMemoryStore(Seed())
	list := store.List()
	list[0].Name = "changed"

	if store.List()[0].Name == "changed" {
		t.Fatal("List must not expose internal slice")
	}
}
