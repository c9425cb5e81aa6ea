package graph

import (
	"errors"
	"reflect"
	"testing"
)

func TestCreatorRegistry_Register(t *testing.T) {
	registry := NewCreatorRegistry()
	factory := func(opts Options) Creator { return NewBeltsCreator(opts) }

	if err := registry.Register("first", factory); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !registry.IsRegistered("first") {
		t.Error("Expected 'first' to be registered")
	}
}

func TestCreatorRegistry_Register_Errors(t *testing.T) {
	registry := NewCreatorRegistry()
	factory := func(opts Options) Creator { return NewBeltsCreator(opts) }

	if err := registry.Register("", factory); err == nil {
		t.Error("Expected error for empty name, got nil")
	}
	if err := registry.Register("belts", nil); err == nil {
		t.Error("Expected error for nil factory, got nil")
	}

	if err := registry.Register("dup", factory); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := registry.Register("dup", factory); err == nil {
		t.Error("Expected error for duplicate registration, got nil")
	}
}

func TestCreatorRegistry_Create_Unknown(t *testing.T) {
	registry := NewCreatorRegistry()

	_, err := registry.Create("resonance", Options{})
	if !errors.Is(err, ErrUnknownMacroType) {
		t.Errorf("Expected ErrUnknownMacroType, got %v", err)
	}
}

func TestCreatorRegistry_Names_Sorted(t *testing.T) {
	registry := NewCreatorRegistry()
	factory := func(opts Options) Creator { return NewBeltsCreator(opts) }

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(name, factory); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	expected := []string{"alpha", "mid", "zeta"}
	if names := registry.Names(); !reflect.DeepEqual(names, expected) {
		t.Errorf("Expected %v, got %v", expected, names)
	}
}

func TestDefaultRegistry_AllMacroTypesRegistered(t *testing.T) {
	expected := []string{"axes_map", "belts", "shaper", "static", "vibrations"}

	if names := DefaultRegistry.Names(); !reflect.DeepEqual(names, expected) {
		t.Errorf("Expected macro types %v, got %v", expected, names)
	}
}

func TestDefaultRegistry_CreateEachMacroType(t *testing.T) {
	for _, name := range DefaultRegistry.Names() {
		t.Run(name, func(t *testing.T) {
			creator, err := DefaultRegistry.Create(name, DefaultOptions())
			if err != nil {
				t.Fatalf("Failed to create creator via registry: %v", err)
			}
			if creator.Name() != name {
				t.Errorf("Expected name '%s', got '%s'", name, creator.Name())
			}
		})
	}
}
