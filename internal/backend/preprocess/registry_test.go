package preprocess

import "testing"

func TestNewCommandRegistry(t *testing.T) {
	registry := NewCommandRegistry()
	if registry == nil {
		t.Fatal("Expected non-nil registry")
	}
	if len(registry.GetRegisteredNames()) != 0 {
		t.Fatal("Expected empty registry")
	}
}

func TestCommandRegistry_Register(t *testing.T) {
	registry := NewCommandRegistry()

	if err := registry.Register("Upper", NewUppercaseCommand); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := registry.Register("Upper", NewUppercaseCommand); err == nil {
		t.Error("Expected error for duplicate registration")
	}
	if err := registry.Register("", NewUppercaseCommand); err == nil {
		t.Error("Expected error for empty name")
	}
	if err := registry.Register("NilFactory", nil); err == nil {
		t.Error("Expected error for nil factory")
	}
}

func TestCommandRegistry_Create(t *testing.T) {
	command, err := DefaultRegistry.Create(MaskLowComplexityName, map[string]any{"minRun": 5})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	mask, ok := command.(*MaskLowComplexityCommand)
	if !ok {
		t.Fatalf("Expected *MaskLowComplexityCommand, got %T", command)
	}
	if mask.MinRun() != 5 {
		t.Errorf("MinRun() = %d, want 5", mask.MinRun())
	}

	if _, err := DefaultRegistry.Create("Unknown", nil); err == nil {
		t.Error("Expected error for unknown command")
	}
	if _, err := DefaultRegistry.Create(MaskLowComplexityName, map[string]any{"minRun": 0}); err == nil {
		t.Error("Expected error for invalid params")
	}
}

func TestDefaultRegistry_Names(t *testing.T) {
	names := DefaultRegistry.GetRegisteredNames()
	expected := []string{JoinLinesName, MaskLowComplexityName, StripFastaHeadersName, UppercaseName}
	if len(names) != len(expected) {
		t.Fatalf("names = %v, want %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], expected[i])
		}
		if !DefaultRegistry.IsRegistered(expected[i]) {
			t.Errorf("%q not registered", expected[i])
		}
	}
}
