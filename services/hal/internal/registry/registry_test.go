package registry

import "testing"

type dummyBuilder struct{}

func (dummyBuilder) Build(in BuildInput) (BuildOutput, error) { return BuildOutput{}, nil }

func TestRegisterAndLookup(t *testing.T) {
	const typ = "test_dummy_builder"
	if _, ok := Lookup(typ); ok {
		t.Skip("builder already registered by earlier test run")
	}
	RegisterBuilder(typ, dummyBuilder{})
	if _, ok := Lookup(typ); !ok {
		t.Fatalf("lookup failed for %q", typ)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	const typ = "test_duplicate_builder"
	if _, ok := Lookup(typ); !ok {
		RegisterBuilder(typ, dummyBuilder{})
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	RegisterBuilder(typ, dummyBuilder{})
}

type idBuilder struct{}

func (idBuilder) Build(in BuildInput) (BuildOutput, error) {
	return BuildOutput{BusID: in.BusRefID}, nil
}

func TestBuildDispatchesByType(t *testing.T) {
	const typ = "test_build_dispatch"
	if _, ok := Lookup(typ); !ok {
		RegisterBuilder(typ, idBuilder{})
	}
	out, err := Build(BuildInput{Type: typ, BusRefID: "i2c1"})
	if err != nil || out.BusID != "i2c1" {
		t.Fatalf("build = %+v, %v", out, err)
	}
	if _, err := Build(BuildInput{Type: "test_no_such_builder"}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
