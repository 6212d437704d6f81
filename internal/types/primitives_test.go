package types

import "testing"

func TestComplexArithmetic(t *testing.T) {
	a := Complex{Re: 1, Im: 2}
	b := Complex{Re: 3, Im: -1}

	if got := a.Add(b); !got.Equal(Complex{Re: 4, Im: 1}) {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Sub(b); !got.Equal(Complex{Re: -2, Im: 3}) {
		t.Errorf("Sub: got %v", got)
	}
	if got := a.Mul(b); !got.Equal(Complex{Re: 5, Im: 5}) {
		t.Errorf("Mul: got %v", got)
	}
	if got, ok := a.Div(Complex{}); ok {
		t.Errorf("Div by zero should fail, got %v", got)
	}
	if got := a.Conj(); !got.Equal(Complex{Re: 1, Im: -2}) {
		t.Errorf("Conj: got %v", got)
	}
}

func TestVersionCompareAndParse(t *testing.T) {
	v12, err := ParseVersion("1.2")
	if err != nil {
		t.Fatalf("ParseVersion(1.2): %v", err)
	}
	v1, err := ParseVersion("1")
	if err != nil {
		t.Fatalf("ParseVersion(1): %v", err)
	}
	if v1.Compare(NewVersion(1, 0)) != 0 {
		t.Errorf("expected 1 == 1.0, got %d", v1.Compare(NewVersion(1, 0)))
	}
	if v1.Compare(v12) >= 0 {
		t.Errorf("expected 1 < 1.2")
	}
	if !v1.LessEq(v12) {
		t.Errorf("expected 1 <= 1.2")
	}
	if _, err := ParseVersion("x.y"); err == nil {
		t.Errorf("expected error parsing invalid version")
	}
	if _, err := ParseVersion("-1.0"); err == nil {
		t.Errorf("expected error parsing negative version component")
	}
}

func TestTypeEqualityIgnoresAssignable(t *testing.T) {
	a := Int()
	b := Int().AsAssignable()
	if !a.Equal(b) {
		t.Errorf("Int() and Int().AsAssignable() should be structurally equal")
	}
	m1 := RealMatrix(2, 2)
	m2 := RealMatrix(2, 3)
	if m1.Equal(m2) {
		t.Errorf("matrices of different shape should not be equal")
	}
	if !RealMatrix(0, 0).SizePolymorphic() {
		t.Errorf("RealMatrix(0,0) should be size-polymorphic")
	}
}

func TestFromSpec(t *testing.T) {
	got := FromSpec("biQ")
	want := []Type{Bool(), Int(), Qubit()}
	if len(got) != len(want) {
		t.Fatalf("FromSpec length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range got {
		if !got[i].Equal(want[i]) {
			t.Errorf("FromSpec[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFromSpecPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on unrecognized type-spec character")
		}
	}()
	FromSpec("z")
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 16} {
		if !IsPowerOfTwo(n) {
			t.Errorf("IsPowerOfTwo(%d) = false, want true", n)
		}
	}
	for _, n := range []int{0, -2, 3, 5, 6} {
		if IsPowerOfTwo(n) {
			t.Errorf("IsPowerOfTwo(%d) = true, want false", n)
		}
	}
}
