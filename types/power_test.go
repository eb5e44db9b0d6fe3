package types

import "testing"

func TestBitIterNames(t *testing.T) {
	it := NewBitIter(ChgInOK|BatOK, ChargerIntOKTable[:])
	got := it.Names()
	if len(got) != 2 || got[0] != "chgin_ok" || got[1] != "bat_ok" {
		t.Fatalf("names = %v", got)
	}
	if _, ok := it.Next(); ok {
		t.Fatal("iterator not exhausted")
	}
	it.Reset()
	if n, ok := it.Next(); !ok || n != "chgin_ok" {
		t.Fatalf("after reset: %q, %v", n, ok)
	}
}
