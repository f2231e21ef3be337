package idgen

import "testing"

func TestGenerateID(t *testing.T) {
	a, err := GenerateID()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateID()
	if err != nil {
		t.Fatal(err)
	}
	if a == "" || a == b {
		t.Errorf("expected two distinct non-empty IDs, got %v and %v", a, b)
	}
}
