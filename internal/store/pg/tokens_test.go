package pg

import (
	"reflect"
	"testing"
)

func TestSplitJoinCodes(t *testing.T) {
	cases := []struct {
		name  string
		codes []string
	}{
		{"empty", nil},
		{"single", []string{"alpha"}},
		{"several", []string{"alpha", "bravo", "charlie"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitCodes(joinCodes(tc.codes))
			if !reflect.DeepEqual(got, tc.codes) {
				t.Fatalf("round trip = %v, want %v", got, tc.codes)
			}
		})
	}
}

func TestSplitCodesEmptyValue(t *testing.T) {
	if got := splitCodes(""); got != nil {
		t.Fatalf("splitCodes(\"\") = %v, want nil", got)
	}
}

func TestRemoveCode(t *testing.T) {
	codes := []string{"alpha", "bravo", "charlie"}

	rest, ok := removeCode(codes, "bravo")
	if !ok {
		t.Fatal("bravo should be found")
	}
	if !reflect.DeepEqual(rest, []string{"alpha", "charlie"}) {
		t.Fatalf("rest = %v", rest)
	}

	// same code again: the set no longer contains it
	rest2, ok := removeCode(rest, "bravo")
	if ok {
		t.Fatal("bravo was already redeemed")
	}
	if !reflect.DeepEqual(rest2, rest) {
		t.Fatalf("set must stay unchanged on miss, got %v", rest2)
	}
}

func TestRemoveCodeFirstOccurrenceOnly(t *testing.T) {
	// duplicated codes are not deduplicated by the store; redeeming
	// consumes one occurrence at a time
	rest, ok := removeCode([]string{"x", "x", "y"}, "x")
	if !ok {
		t.Fatal("x should be found")
	}
	if !reflect.DeepEqual(rest, []string{"x", "y"}) {
		t.Fatalf("rest = %v, want one x left", rest)
	}
}

func TestRemoveCodeDoesNotAliasInput(t *testing.T) {
	codes := []string{"a", "b", "c"}
	rest, _ := removeCode(codes, "a")
	rest = append(rest, "z")
	if codes[1] != "b" || codes[2] != "c" {
		t.Fatalf("input slice was clobbered: %v", codes)
	}
	_ = rest
}
