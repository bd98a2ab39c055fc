package truthy

import (
	"encoding/json"
	"testing"
)

func TestIs(t *testing.T) {
	cases := []struct {
		in   interface{}
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"false", false},
		{"1", true},
		{"0", false},
		{1, true},
		{0, false},
		{int64(1), true},
		{float64(1), true},
		{float64(0), false},
		{json.Number("1"), true},
		{json.Number("0"), false},
		{nil, false},
		{"yes", false},
		{2, false},
		{[]string{"true"}, false},
		{map[string]bool{}, false},
	}

	for _, c := range cases {
		if got := Is(c.in); got != c.want {
			t.Fatalf("Is(%#v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFlexDecode(t *testing.T) {
	var payload struct {
		A Flex `json:"a"`
		B Flex `json:"b"`
		C Flex `json:"c"`
		D Flex `json:"d"`
		E Flex `json:"e"`
	}
	raw := `{"a": true, "b": "true", "c": 1, "d": "0", "e": null}`
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !payload.A.Bool() || !payload.B.Bool() || !payload.C.Bool() {
		t.Fatalf("expected a, b, c to coerce true: %v %v %v", payload.A.Bool(), payload.B.Bool(), payload.C.Bool())
	}
	if payload.D.Bool() || payload.E.Bool() {
		t.Fatalf("expected d, e to coerce false")
	}
}

func TestFlexAbsentField(t *testing.T) {
	var payload struct {
		Missing Flex `json:"missing"`
	}
	if err := json.Unmarshal([]byte(`{}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.Missing.Bool() {
		t.Fatalf("absent field must coerce to false")
	}
}
