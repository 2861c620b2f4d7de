package utils

import "testing"

func TestUpdatesFromPtrDTO(t *testing.T) {
	name := "Grade 5B"
	roll := "R-22"
	in := struct {
		Name   *string  `json:"name"`
		RollNo *string  `json:"roll_no"`
		Amount *float64 `json:"default_amount"`
		Hidden *string  `json:"-"`
	}{Name: &name, RollNo: &roll}

	got := UpdatesFromPtrDTO(&in, map[string]string{"roll_no": "roll_number"})

	if len(got) != 2 {
		t.Fatalf("got %d keys (%v); want 2", len(got), got)
	}
	if got["name"] != "Grade 5B" {
		t.Errorf("name = %v; want Grade 5B", got["name"])
	}
	if got["roll_number"] != "R-22" {
		t.Errorf("roll_number = %v; want R-22 via rename", got["roll_number"])
	}
	if _, ok := got["default_amount"]; ok {
		t.Error("nil field leaked into updates")
	}
}

func TestParseIntDefault(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		want int
	}{
		{"25", 50, 25},
		{" 7 ", 50, 7},
		{"", 50, 50},
		{"abc", 50, 50},
		{"-3", 50, 50},
	}
	for _, tt := range tests {
		if got := ParseIntDefault(tt.in, tt.def); got != tt.want {
			t.Errorf("ParseIntDefault(%q, %d) = %d; want %d", tt.in, tt.def, got, tt.want)
		}
	}
}
