package main

import "testing"

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in   string
		want uiMode
		err  bool
	}{
		{"", uiModeAuto, false},
		{"auto", uiModeAuto, false},
		{" ON ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.err {
			t.Fatalf("readUIMode(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("readUIMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Fatal("explicit modes must win over terminal detection")
	}
}
