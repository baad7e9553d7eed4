package hotkey

import (
	"reflect"
	"testing"
)

func TestParseHotkey(t *testing.T) {
	cases := []struct {
		combo string
		want  []string
	}{
		{"Ctrl+Alt+Q", []string{"ctrl", "alt", "q"}},
		{"ctrl + shift + t", []string{"ctrl", "shift", "t"}},
		{"Win+S", []string{"cmd", "s"}},
		{"Control+2", []string{"ctrl", "2"}},
	}
	for _, tc := range cases {
		if got := parseHotkey(tc.combo); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseHotkey(%q) = %v, want %v", tc.combo, got, tc.want)
		}
	}
}

func TestKeyNameToRawcodes(t *testing.T) {
	if codes := keyNameToRawcodes("ctrl"); len(codes) != 2 {
		t.Errorf("ctrl should map to left and right rawcodes, got %v", codes)
	}
	if codes := keyNameToRawcodes("q"); !reflect.DeepEqual(codes, []uint16{'Q'}) {
		t.Errorf("q rawcodes = %v, want [81]", codes)
	}
	if codes := keyNameToRawcodes("f13"); codes != nil {
		t.Errorf("unknown key should map to nil, got %v", codes)
	}
}
