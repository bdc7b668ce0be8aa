package bot

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		cmd  string
		args string
		ok   bool
	}{
		{"/start", "start", "", true},
		{"/help", "help", "", true},
		{"/ans hello there", "ans", "hello there", true},
		{"/ans   leading spaces", "ans", "leading spaces", true},
		{"/ANS Hello", "ans", "Hello", true},
		{"/ans@voxbuddy_bot hi", "ans", "hi", true},
		{"/consent@voxbuddy_bot", "consent", "", true},
		{" /start ", "start", "", true},
		{"hello", "", "", false},
		{"", "", "", false},
		{"/", "", "", false},
		{"just text with / inside", "", "", false},
	}

	for _, tt := range tests {
		cmd, args, ok := parseCommand(tt.text)
		if ok != tt.ok {
			t.Errorf("parseCommand(%q): ok = %v, want %v", tt.text, ok, tt.ok)
			continue
		}
		if cmd != tt.cmd || args != tt.args {
			t.Errorf("parseCommand(%q) = (%q, %q), want (%q, %q)", tt.text, cmd, args, tt.cmd, tt.args)
		}
	}
}
