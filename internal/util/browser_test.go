package util

import "testing"

func TestBrowserCommands(t *testing.T) {
	url := "http://localhost:20270"
	for _, goos := range []string{"windows", "darwin", "linux"} {
		cmds := browserCommands(goos, url)
		if len(cmds) == 0 {
			t.Fatalf("%s: no commands", goos)
		}
		for _, c := range cmds {
			if c[len(c)-1] != url {
				t.Errorf("%s: %v does not end with url", goos, c)
			}
		}
	}
}
