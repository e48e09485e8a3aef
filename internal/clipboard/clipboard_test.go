package clipboard

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCandidates verifies helper order per platform.
func TestCandidates(t *testing.T) {
	names := func(cs []candidate) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.cmd)
		}
		return out
	}

	assert.Equal(t, []string{"pbcopy", "wl-copy", "xclip", "xsel"}, names(candidates("linux")))
	assert.Equal(t, []string{"clip", "pbcopy", "wl-copy", "xclip", "xsel"}, names(candidates("windows")))
}

// TestOSWrite_FirstWorkingHelper verifies that missing helpers are skipped
// and a failing helper falls through to the next one.
func TestOSWrite_FirstWorkingHelper(t *testing.T) {
	installed := map[string]bool{"xclip": true, "xsel": true}
	var ran []string
	var gotStdin string

	c := OS{
		lookPath: func(name string) (string, error) {
			if installed[name] {
				return "/usr/bin/" + name, nil
			}
			return "", exec.ErrNotFound
		},
		run: func(path string, args []string, stdin string) error {
			ran = append(ran, path)
			if path == "/usr/bin/xclip" {
				return errors.New("Error: Can't open display")
			}
			gotStdin = stdin
			return nil
		},
	}

	require.NoError(t, c.Write("analysis text"))
	assert.Equal(t, []string{"/usr/bin/xclip", "/usr/bin/xsel"}, ran)
	assert.Equal(t, "analysis text", gotStdin)
}

// TestOSWrite_Unavailable verifies ErrUnavailable when nothing works.
func TestOSWrite_Unavailable(t *testing.T) {
	t.Run("nothing installed", func(t *testing.T) {
		c := OS{lookPath: func(string) (string, error) { return "", exec.ErrNotFound }}
		assert.ErrorIs(t, c.Write("x"), ErrUnavailable)
	})

	t.Run("all helpers fail", func(t *testing.T) {
		c := OS{
			lookPath: func(name string) (string, error) { return name, nil },
			run:      func(string, []string, string) error { return errors.New("boom") },
		}
		err := c.Write("x")
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Contains(t, err.Error(), "xsel: boom")
	})
}
