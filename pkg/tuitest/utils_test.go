package tuitest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	in := "\x1b[1;31mhello\x1b[0m   \n\x1b[32mworld\x1b[0m\n\n"
	assert.Equal(t, "hello\nworld", StripANSI(in))
}

func TestKeyPress(t *testing.T) {
	assert.Equal(t, "s", KeyPress('s').(interface{ String() string }).String())
	assert.Equal(t, " ", KeyPress(' ').(interface{ String() string }).String())
	assert.Equal(t, "ctrl+c", KeyCtrlC().(interface{ String() string }).String())
}
