package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Line(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  hello world \nlast"), &out)

	got, err := p.Line("Name")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name: ", out.String())

	got, err = p.Line("Again")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = p.Line("Gone")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPrompter_PasswordWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(" spaced pw \n"), &out)

	got, err := p.Password("Password")
	require.NoError(t, err)
	assert.Equal(t, " spaced pw ", got)
}

func TestPrompter_PasswordFromTerminal(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	var out bytes.Buffer
	p := &Prompter{in: bufio.NewReader(strings.NewReader("")), out: &out, fd: 0}

	readPassword = func(int) ([]byte, error) { return []byte("Summer2026!"), nil }
	got, err := p.Password("Password")
	require.NoError(t, err)
	assert.Equal(t, "Summer2026!", got)
	assert.Equal(t, "Password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = p.Password("Password")
	assert.Error(t, err)
}

func TestPrompter_Confirm(t *testing.T) {
	p := NewPrompter(strings.NewReader("y\nYES\nno\n\n"), io.Discard)
	for _, want := range []bool{true, true, false, false} {
		got, err := p.Confirm("Accept?")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
