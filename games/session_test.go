package games

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const intro = "Guess the number!\nThe secret number is: 50\nPlease input your guess.\n"

func play(t *testing.T, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := NewSession(50, zap.NewNop()).Play(strings.NewReader(input), &out)
	require.Error(t, err, "play only returns on failure")
	return out.String(), err
}

func TestCompare(t *testing.T) {
	for s := uint32(MinSecret); s <= MaxSecret; s++ {
		for _, g := range []uint32{0, 1, s - 1, s, s + 1, 100, 4294967295} {
			o := Compare(g, s)
			switch {
			case g == s:
				assert.Equal(t, Equal, o)
				assert.Equal(t, "you winn", o.Message())
			case g > s:
				assert.Equal(t, Greater, o)
				assert.Equal(t, "too big", o.Message())
			default:
				assert.Equal(t, Less, o)
				assert.Equal(t, "too small", o.Message())
			}
		}
	}
}

func TestPlayOutcomes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"correct", "50\n", "you winn\n"},
		{"too small", "10\n", "too small\n"},
		{"too big", "90\n", "too big\n"},
		{"whitespace", "  90 \t\r\n", "too big\n"},
		{"plus sign", "+50\n", "you winn\n"},
		{"unterminated last line", "10", "too small\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := play(t, tt.input)
			assert.Equal(t, intro+tt.want, out)

			var rerr *InputReadError
			assert.ErrorAs(t, err, &rerr)
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestPlayKeepsGoingAfterWin(t *testing.T) {
	out, err := play(t, "50\n50\n10\n90\n")
	assert.Equal(t, intro+"you winn\nyou winn\ntoo small\ntoo big\n", out)
	assert.ErrorIs(t, err, ErrReadLine)
}

func TestPlayParseFailureIsFatal(t *testing.T) {
	for _, input := range []string{"abc\n", "\n", "-5\n", "+\n", "++5\n", "4294967296\n", "5 5\n"} {
		out, err := play(t, input+"50\n")
		assert.Equal(t, intro, out, "input %q", input)

		var perr *ParseError
		require.ErrorAs(t, err, &perr, "input %q", input)
		assert.ErrorIs(t, err, ErrNotANumber)
		assert.Equal(t, strings.TrimSpace(input), perr.Input)
	}
}

func TestPlayParseFailureAfterGuesses(t *testing.T) {
	out, err := play(t, "10\nabc\n50\n")
	assert.Equal(t, intro+"too small\n", out)
	assert.ErrorIs(t, err, ErrNotANumber)
}

func TestPlayClosedInput(t *testing.T) {
	out, err := play(t, "")
	assert.Equal(t, intro, out)

	var rerr *InputReadError
	require.ErrorAs(t, err, &rerr)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "Failed to read line: EOF", err.Error())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestPlayInvalidUTF8(t *testing.T) {
	for _, input := range []string{"\xff\n", "5\xc3\n", "\xff"} {
		out, err := play(t, input+"50\n")
		assert.Equal(t, intro, out, "input %q", input)

		var rerr *InputReadError
		require.ErrorAs(t, err, &rerr, "input %q", input)
		assert.ErrorIs(t, err, ErrReadLine)
		assert.NotErrorIs(t, err, ErrNotANumber)
	}
}

func TestPlayReadError(t *testing.T) {
	var out bytes.Buffer
	err := NewSession(50, nil).Play(failingReader{}, &out)
	assert.ErrorIs(t, err, ErrReadLine)
	assert.NotErrorIs(t, err, io.EOF)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestPlayWriteError(t *testing.T) {
	err := NewSession(50, nil).Play(strings.NewReader("50\n"), failingWriter{})
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.ErrorIs(t, err, ErrWriteOutput)
}

func TestParseGuess(t *testing.T) {
	n, err := ParseGuess(" 4294967295\n")
	require.NoError(t, err)
	assert.Equal(t, uint32(4294967295), n)

	n, err = ParseGuess("007")
	require.NoError(t, err)
	assert.Equal(t, uint32(7), n)
}

func TestHandleMsg(t *testing.T) {
	s := NewSession(50, nil)
	reply, err := s.HandleMsg([]byte("50"))
	require.NoError(t, err)
	assert.Equal(t, "you winn", reply)

	_, err = s.HandleMsg([]byte("fifty"))
	assert.ErrorIs(t, err, ErrNotANumber)
}

func TestSessionLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewSession(42, zap.New(core))
	_, err := s.Guess("7")
	require.NoError(t, err)

	entries := logs.FilterMessage("guess").All()
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(42), s.Secret())
	assert.Equal(t, s.ID, entries[0].ContextMap()["session"])
	assert.Equal(t, "less", entries[0].ContextMap()["outcome"])
}
