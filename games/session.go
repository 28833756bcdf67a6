package games

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one game of guess-the-number.
// A secret is drawn once and never changes.
// The player guesses forever; every guess is answered with whether it
// was right, too big or too small, and a right guess does not end the game.
type Session struct {
	ID string

	secret uint32
	logger *zap.Logger
}

// NewSession starts a game around secret. A nil logger discards logs.
func NewSession(secret uint32, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		ID:     uuid.NewString(),
		secret: secret,
	}
	s.logger = logger.With(zap.String("session", s.ID))
	s.logger.Debug("session started", zap.Uint32("secret", secret))
	return s
}

// Secret is the number the player has to guess.
func (s *Session) Secret() uint32 { return s.secret }

// Intro returns the lines shown before the first guess.
// The secret is disclosed here on purpose.
func (s *Session) Intro() []string {
	return []string{
		"Guess the number!",
		fmt.Sprintf("The secret number is: %d", s.secret),
		"Please input your guess.",
	}
}

// Guess evaluates one line of player input.
func (s *Session) Guess(line string) (Outcome, error) {
	n, err := ParseGuess(line)
	if err != nil {
		s.logger.Error("bad guess", zap.Error(err))
		return 0, err
	}
	o := Compare(n, s.secret)
	s.logger.Debug("guess", zap.Uint32("guess", n), zap.Stringer("outcome", o))
	return o, nil
}

// methods required by server.Game

// HandleMsg answers one guess message with the outcome line.
func (s *Session) HandleMsg(msg []byte) (string, error) {
	o, err := s.Guess(string(msg))
	if err != nil {
		return "", err
	}
	return o.Message(), nil
}

// Play writes the intro to w then answers guesses read line by line from r.
// It only returns on failure: an *InputReadError, a *ParseError or an
// error wrapping ErrWriteOutput.
func (s *Session) Play(r io.Reader, w io.Writer) error {
	for _, line := range s.Intro() {
		if err := writeLine(w, line); err != nil {
			return err
		}
	}

	reader := bufio.NewReader(r)
	for {
		// an unterminated last line still counts as a guess
		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			rerr := &InputReadError{Err: err}
			s.logger.Error("read guess", zap.Error(rerr))
			return rerr
		}
		if !utf8.ValidString(line) {
			rerr := &InputReadError{Err: errInvalidUTF8}
			s.logger.Error("read guess", zap.Error(rerr))
			return rerr
		}

		o, err := s.Guess(line)
		if err != nil {
			return err
		}
		if err := writeLine(w, o.Message()); err != nil {
			return err
		}
	}
}

// ParseGuess trims line and parses it as an unsigned 32-bit integer.
// One leading '+' is allowed.
func ParseGuess(line string) (uint32, error) {
	text := strings.TrimSpace(line)
	digits := text
	if strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}
	if digits == "" || digits[0] == '+' {
		return 0, &ParseError{Input: text, Err: strconv.ErrSyntax}
	}
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &ParseError{Input: text, Err: err}
	}
	return uint32(n), nil
}

func writeLine(w io.Writer, line string) error {
	if _, err := fmt.Fprintln(w, line); err != nil {
		return fmt.Errorf("%w: write %q: %w", ErrWriteOutput, line, err)
	}
	return nil
}
