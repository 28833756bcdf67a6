package games

// Outcome is how a guess relates to the secret.
type Outcome int

const (
	Equal Outcome = iota
	Greater
	Less
)

// Compare classifies guess against secret.
func Compare(guess, secret uint32) Outcome {
	switch {
	case guess == secret:
		return Equal
	case guess > secret:
		return Greater
	default:
		return Less
	}
}

// Message is the line printed to the player for the outcome.
func (o Outcome) Message() string {
	switch o {
	case Equal:
		return "you winn"
	case Greater:
		return "too big"
	case Less:
		return "too small"
	}
	return ""
}

func (o Outcome) String() string {
	switch o {
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	case Less:
		return "less"
	}
	return "unknown"
}
