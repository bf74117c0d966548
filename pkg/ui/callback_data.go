package ui

import (
	"errors"
	"strings"
)

const (
	CallbackPrefix     = "q:"
	MaxCallbackDataLen = 64
)

// Verb is the quiz action a button triggers.
type Verb string

const (
	VerbSkip    Verb = "s"
	VerbNext    Verb = "n"
	VerbRestart Verb = "r"
)

type Action struct {
	Verb  Verb
	Token string
}

var (
	errInvalidPrefix       = errors.New("invalid callback prefix")
	errInvalidAction       = errors.New("invalid callback action")
	errInvalidToken        = errors.New("invalid callback token")
	errCallbackDataTooLong = errors.New("callback data too long")
)

func BuildSkipCallback(token string) (string, error) {
	return buildCallback(VerbSkip, token)
}

func BuildNextCallback(token string) (string, error) {
	return buildCallback(VerbNext, token)
}

func BuildRestartCallback(token string) (string, error) {
	return buildCallback(VerbRestart, token)
}

// IsQuizCallback reports whether data was built by this package.
func IsQuizCallback(data string) bool {
	return strings.HasPrefix(data, CallbackPrefix)
}

func ParseCallbackData(data string) (Action, error) {
	if data == "" {
		return Action{}, errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return Action{}, errCallbackDataTooLong
	}
	if !IsQuizCallback(data) {
		return Action{}, errInvalidPrefix
	}

	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		return Action{}, errInvalidAction
	}
	verb, err := parseVerb(parts[1])
	if err != nil {
		return Action{}, err
	}
	if !isToken(parts[2]) {
		return Action{}, errInvalidToken
	}
	return Action{Verb: verb, Token: parts[2]}, nil
}

func buildCallback(verb Verb, token string) (string, error) {
	if _, err := parseVerb(string(verb)); err != nil {
		return "", err
	}
	if !isToken(token) {
		return "", errInvalidToken
	}
	data := CallbackPrefix + string(verb) + ":" + token
	if len(data) > MaxCallbackDataLen {
		return "", errCallbackDataTooLong
	}
	return data, nil
}

func parseVerb(part string) (Verb, error) {
	switch Verb(part) {
	case VerbSkip, VerbNext, VerbRestart:
		return Verb(part), nil
	default:
		return "", errInvalidAction
	}
}

// isToken accepts lowercase base36, the alphabet tokens are minted in.
func isToken(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
