// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidTopic is returned when a topic does not produce a usable
// directory name.
var ErrInvalidTopic = errors.New("invalid topic")

// TopicKey derives the storage key for a free-text topic: lowercase, with
// whitespace and path separators replaced by underscores.
// "Quantum Computing" becomes "quantum_computing".
func TopicKey(topic string) (string, error) {
	key := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == '/', r == '\\', r == 0:
			return '_'
		default:
			return r
		}
	}, strings.ToLower(topic))

	switch key {
	case "", ".", "..":
		return "", fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	return key, nil
}
