package report

import (
	"errors"
	"strings"
)

// errInvalidChoice is the uniform rejection for menu input that does not
// decode to the offered choices.
var errInvalidChoice = errors.New("input is not one of the offered choices")

// invalidChoiceReply is the single retry message used by every validated
// menu state.
const invalidChoiceReply = "I'm sorry, I couldn't read the response. " +
	"Please reply with a letter from the menu or say `cancel` to cancel."

func retryChoice() Outcome {
	return Outcome{Lines: []string{invalidChoiceReply}}
}

// choice is one lettered menu entry.
type choice struct {
	key   byte
	label string
}

var reasonMenu = []choice{
	{'A', "It may be under the age of 13"},
	{'B', "It's posting content that shouldn't be here"},
	{'C', "It's pretending to be someone else"},
	{'D', "Other reasons, and a moderator will review your case"},
}

var fakeTypeMenu = []choice{
	{'A', "Myself"},
	{'B', "Someone I know"},
	{'C', "A celebrity or public figure"},
	{'D', "A business or organization"},
}

var behaviorMenu = []choice{
	{'A', "Pirating my photos for its profile or posts"},
	{'B', "Messaging others on my behalf"},
	{'C', "Making improper comments on my behalf"},
}

var subtypeMenu = []choice{
	{'A', "Hate speech or symbols"},
	{'B', "Nudity or sexual activity"},
	{'C', "Violence or dangerous organizations"},
	{'D', "Spam or scam"},
}

// renderMenu formats a header plus one "Reply X for ..." line per choice.
func renderMenu(header string, menu []choice) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, c := range menu {
		b.WriteString("Reply ")
		b.WriteByte(c.key)
		b.WriteString(" for ")
		b.WriteString(c.label)
		b.WriteByte('\n')
	}
	return b.String()
}

func menuLabel(menu []choice, key byte) string {
	for _, c := range menu {
		if c.key == key {
			return c.label
		}
	}
	return ""
}

// decodeChoice maps a single-letter input (case insensitive) onto the
// allowed key set. Anything else is rejected uniformly.
func decodeChoice(input, allowed string) (byte, error) {
	input = strings.TrimSpace(input)
	if len(input) != 1 {
		return 0, errInvalidChoice
	}
	key := upperByte(input[0])
	if strings.IndexByte(allowed, key) < 0 {
		return 0, errInvalidChoice
	}
	return key, nil
}

// decodeMultiChoice maps a run of letters onto the allowed key set,
// deduplicating while preserving first-occurrence order. At least one
// letter is required and every letter must be allowed.
func decodeMultiChoice(input, allowed string) ([]byte, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errInvalidChoice
	}

	var keys []byte
	seen := make(map[byte]bool)
	for i := 0; i < len(input); i++ {
		key := upperByte(input[i])
		if strings.IndexByte(allowed, key) < 0 {
			return nil, errInvalidChoice
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
