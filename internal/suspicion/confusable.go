package suspicion

import "strings"

// confusableClasses groups characters commonly swapped for one another in
// impersonation account names. Two characters are an intentional-looking
// substitution when they belong to the same class.
var confusableClasses = []string{
	"l1L|!I/i",
	"gq9",
	"mn",
	"uvUV",
	"ce",
	"b6",
	"o0O",
	"Z2",
	"B8",
}

// classOf returns the index of the confusable class containing r, or -1.
func classOf(r rune) int {
	for i, class := range confusableClasses {
		if strings.ContainsRune(class, r) {
			return i
		}
	}
	return -1
}

// sameConfusableClass reports whether a and b belong to one confusable class.
func sameConfusableClass(a, b rune) bool {
	c := classOf(a)
	return c >= 0 && c == classOf(b)
}
