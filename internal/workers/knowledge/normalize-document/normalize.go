package normalizedocument

import (
	"strings"
	"unicode/utf8"
)

const (
	minListItemRunes  = 3
	minParagraphWords = 3
)

// Normalize filters, renders and deduplicates blocks. The output depends only
// on the input order, so an unchanged document always yields the same text.
func Normalize(blocks []Block, bannedPrefixes []string) string {
	seen := make(map[string]struct{}, len(blocks))
	var lines []string

	for _, b := range blocks {
		line, keep := render(b, bannedPrefixes)
		if !keep {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func render(b Block, bannedPrefixes []string) (string, bool) {
	text := strings.TrimSpace(b.Text)
	if text == "" {
		return "", false
	}

	lower := strings.ToLower(text)
	for _, prefix := range bannedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	switch b.Kind {
	case BlockHeading:
		return "\n📌 " + text + "\n", true
	case BlockListItem:
		if utf8.RuneCountInString(text) < minListItemRunes {
			return "", false
		}
		return "- " + text, true
	case BlockParagraph:
		if len(strings.Fields(text)) < minParagraphWords {
			return "", false
		}
		return text, true
	default:
		return "", false
	}
}
