package usecase

import (
	"strings"
	"unicode/utf8"
)

// DefaultPageLimit keeps each chunk below the chat transport's message size
const DefaultPageLimit = 4000

// Paginate groups lines into newline-joined chunks of at most limit
// characters, splitting only between lines and keeping order. Leading
// header lines therefore land in the first chunk only. A line longer than
// limit is cut into limit-sized pieces, each sent as its own chunk, so
// joining the chunks with newlines reproduces the input only when every
// line fits within limit.
func Paginate(lines []string, limit int) []string {
	if len(lines) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	var chunks []string
	var current []string
	size := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
			size = 0
		}
	}

	for _, line := range lines {
		n := utf8.RuneCountInString(line)
		if n > limit {
			flush()
			chunks = append(chunks, splitRunes(line, limit)...)
			continue
		}

		added := n
		if len(current) > 0 {
			added++ // newline separator
		}
		if size+added > limit {
			flush()
			added = n
		}
		current = append(current, line)
		size += added
	}
	flush()

	return chunks
}

// PaginateText splits text on newlines and paginates it
func PaginateText(text string, limit int) []string {
	if text == "" {
		return nil
	}
	return Paginate(strings.Split(text, "\n"), limit)
}

func splitRunes(s string, limit int) []string {
	var pieces []string
	runes := []rune(s)
	for len(runes) > limit {
		pieces = append(pieces, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}
