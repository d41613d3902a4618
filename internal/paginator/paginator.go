// Package paginator splits long texts into Telegram sized messages.
package paginator

// DefaultLimit is the maximum message length accepted by the Bot API.
const DefaultLimit = 4096

// Paginate splits text into chunks of at most limit characters, counted in
// runes. A chunk ends at the last newline inside its window when there is
// one; that newline belongs to no chunk. Without a newline the window is cut
// as is. Empty text yields no chunks. A limit below 1 means DefaultLimit.
func Paginate(text string, limit int) []string {
	if limit < 1 {
		limit = DefaultLimit
	}

	var (
		chunks []string
		rest   = []rune(text)
	)
	for len(rest) > 0 {
		if len(rest) <= limit {
			chunks = append(chunks, string(rest))
			break
		}

		window := rest[:limit]
		if p := lastNewline(window); p >= 0 {
			chunks = append(chunks, string(window[:p]))
			rest = rest[p+1:]
			continue
		}

		chunks = append(chunks, string(window))
		rest = rest[limit:]
	}

	return chunks
}

func lastNewline(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '\n' {
			return i
		}
	}
	return -1
}
