package vectorstore

import "strings"

// Chunk splits a document into pieces of at most size runes with roughly
// overlap runes carried over between consecutive pieces. Splits happen at
// word boundaries so no word is cut in half. Whitespace runs collapse to
// single spaces.
func Chunk(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if size <= 0 {
		size = 500
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(words) {
		runes := 0
		end := start
		for end < len(words) {
			w := len([]rune(words[end]))
			if runes > 0 {
				w++ // joining space
			}
			if runes+w > size && runes > 0 {
				break
			}
			runes += w
			end++
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end >= len(words) {
			break
		}

		// Walk back far enough to carry ~overlap runes into the next chunk.
		next := end
		back := 0
		for next > start+1 && back < overlap {
			next--
			back += len([]rune(words[next])) + 1
		}
		start = next
	}
	return chunks
}
