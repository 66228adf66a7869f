package ingestion

import "strings"

// SplitText splits text into overlapping chunks, breaking preferentially at
// newline boundaries. Each chunk is at most chunkSize characters and
// consecutive chunks share up to chunkOverlap characters of trailing
// context. A chunk exceeds chunkSize only when a single line has no newline
// boundary within range.
func SplitText(text string, chunkSize, chunkOverlap int) []string {
	const separator = "\n"
	splits := strings.Split(text, separator)

	var chunks []string
	var window []string
	total := 0

	sepLen := func(n int) int {
		if n > 0 {
			return len(separator)
		}
		return 0
	}

	for _, split := range splits {
		length := len(split)

		if total+length+sepLen(len(window)) > chunkSize && len(window) > 0 {
			chunk := strings.TrimSpace(strings.Join(window, separator))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}

			// Slide the window forward: drop leading lines until the
			// retained overlap is within bounds and the next line fits.
			for total > chunkOverlap ||
				(total+length+sepLen(len(window)) > chunkSize && total > 0) {
				total -= len(window[0]) + sepLen(len(window)-1)
				window = window[1:]
			}
		}

		window = append(window, split)
		total += length + sepLen(len(window)-1)
	}

	if len(window) > 0 {
		chunk := strings.TrimSpace(strings.Join(window, separator))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}
