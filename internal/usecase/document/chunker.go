package document

import "strings"

// boundaryLookback is how far back from the window end a sentence terminator,
// newline or space is searched for before a chunk is cut.
const boundaryLookback = 100

// maxChunks caps chunk production for pathological inputs.
const maxChunks = 10000

type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// ChunkText splits text into overlapping chunks, preferring to cut at the
// rightmost sentence boundary within the lookback window. Consecutive chunks
// share chunkOverlap characters of context.
func (c *Chunker) ChunkText(text string) []string {
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + c.chunkSize

		if end < len(text) {
			boundarySearchStart := end - boundaryLookback
			if boundarySearchStart < start {
				boundarySearchStart = start
			}
			segment := text[boundarySearchStart:end]

			boundary := strings.LastIndexByte(segment, '.')
			if i := strings.LastIndexByte(segment, '\n'); i > boundary {
				boundary = i
			}
			if i := strings.LastIndexByte(segment, ' '); i > boundary {
				boundary = i
			}
			if boundary != -1 {
				end = boundarySearchStart + boundary + 1
			}
		}

		// The window end may overshoot the text; clamp for slicing only, the
		// next start still advances from the unclamped end.
		sliceEnd := end
		if sliceEnd > len(text) {
			sliceEnd = len(text)
		}
		chunk := strings.TrimSpace(text[start:sliceEnd])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		start = end - c.chunkOverlap
		// Exit guards: no progress is possible once start falls to or below
		// zero (overlap >= chunk size), or past the end of the text.
		if start <= 0 || (len(chunks) > 0 && start >= len(text)) {
			break
		}
		if len(chunks) > maxChunks {
			break
		}
	}

	return chunks
}
