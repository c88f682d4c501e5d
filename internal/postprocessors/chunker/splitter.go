package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order: paragraph, line, word, then a hard
// character cut. The empty separator splits into single characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter divides text into overlapping chunks of at most chunkSize
// characters, preferring the coarsest separator present in the text.
// Lengths are counted in characters, not bytes.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter with the given options applied over the
// defaults. An overlap that is not smaller than the chunk size is reduced
// to a quarter of the chunk size.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured maximum chunk length.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap length.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split returns the ordered chunk contents for text. Each chunk is trimmed
// and non-empty. A chunk only exceeds the chunk size when a single unit
// could not be split by any remaining separator.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var finer []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			finer = separators[i+1:]
			break
		}
	}

	var (
		chunks  []string
		pending []string
	)
	for _, piece := range strings.Split(text, separator) {
		if piece == "" {
			continue
		}
		if utf8.RuneCountInString(piece) < s.chunkSize {
			pending = append(pending, piece)
			continue
		}

		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending, separator)...)
			pending = nil
		}
		if len(finer) == 0 {
			// Nothing left to split on; keep the unit whole.
			if trimmed := strings.TrimSpace(piece); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
			continue
		}
		chunks = append(chunks, s.split(piece, finer)...)
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending, separator)...)
	}

	return chunks
}

// merge packs pieces into chunks no longer than chunkSize. When a chunk is
// emitted, leading pieces are dropped until the remaining window fits in the
// overlap, and that window opens the next chunk.
func (s *Splitter) merge(pieces []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)
	joinCost := func(windowLen int) int {
		if windowLen > 0 {
			return sepLen
		}
		return 0
	}

	var (
		chunks []string
		window []string
		total  int
	)
	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)

		if len(window) > 0 && total+n+joinCost(len(window)) > s.chunkSize {
			if chunk := strings.TrimSpace(strings.Join(window, separator)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.overlap || (total > 0 && total+n+joinCost(len(window)) > s.chunkSize) {
				total -= utf8.RuneCountInString(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}

		total += n + joinCost(len(window))
		window = append(window, piece)
	}

	if chunk := strings.TrimSpace(strings.Join(window, separator)); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}
