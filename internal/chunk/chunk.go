package chunk

const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Chunk is one contiguous span of a source document.
type Chunk struct {
	Text  string
	Index int
}

// Splitter splits text into fixed-size overlapping chunks by rune count.
type Splitter struct {
	size    int
	overlap int
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split returns the chunks of text. Each chunk holds at most size runes and
// each chunk after the first starts overlap runes before the end of the
// previous one. Empty input yields no chunks.
func (s *Splitter) Split(text string) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.size - s.overlap
	var chunks []Chunk
	for start := 0; ; start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Text:  string(runes[start:end]),
			Index: len(chunks),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
