package splitter

import (
	"fmt"
	"strings"
)

// defaultSeparators is the priority-ordered descent list: paragraph break,
// line break, CJK and Latin sentence ends, CJK and Latin clause punctuation,
// space, and the character-level fallback.
var defaultSeparators = []string{
	"\n\n",
	"\n",
	"。", "！", "？",
	". ", "! ", "? ",
	"；", "，",
	"; ", ", ",
	" ",
	"",
}

// LengthFunc measures text length for chunk budgeting. Default is rune count.
type LengthFunc func(string) int

func runeLength(s string) int {
	return len([]rune(s))
}

// Splitter deterministically decomposes text into chunks of at most ChunkSize
// with ChunkOverlap of repeated trailing context carried into the next chunk.
// Fenced code blocks are never split except by the line-based fallback for
// oversized blocks, which never cuts mid-line.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	lengthFn     LengthFunc
	separators   []string
}

// New creates a splitter. ChunkOverlap must be strictly less than chunkSize or
// the splitter cannot make progress.
func New(chunkSize, chunkOverlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap (%d) must be in [0, chunk size) with chunk size %d", chunkOverlap, chunkSize)
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		lengthFn:     runeLength,
		separators:   defaultSeparators,
	}, nil
}

// WithLengthFunc replaces the default rune-count length function
func (s *Splitter) WithLengthFunc(fn LengthFunc) *Splitter {
	if fn != nil {
		s.lengthFn = fn
	}
	return s
}

// ChunkSize returns the configured chunk size
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

func (s *Splitter) length(text string) int {
	return s.lengthFn(text)
}

// Split decomposes text into chunks. Empty or whitespace-only input produces
// no chunks; input within the chunk size produces a single trimmed chunk.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	for _, seg := range splitByFences(text) {
		if seg.code {
			chunks = append(chunks, s.splitCodeBlock(seg.text)...)
			continue
		}
		chunks = append(chunks, s.splitRecursive(seg.text, s.separators)...)
	}
	return chunks
}

// splitRecursive applies separator descent: split on the highest-priority
// separator, greedily merge pieces into blocks, and recurse into any piece
// that still exceeds the chunk size using the remaining separators.
func (s *Splitter) splitRecursive(text string, separators []string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if s.length(trimmed) <= s.chunkSize {
		return []string{trimmed}
	}
	if len(separators) == 0 {
		return s.sliceFixed(trimmed)
	}

	sep := separators[0]
	rest := separators[1:]
	if sep == "" {
		return s.sliceFixed(trimmed)
	}

	pieces := strings.Split(text, sep)

	var chunks []string
	var fitting []string
	for _, piece := range pieces {
		if s.length(piece) <= s.chunkSize {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			chunks = append(chunks, s.merge(fitting, sep)...)
			fitting = nil
		}
		chunks = append(chunks, s.splitRecursive(piece, rest)...)
	}
	if len(fitting) > 0 {
		chunks = append(chunks, s.merge(fitting, sep)...)
	}
	return chunks
}

// merge greedily packs consecutive pieces into blocks not exceeding the chunk
// size, accounting for the joining separator. Closing a block seeds the next
// one with an overlap suffix taken from its tail. The seed is dropped when the
// next piece cannot fit beside it (a hard boundary).
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := s.length(sep)

	var chunks []string
	var current []string
	currentLen := 0
	hasNew := false // current holds at least one piece beyond the overlap seed

	closeBlock := func() {
		chunk := strings.TrimSpace(strings.Join(current, sep))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current = nil
		currentLen = 0
		hasNew = false
		if s.chunkOverlap > 0 && chunk != "" {
			if suffix := s.overlapSuffix(chunk); suffix != "" {
				current = []string{suffix}
				currentLen = s.length(suffix)
			}
		}
	}

	for _, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		pieceLen := s.length(piece)

		addLen := pieceLen
		if len(current) > 0 {
			addLen += sepLen
		}
		if currentLen+addLen > s.chunkSize {
			if hasNew {
				closeBlock()
				addLen = pieceLen
				if len(current) > 0 {
					addLen += sepLen
				}
			}
			if currentLen+addLen > s.chunkSize && len(current) > 0 && !hasNew {
				// Seed alone does not leave room for the piece, sacrifice the overlap
				current = nil
				currentLen = 0
				addLen = pieceLen
			}
		}

		current = append(current, piece)
		currentLen += addLen
		hasNew = true
	}

	if hasNew {
		chunk := strings.TrimSpace(strings.Join(current, sep))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// overlapSuffix returns the longest trailing suffix of block measuring at most
// the configured overlap
func (s *Splitter) overlapSuffix(block string) string {
	if s.chunkOverlap <= 0 {
		return ""
	}
	runes := []rune(block)
	start := len(runes)
	for start > 0 {
		candidate := string(runes[start-1:])
		if s.length(candidate) > s.chunkOverlap {
			break
		}
		start--
	}
	if start == len(runes) {
		return ""
	}
	return string(runes[start:])
}

// sliceFixed is the innermost fallback: fixed-width slicing with a stride of
// chunkSize - chunkOverlap. Slicing is rune-based.
func (s *Splitter) sliceFixed(text string) []string {
	runes := []rune(text)
	stride := s.chunkSize - s.chunkOverlap

	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// splitCodeBlock emits a fenced block whole when it fits, otherwise splits it
// by line so no statement is truncated. A single line longer than the chunk
// size is emitted whole.
func (s *Splitter) splitCodeBlock(block string) []string {
	trimmed := strings.TrimRight(block, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return nil
	}
	if s.length(trimmed) <= s.chunkSize {
		return []string{trimmed}
	}

	lines := strings.Split(trimmed, "\n")
	var chunks []string
	var current []string
	currentLen := 0
	for _, line := range lines {
		lineLen := s.length(line)
		addLen := lineLen
		if len(current) > 0 {
			addLen += 1 // joining newline
		}
		if currentLen+addLen > s.chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
			currentLen = 0
			addLen = lineLen
		}
		current = append(current, line)
		currentLen += addLen
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}

type segment struct {
	text string
	code bool
}

// splitByFences partitions text into free-text and fenced-code segments.
// Fence delimiter lines belong to the code segment. An unclosed fence runs to
// the end of the text.
func splitByFences(text string) []segment {
	if !strings.Contains(text, "```") {
		return []segment{{text: text}}
	}

	lines := strings.Split(text, "\n")
	var segments []segment
	var buf []string
	inCode := false

	flush := func(code bool) {
		if len(buf) == 0 {
			return
		}
		segments = append(segments, segment{text: strings.Join(buf, "\n"), code: code})
		buf = nil
	}

	for _, line := range lines {
		isFence := strings.HasPrefix(strings.TrimLeft(line, " \t"), "```")
		switch {
		case isFence && !inCode:
			flush(false)
			inCode = true
			buf = append(buf, line)
		case isFence && inCode:
			buf = append(buf, line)
			flush(true)
			inCode = false
		default:
			buf = append(buf, line)
		}
	}
	flush(inCode)
	return segments
}
