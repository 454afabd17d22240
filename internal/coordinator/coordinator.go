// Package coordinator splits a source document into blocks and guesses,
// by heuristic line scoring, which sub-parser should handle each block:
// the Kumihan notation parser or the Markdown converter.
package coordinator

import "strings"

// Kind identifies the sub-parser responsible for a block.
type Kind int

const (
	// KindMarkdown routes the block to the Markdown converter.
	KindMarkdown Kind = iota
	// KindKumihan routes the block to the Kumihan notation parser.
	KindKumihan
)

func (k Kind) String() string {
	if k == KindKumihan {
		return "kumihan"
	}
	return "markdown"
}

// Block is a contiguous run of source lines assigned to one sub-parser.
type Block struct {
	Kind      Kind
	Lines     []string
	StartLine int // 1-based line number of the first line
}

// openThreshold is the minimum score for a line to be treated as a
// Kumihan block opener. Malformed markers score below 1.0 but must still
// reach the notation parser so it can diagnose them.
const openThreshold = 0.5

// Score rates how strongly a line looks like a Kumihan marker line.
// 1.0 is a well-formed marker; lower positive scores are malformed
// variants (full-width, over-long runs) that still belong to the
// notation parser.
func Score(line string) float64 {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return 0
	case strings.HasPrefix(trimmed, ";;;;"):
		return 0.8 // over-long delimiter run
	case strings.HasPrefix(trimmed, ";;;"):
		return 1.0
	case strings.HasPrefix(trimmed, "；；；"):
		return 0.8 // full-width marker
	case strings.HasPrefix(trimmed, ";;"), strings.HasPrefix(trimmed, "；；"):
		return 0.6 // truncated marker run
	case strings.Contains(trimmed, "；；；"):
		return 0.5
	default:
		return 0
	}
}

// isClosing reports whether the line is a bare closing marker: a
// delimiter run with nothing after it.
func isClosing(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	return strings.Trim(trimmed, ";；") == ""
}

// Split partitions the source into blocks in document order. A Kumihan
// block runs from its opening marker line to the first bare closing
// marker (inclusive) or the end of input, so unterminated blocks still
// reach the notation parser in one piece. Everything else accumulates
// into Markdown blocks.
func Split(source string) []Block {
	lines := strings.Split(source, "\n")

	var blocks []Block
	var mdLines []string
	mdStart := 1

	flushMarkdown := func() {
		if len(mdLines) == 0 {
			return
		}
		blocks = append(blocks, Block{Kind: KindMarkdown, Lines: mdLines, StartLine: mdStart})
		mdLines = nil
	}

	i := 0
	for i < len(lines) {
		line := lines[i]

		if Score(line) >= openThreshold && !isClosing(line) {
			flushMarkdown()

			start := i
			block := Block{Kind: KindKumihan, StartLine: start + 1}
			block.Lines = append(block.Lines, line)
			i++
			for i < len(lines) {
				block.Lines = append(block.Lines, lines[i])
				if isClosing(lines[i]) {
					i++
					break
				}
				i++
			}
			blocks = append(blocks, block)
			mdStart = i + 1
			continue
		}

		if len(mdLines) == 0 {
			mdStart = i + 1
		}
		mdLines = append(mdLines, line)
		i++
	}

	flushMarkdown()
	return blocks
}
