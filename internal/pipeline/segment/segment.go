package segment

import (
	"errors"
	"strings"

	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
)

// ErrBadChunking is a configuration error: a window that never
// advances would loop forever.
var ErrBadChunking = errors.New("chunk size must be greater than overlap")

// Segment splits a document's raw text on whitespace into overlapping
// word windows. Each window spans chunkSize words, each subsequent
// window starts chunkSize-overlap words after the previous start.
// Windows whose re-joined text is not longer than minChars after
// trimming are dropped as trailing fragments.
func Segment(doc chunkmodel.Document, chunkSize, overlap, minChars int) ([]chunkmodel.RawChunk, error) {
	if chunkSize <= overlap {
		return nil, ErrBadChunking
	}

	words := strings.Fields(doc.RawText)
	stride := chunkSize - overlap

	var chunks []chunkmodel.RawChunk
	sequence := 0
	for start := 0; start < len(words); start += stride {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		text := strings.Join(words[start:end], " ")
		if len(strings.TrimSpace(text)) > minChars {
			chunks = append(chunks, chunkmodel.RawChunk{
				DocumentSource: doc.Source,
				Text:           text,
				SequenceIndex:  sequence,
			})
			sequence++
		}
		// A window that already reaches the end of the document makes any
		// further window a strict subset of it.
		if end == len(words) {
			break
		}
	}
	return chunks, nil
}
