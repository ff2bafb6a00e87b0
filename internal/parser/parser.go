// Package parser turns exported chat transcripts into message records.
package parser

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"
	"time"
)

// Record is one parsed message. Line is the 1-based line of its header.
type Record struct {
	Timestamp     time.Time
	Sender        string
	Content       string
	IsSystem      bool
	HasMedia      bool
	MediaType     string
	MediaFilename string
	Grammar       string
	Line          int
}

// Stats describes one parse pass.
type Stats struct {
	Lines         int
	Headers       int
	Continuations int
	Dropped       int // continuation lines before the first header
	DateErrors    int
	Split         int // records split out of another record's content
}

const maxLineSize = 16 * 1024 * 1024

var lineCleaner = strings.NewReplacer(
	"\ufeff", "",
	"\u200e", "",
	"\u200f", "",
	"\u202f", " ",
	"\u00a0", " ",
)

// embeddedAttachment finds a media header folded into another message body.
var embeddedAttachment = regexp.MustCompile(
	`\[?\d{1,4}[/.\-]\d{1,2}[/.\-]\d{2,4},? \d{1,2}:\d{2}(?::\d{2})?(?:\s?[AaPp]\.?[Mm]\.?)?\]?(?: -)? [^:\n]+: <attached: [^>\n]+>`,
)

func Parse(r io.Reader) ([]Record, error) {
	records, _, err := ParseWithStats(r)
	return records, err
}

func ParseString(s string) []Record {
	records, _, _ := ParseWithStats(strings.NewReader(s))
	return records
}

// ParseWithStats parses r in a single forward pass, splits embedded
// attachment headers and classifies every record.
func ParseWithStats(r io.Reader) ([]Record, Stats, error) {
	var (
		stats   Stats
		records []Record
		current *Record
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	sc.Split(scanLines)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := lineCleaner.Replace(sc.Text())
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Lines++

		h, errs, ok := matchHeader(line)
		stats.DateErrors += len(errs)
		if ok {
			if current != nil {
				records = append(records, *current)
			}
			stats.Headers++
			current = &Record{
				Timestamp: h.timestamp,
				Sender:    h.sender,
				Content:   h.text,
				Grammar:   h.grammar,
				Line:      lineNo,
			}
			continue
		}

		if current == nil {
			stats.Dropped++
			continue
		}
		stats.Continuations++
		current.Content += "\n" + line
	}
	if err := sc.Err(); err != nil {
		return nil, stats, err
	}
	if current != nil {
		records = append(records, *current)
	}

	records, stats.Split = splitEmbedded(records)
	for i := range records {
		classify(&records[i])
	}
	return records, stats, nil
}

// splitEmbedded splits records whose content carries a folded attachment
// header, repeating until none is left.
func splitEmbedded(in []Record) ([]Record, int) {
	out := make([]Record, 0, len(in))
	split := 0
	for _, rec := range in {
		for {
			loc := embeddedAttachment.FindStringIndex(rec.Content)
			if loc == nil || loc[0] == 0 {
				break
			}
			rest := rec.Content[loc[0]:]
			first, tail, _ := strings.Cut(rest, "\n")
			h, _, ok := matchHeader(first)
			if !ok {
				break
			}

			lead := strings.TrimRight(rec.Content[:loc[0]], " \t\n")
			if strings.TrimSpace(lead) != "" {
				leading := rec
				leading.Content = lead
				out = append(out, leading)
			}
			split++

			content := h.text
			if tail != "" {
				content += "\n" + tail
			}
			rec = Record{
				Timestamp: h.timestamp,
				Sender:    h.sender,
				Content:   content,
				Grammar:   h.grammar,
				Line:      rec.Line,
			}
		}
		out = append(out, rec)
	}
	return out, split
}

func classify(rec *Record) {
	rec.IsSystem = rec.Sender == "" || IsSystemMessage(rec.Content)
	if rec.IsSystem {
		return
	}
	if category, filename, ok := ClassifyMedia(rec.Content); ok {
		rec.HasMedia = true
		rec.MediaType = category
		rec.MediaFilename = filename
	}
}

// scanLines splits on \n, \r\n and lone \r.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				// \r\n olabilir, daha fazla veri iste
				return 0, nil, nil
			}
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
