package openrouter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"iter"
	"strings"
)

const (
	doneMarker = "[DONE]"

	// Lines longer than this are discarded unread.
	maxEventSize = 1 << 20
)

type streamEvent struct {
	Error   *apiError `json:"error"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// decodeEvents reads server-sent events from r and yields the text fragment
// of each event's first choice. It stops at the [DONE] marker, at the end of
// r, or after yielding an error. Data lines that are not valid JSON and lines
// longer than maxEventSize are skipped and reported to onSkip, which may be
// nil.
func decodeEvents(r io.Reader, onSkip func()) iter.Seq2[string, error] {
	skip := func() {
		if onSkip != nil {
			onSkip()
		}
	}
	return func(yield func(string, error) bool) {
		br := bufio.NewReaderSize(r, 64*1024)
		for {
			line, tooLong, err := readLine(br)
			if tooLong {
				skip()
			} else if data, ok := dataPayload(string(line)); ok {
				if data == doneMarker {
					return
				}
				var ev streamEvent
				switch {
				case json.Unmarshal([]byte(data), &ev) != nil:
					skip()
				case ev.Error != nil:
					yield("", upstreamError(ev.Error))
					return
				case len(ev.Choices) > 0 && ev.Choices[0].Delta.Content != "":
					if !yield(ev.Choices[0].Delta.Content, nil) {
						return
					}
				}
			}

			if err == io.EOF {
				return
			}
			if err != nil {
				yield("", mapError(err))
				return
			}
		}
	}
}

// readLine returns the next line without its terminator. A line over
// maxEventSize is consumed to its end and reported as tooLong with no
// content.
func readLine(br *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		var chunk []byte
		chunk, err = br.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > maxEventSize+len("\r\n") {
				line, tooLong = nil, true
			}
		}
		if err != bufio.ErrBufferFull {
			return bytes.TrimRight(line, "\r\n"), tooLong, err
		}
	}
}

// dataPayload returns the payload of an SSE "data:" line. Comments, blank
// lines and other fields report false.
func dataPayload(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "data:")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
