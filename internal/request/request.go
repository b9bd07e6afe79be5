package request

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Kind describes what a wish-list line is asking for.
type Kind string

const (
	KindSong   Kind = "song"
	KindMovie  Kind = "movie"
	KindGenre  Kind = "genre"
	KindArtist Kind = "artist"
	KindFolder Kind = "folder"
)

// Request is one wish-list item: the text to match and how to treat it.
type Request struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

var kindPrefixes = map[string]Kind{
	"song":   KindSong,
	"movie":  KindMovie,
	"genre":  KindGenre,
	"artist": KindArtist,
	"folder": KindFolder,
}

// ParseList reads a wish list: one request per non-empty line, lines
// starting with # are comments, and an optional "kind:" prefix selects the
// request kind (default song).
func ParseList(r io.Reader) ([]Request, error) {
	var requests []Request

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		requests = append(requests, parseLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read wish list: %w", err)
	}
	return requests, nil
}

// ParseFile reads a wish list from disk.
func ParseFile(path string) ([]Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wish list: %w", err)
	}
	defer file.Close()
	return ParseList(file)
}

func parseLine(line string) Request {
	if idx := strings.Index(line, ":"); idx > 0 {
		prefix := strings.ToLower(strings.TrimSpace(line[:idx]))
		if kind, ok := kindPrefixes[prefix]; ok {
			if text := strings.TrimSpace(line[idx+1:]); text != "" {
				return Request{Kind: kind, Text: text}
			}
		}
	}
	return Request{Kind: KindSong, Text: line}
}
