// Package runtime hosts the state engine and its serialized command loop.
// This file loads the embedded moderation wordlists.
package runtime

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"chat-hub/errors"
)

//go:embed censored/*
var censoredFS embed.FS

// WordlistData carries the parsed lists plus metadata for logging.
type WordlistData struct {
	Words     []string
	Languages []string
}

// LoadWordlists reads every .txt file under the embedded censored/
// directory, one forbidden word per line, deduplicated across languages.
func LoadWordlists() (*WordlistData, error) {
	entries, err := fs.ReadDir(censoredFS, "censored")
	if err != nil {
		return nil, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() {
			return nil, errors.ErrOnlyCensoredFiles
		}

		// The filename is the language tag (e.g. "fr.txt" -> "fr").
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := censoredFS.ReadFile("censored/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// A scanner handles both \n and \r\n endings.
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				uniqueWords[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(uniqueWords) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(uniqueWords))
	for w := range uniqueWords {
		words = append(words, w)
	}
	return &WordlistData{Words: words, Languages: languages}, nil
}
