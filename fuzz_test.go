package gunnyscript_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KimNorgaard/go-gunnyscript"
	"github.com/KimNorgaard/go-gunnyscript/token"
)

func scanChunked(t *testing.T, data []byte, size int) ([]token.Token, error) {
	t.Helper()
	s, err := gunnyscript.NewScanner()
	require.NoError(t, err)
	var toks []token.Token
	drain := func() error {
		for {
			tok, err := s.Next()
			if err != nil {
				return err
			}
			toks = append(toks, tok)
		}
	}
	for len(data) > 0 {
		n := min(size, len(data))
		require.NoError(t, s.Feed(data[:n]))
		data = data[n:]
		if err := drain(); !errors.Is(err, gunnyscript.ErrIncomplete) {
			if err == io.EOF {
				err = nil
			}
			return toks, err
		}
	}
	s.Close()
	if err := drain(); err != io.EOF {
		return toks, err
	}
	return toks, nil
}

func FuzzStreaming(f *testing.F) {
	// Seed the corpus with the testdata documents.
	seedFiles, err := filepath.Glob("testdata/*.gunny")
	if err != nil {
		f.Fatalf("failed to find seed files: %v", err)
	}
	for _, file := range seedFiles {
		data, err := os.ReadFile(file)
		if err != nil {
			f.Fatalf("failed to read seed file %s: %v", file, err)
		}
		f.Add(data, uint8(1))
	}

	f.Add([]byte("{}"), uint8(1))
	f.Add([]byte("[]"), uint8(2))
	f.Add([]byte("null"), uint8(3))
	f.Add([]byte(`"a simple string"`), uint8(1))
	f.Add([]byte("2020-01-02T12:54:00Z"), uint8(4))
	f.Add([]byte("d#\"\n  x\n\"#"), uint8(1))
	f.Add([]byte("\"\xe2\x82\xac\""), uint8(1))

	f.Fuzz(func(t *testing.T, data []byte, size uint8) {
		whole, wholeErr := gunnyscript.Tokenize(data)
		chunked, chunkedErr := scanChunked(t, data, int(size)+1)

		// Splitting the input never changes the outcome.
		if wholeErr != nil {
			require.Error(t, chunkedErr)
			require.Equal(t, wholeErr.Error(), chunkedErr.Error())
			return
		}
		require.NoError(t, chunkedErr)
		require.Equal(t, whole, chunked)

		// A document that parses can be formatted, and formatting is stable.
		doc, err := gunnyscript.Build(whole)
		if err != nil {
			return
		}
		out, err := gunnyscript.Marshal(doc)
		if err != nil {
			// Property names from the source are always valid; only
			// strings needing a fence longer than allowed are quoted.
			t.Fatalf("Marshal failed for a parsed document: %v", err)
		}
		again, err := gunnyscript.Format(out)
		require.NoError(t, err, "Format failed on our own output:\n%s", out)
		require.Equal(t, string(out), string(again))
	})
}
