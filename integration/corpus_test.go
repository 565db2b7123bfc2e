// Package integration provides end-to-end tests against the DBC test corpus.
//
// The corpus lives in testdata/corpus/, one directory per code page. Every
// file is loaded once through godbc.LoadAll and the tests make assertions
// against the validated model and its round trips.
//
// # Adding Test Cases
//
//  1. Add the DBC file under the directory named after its code page
//  2. Make sure it loads without diagnostics in a DBC editor
//  3. Add assertions to model_test.go; round trips cover it automatically
//
// # File Organization
//
//   - corpus_test.go: shared infrastructure and basic load test
//   - model_test.go: signals, multiplexing, attributes, environment variables
//   - roundtrip_test.go: text and document round trips of every file
package integration

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangcan/godbc"
)

// corpusFile is one loaded corpus file.
type corpusFile struct {
	Path        string
	CodePage    string
	Data        []byte
	Database    *godbc.Database
	Diagnostics []godbc.Diagnostic
}

// corpus holds every file of the corpus, keyed by base name. Loaded once
// via loadCorpus().
var (
	corpus     map[string]*corpusFile
	corpusOnce sync.Once
	corpusErr  error
)

func corpusPath() string {
	return filepath.Join("testdata", "corpus")
}

// loadCorpus loads the entire corpus once and caches the result.
func loadCorpus(t *testing.T) map[string]*corpusFile {
	t.Helper()

	corpusOnce.Do(func() {
		corpus, corpusErr = readCorpus(corpusPath())
	})

	if corpusErr != nil {
		t.Fatalf("failed to load corpus: %v", corpusErr)
	}
	return corpus
}

func readCorpus(root string) (map[string]*corpusFile, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	files := make(map[string]*corpusFile)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		codePage := e.Name()
		src, err := godbc.Dir(filepath.Join(root, codePage))
		if err != nil {
			return nil, err
		}
		for _, r := range godbc.LoadAll(context.Background(), []godbc.Source{src},
			godbc.WithCodePage(codePage)) {
			if r.Err != nil {
				return nil, r.Err
			}
			data, err := os.ReadFile(r.Name)
			if err != nil {
				return nil, err
			}
			files[filepath.Base(r.Name)] = &corpusFile{
				Path:        r.Name,
				CodePage:    codePage,
				Data:        data,
				Database:    r.Result.Database,
				Diagnostics: r.Result.Diagnostics,
			}
		}
	}
	return files, nil
}

// getFile retrieves a corpus file by base name and fails if not found.
func getFile(t *testing.T, name string) *corpusFile {
	t.Helper()
	f, ok := loadCorpus(t)[name]
	require.True(t, ok, "corpus file %s not found", name)
	return f
}

// getSignal retrieves a signal by message name and signal name.
func getSignal(t *testing.T, file, message, signal string) *godbc.Signal {
	t.Helper()
	msg := getFile(t, file).Database.MessageByName(message)
	require.NotNil(t, msg, "message %s not found in %s", message, file)
	sig := msg.Signal(signal)
	require.NotNil(t, sig, "signal %s not found in %s", signal, message)
	return sig
}

func TestCorpusLoads(t *testing.T) {
	files := loadCorpus(t)
	require.Len(t, files, 3)
	for name, f := range files {
		t.Run(name, func(t *testing.T) {
			require.True(t, f.Database.Validated())
			require.Empty(t, f.Diagnostics)
		})
	}
}
