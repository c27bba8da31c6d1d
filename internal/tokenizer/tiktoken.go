package tokenizer

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

var encodingNames = map[string]bool{
	"cl100k_base": true,
	"o200k_base":  true,
	"p50k_base":   true,
	"p50k_edit":   true,
	"r50k_base":   true,
}

// Context windows by model prefix; longest prefix wins.
var contextWindows = []struct {
	prefix string
	tokens int
}{
	{"gpt-4o", 128_000},
	{"gpt-4.1", 1_047_576},
	{"gpt-4-turbo", 128_000},
	{"gpt-4-32k", 32_768},
	{"gpt-4", 8_192},
	{"gpt-3.5-turbo", 16_385},
	{"o1", 200_000},
	{"o3", 200_000},
	{"text-embedding", 8_191},
	{"text-davinci", 4_097},
	{"davinci", 2_049},
}

const defaultTiktokenContext = 8_191

// Tiktoken wraps a BPE encoding from tiktoken-go.
type Tiktoken struct {
	enc        *tiktoken.Tiktoken
	maxContext int
}

// TiktokenLoader resolves modelID to a tiktoken encoding. The id may be an
// OpenAI model name or an encoding name such as "cl100k_base".
func TiktokenLoader(modelID string) (Tokenizer, error) {
	var (
		enc *tiktoken.Tiktoken
		err error
	)
	if encodingNames[modelID] {
		enc, err = tiktoken.GetEncoding(modelID)
	} else {
		enc, err = tiktoken.EncodingForModel(modelID)
	}
	if err != nil {
		return nil, fmt.Errorf("tiktoken %q: %w", modelID, err)
	}
	return &Tiktoken{enc: enc, maxContext: contextWindow(modelID)}, nil
}

// UseLocalEncodings makes every tiktoken encoding load from dir, e.g.
// dir/cl100k_base.tiktoken, instead of downloading it. A missing file fails
// the load, so the provider falls back to whitespace without network access.
func UseLocalEncodings(dir string) {
	tiktoken.SetBpeLoader(localBpeLoader{dir: dir, files: tiktoken.NewDefaultBpeLoader()})
}

type localBpeLoader struct {
	dir   string
	files tiktoken.BpeLoader
}

func (l localBpeLoader) LoadTiktokenBpe(file string) (map[string]int, error) {
	local := filepath.Join(l.dir, path.Base(file))
	if _, err := os.Stat(local); err != nil {
		return nil, fmt.Errorf("encoding %s not available offline: %w", path.Base(file), err)
	}
	return l.files.LoadTiktokenBpe(local)
}

func contextWindow(modelID string) int {
	best, size := 0, defaultTiktokenContext
	for _, w := range contextWindows {
		if strings.HasPrefix(modelID, w.prefix) && len(w.prefix) > best {
			best, size = len(w.prefix), w.tokens
		}
	}
	return size
}

func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(ids []int) string {
	return t.enc.Decode(ids)
}

func (t *Tiktoken) MaxContextLength() int { return t.maxContext }

// SpecialTokenOverhead is zero: chat encodings add no framing tokens to raw text.
func (t *Tiktoken) SpecialTokenOverhead(bool) int { return 0 }
