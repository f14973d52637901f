package embed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
)

// DefaultModelFile is the TF-IDF model file name inside an artifact directory.
const DefaultModelFile = "tfidf.json"

const tfidfModelVersion = 1

// TFIDF is a TF-IDF text embedder. The vocabulary and IDF weights are
// fixed by Train or LoadTFIDF; afterwards the model is read-only.
type TFIDF struct {
	vocabulary map[string]int // word -> index
	words      []string       // index -> word
	idf        []float32
	maxDims    int
}

// NewTFIDF creates an untrained embedder keeping at most maxDims terms.
func NewTFIDF(maxDims int) *TFIDF {
	if maxDims <= 0 {
		maxDims = 4096
	}
	return &TFIDF{vocabulary: map[string]int{}, maxDims: maxDims}
}

// Train builds the vocabulary from a corpus. Terms are ranked by document
// frequency, ties broken alphabetically so the same corpus yields the same
// model.
func (t *TFIDF) Train(documents []string) error {
	if len(documents) == 0 {
		return errors.New("embed: cannot train tfidf on an empty corpus")
	}
	df := make(map[string]int)
	for _, doc := range documents {
		seen := make(map[string]bool)
		for _, word := range Tokenize(doc) {
			if !seen[word] {
				df[word]++
				seen[word] = true
			}
		}
	}

	type wordFreq struct {
		word string
		freq int
	}
	wf := make([]wordFreq, 0, len(df))
	for w, f := range df {
		wf = append(wf, wordFreq{w, f})
	}
	sort.Slice(wf, func(i, j int) bool {
		if wf[i].freq != wf[j].freq {
			return wf[i].freq > wf[j].freq
		}
		return wf[i].word < wf[j].word
	})
	if len(wf) > t.maxDims {
		wf = wf[:t.maxDims]
	}
	if len(wf) == 0 {
		return errors.New("embed: tfidf corpus has no terms")
	}

	t.vocabulary = make(map[string]int, len(wf))
	t.words = make([]string, len(wf))
	t.idf = make([]float32, len(wf))
	n := float64(len(documents))
	for i, w := range wf {
		t.vocabulary[w.word] = i
		t.words[i] = w.word
		// smoothed so terms present in every document keep a positive weight
		t.idf[i] = float32(math.Log((1+n)/(1+float64(w.freq))) + 1)
	}
	return nil
}

// Trained reports whether the vocabulary is built.
func (t *TFIDF) Trained() bool { return len(t.words) > 0 }

// Embed converts text to its TF-IDF vector. Unknown terms are ignored.
func (t *TFIDF) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !t.Trained() {
		return nil, errors.New("embed: tfidf model is not trained")
	}
	vec := make([]float32, len(t.words))
	words := Tokenize(text)
	tf := make(map[string]int)
	for _, w := range words {
		tf[w]++
	}
	for word, count := range tf {
		if idx, ok := t.vocabulary[word]; ok {
			vec[idx] = float32(count) / float32(len(words)) * t.idf[idx]
		}
	}
	return vec, nil
}

// Dim returns the vocabulary size.
func (t *TFIDF) Dim() int { return len(t.words) }

// Name returns "tfidf".
func (t *TFIDF) Name() string { return NameTFIDF }

type tfidfModel struct {
	Version    int       `json:"version"`
	Vocabulary []string  `json:"vocabulary"`
	IDF        []float32 `json:"idf"`
}

// Save writes the trained model as JSON.
func (t *TFIDF) Save(path string) error {
	if !t.Trained() {
		return errors.New("embed: tfidf model is not trained")
	}
	data, err := json.Marshal(tfidfModel{Version: tfidfModelVersion, Vocabulary: t.words, IDF: t.idf})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadTFIDF reads a model written by Save.
func LoadTFIDF(path string) (*TFIDF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m tfidfModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("embed: decode tfidf model: %w", err)
	}
	if m.Version != tfidfModelVersion {
		return nil, fmt.Errorf("embed: unsupported tfidf model version %d", m.Version)
	}
	if len(m.Vocabulary) == 0 || len(m.Vocabulary) != len(m.IDF) {
		return nil, fmt.Errorf("embed: tfidf model has %d terms and %d weights", len(m.Vocabulary), len(m.IDF))
	}
	t := &TFIDF{
		vocabulary: make(map[string]int, len(m.Vocabulary)),
		words:      m.Vocabulary,
		idf:        m.IDF,
		maxDims:    len(m.Vocabulary),
	}
	for i, w := range m.Vocabulary {
		if _, dup := t.vocabulary[w]; dup {
			return nil, fmt.Errorf("embed: tfidf model repeats term %q", w)
		}
		t.vocabulary[w] = i
	}
	return t, nil
}
