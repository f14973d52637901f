package embed

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/viant/vecserve/vector"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("What animal is a Mammal? Cats, dogs & glass wheels!")
	want := []string{"animal", "mammal", "cat", "dog", "glass", "wheel"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	if got := Tokenize("is the a of"); len(got) != 0 {
		t.Fatalf("expected only stop words to yield no tokens, got %v", got)
	}
}

func TestHashingDeterministic(t *testing.T) {
	ctx := context.Background()
	h := NewHashing(64)
	a, err := h.Embed(ctx, "cats are mammals")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, _ := h.Embed(ctx, "Cats are MAMMALS.")
	if len(a) != 64 || !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical 64-dim vectors, got %v vs %v", a, b)
	}
	zero, _ := h.Embed(ctx, "   ")
	for _, x := range zero {
		if x != 0 {
			t.Fatalf("expected zero vector for empty text")
		}
	}
}

func TestHashingMammalSimilarity(t *testing.T) {
	ctx := context.Background()
	h := NewHashing(DefaultDim)
	q, _ := h.Embed(ctx, "what animal is a mammal")
	docs := []string{"cats are mammals", "dogs are mammals", "cars have wheels"}
	var sims []float64
	for _, d := range docs {
		v, _ := h.Embed(ctx, d)
		sims = append(sims, 1-vector.CosineDistance(q, vector.Magnitude(q), v, vector.Magnitude(v)))
	}
	if sims[0] <= sims[2] || sims[1] <= sims[2] {
		t.Fatalf("expected mammal documents to outrank cars, got %v", sims)
	}
}

func TestTFIDF(t *testing.T) {
	ctx := context.Background()
	model := NewTFIDF(100)
	if _, err := model.Embed(ctx, "cat"); err == nil {
		t.Fatalf("expected untrained model to fail")
	}
	if err := model.Train([]string{"cats are mammals", "dogs are mammals", "cars have wheels"}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	// mammal appears twice, the rest once and sorted alphabetically
	if model.Dim() != 5 || model.words[0] != "mammal" || model.words[1] != "car" {
		t.Fatalf("unexpected vocabulary: %v", model.words)
	}
	v, err := model.Embed(ctx, "wheels wheels unknown")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	idx := model.vocabulary["wheel"]
	if v[idx] <= 0 {
		t.Fatalf("expected positive weight for wheel, got %v", v)
	}

	path := filepath.Join(t.TempDir(), DefaultModelFile)
	if err := model.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := LoadTFIDF(path)
	if err != nil {
		t.Fatalf("LoadTFIDF failed: %v", err)
	}
	w, _ := loaded.Embed(ctx, "wheels wheels unknown")
	if !reflect.DeepEqual(v, w) {
		t.Fatalf("loaded model embeds differently: %v vs %v", v, w)
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{Normalize: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p.Name() != NameHashing || p.Dim() != DefaultDim || !p.Normalize() {
		t.Fatalf("unexpected provider %s/%d", p.Name(), p.Dim())
	}
	v, err := p.Embed(ctx, "dogs dogs cats")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if m := vector.Magnitude(v); math.Abs(float64(m)-1) > 1e-5 {
		t.Fatalf("expected unit vector, got magnitude %v", m)
	}

	if _, err := New(Config{Name: "openai"}); !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if _, err := New(Config{Name: NameTFIDF, ModelFile: filepath.Join(t.TempDir(), "missing.json")}); !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestProviderQueryPrefix(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(NewHashing(32), "search wheel: ", false)
	q, _ := p.Embed(ctx, "cars")
	d, _ := p.EmbedDocument(ctx, "cars")
	if reflect.DeepEqual(q, d) {
		t.Fatalf("expected query prefix to change the query embedding")
	}
	plain, _ := NewHashing(32).Embed(ctx, "cars")
	if !reflect.DeepEqual(d, plain) {
		t.Fatalf("expected documents to be embedded without the prefix")
	}
}

func TestEmbedCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHashing(8).Embed(ctx, "cat"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
