package ml

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNotFitted   = errors.New("vectorizer not fitted; call Fit first")
	ErrEmptyCorpus = errors.New("cannot fit on empty corpus")
)

const (
	defaultMaxFeatures = 500 // vocabulary cap
	defaultMaxDocFreq  = 0.8 // drop terms appearing in more than 80% of documents
	defaultMinDocFreq  = 1
)

var tokenPattern = regexp.MustCompile(`[a-z0-9_]+`)

// accentFolder strips combining marks after NFD decomposition, so
// "résumé" and "resume" tokenize identically.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SkillVectorizer turns skill descriptions into TF-IDF vectors over a
// learned vocabulary of unigrams and bigrams. Refitting replaces the
// vocabulary; there is no persisted model state.
type SkillVectorizer struct {
	maxFeatures int
	maxDocFreq  float64
	minDocFreq  int

	vocabulary map[string]int
	terms      []string
	idf        []float64
	fitted     bool
}

func NewSkillVectorizer() *SkillVectorizer {
	return &SkillVectorizer{
		maxFeatures: defaultMaxFeatures,
		maxDocFreq:  defaultMaxDocFreq,
		minDocFreq:  defaultMinDocFreq,
	}
}

// Fit learns the vocabulary and inverse document frequencies from the
// corpus. It may be called again to retrain from scratch.
func (v *SkillVectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return ErrEmptyCorpus
	}

	cleaned := cleanDocuments(corpus)

	// Document frequency and total count per term.
	df := make(map[string]int)
	totals := make(map[string]int)
	for _, doc := range cleaned {
		grams := v.analyze(doc)
		seen := make(map[string]struct{}, len(grams))
		for _, g := range grams {
			totals[g]++
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			df[g]++
		}
	}

	// Apply document-frequency bounds.
	maxDocs := v.maxDocFreq * float64(len(cleaned))
	candidates := make([]string, 0, len(df))
	for term, count := range df {
		if count < v.minDocFreq || float64(count) > maxDocs {
			continue
		}
		candidates = append(candidates, term)
	}
	if len(candidates) == 0 {
		return errors.New("empty vocabulary after document-frequency filtering")
	}

	// Cap vocabulary to the most frequent terms, ties broken alphabetically.
	if len(candidates) > v.maxFeatures {
		sort.Slice(candidates, func(i, j int) bool {
			if totals[candidates[i]] != totals[candidates[j]] {
				return totals[candidates[i]] > totals[candidates[j]]
			}
			return candidates[i] < candidates[j]
		})
		candidates = candidates[:v.maxFeatures]
	}
	sort.Strings(candidates)

	n := float64(len(cleaned))
	v.terms = candidates
	v.vocabulary = make(map[string]int, len(candidates))
	v.idf = make([]float64, len(candidates))
	for i, term := range candidates {
		v.vocabulary[term] = i
		// Smoothed IDF: ln((1+N)/(1+df)) + 1
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	v.fitted = true
	return nil
}

// Transform maps each document to an L2-normalized TF-IDF vector over the
// fitted vocabulary. Empty input yields an empty matrix, not an error.
func (v *SkillVectorizer) Transform(docs []string) ([][]float64, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	if len(docs) == 0 {
		return [][]float64{}, nil
	}

	out := make([][]float64, len(docs))
	for i, doc := range cleanDocuments(docs) {
		vec := make([]float64, len(v.terms))
		for _, g := range v.analyze(doc) {
			if idx, ok := v.vocabulary[g]; ok {
				vec[idx] += v.idf[idx]
			}
		}
		out[i] = Normalize(vec)
	}
	return out, nil
}

// FitTransform fits on the corpus and transforms it in one step.
func (v *SkillVectorizer) FitTransform(corpus []string) ([][]float64, error) {
	if err := v.Fit(corpus); err != nil {
		return nil, err
	}
	return v.Transform(corpus)
}

// Similarity computes pairwise cosine similarity between rows of a and
// rows of b, clipped to [0, 1]. Either side empty yields an empty matrix.
func (v *SkillVectorizer) Similarity(a, b [][]float64) [][]float64 {
	if len(a) == 0 || len(b) == 0 {
		return [][]float64{}
	}
	out := make([][]float64, len(a))
	for i, row := range a {
		out[i] = make([]float64, len(b))
		for j, col := range b {
			s := CosineSimilarity(row, col)
			if s < 0 {
				s = 0
			} else if s > 1 {
				s = 1
			}
			out[i][j] = s
		}
	}
	return out
}

// VocabularySize reports the number of learned features, 0 before fitting.
func (v *SkillVectorizer) VocabularySize() int {
	if !v.fitted {
		return 0
	}
	return len(v.terms)
}

// FeatureNames returns the learned vocabulary in index order.
func (v *SkillVectorizer) FeatureNames() ([]string, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	names := make([]string, len(v.terms))
	copy(names, v.terms)
	return names, nil
}

// analyze produces the stopword-filtered unigram and bigram stream of a
// document after case folding and accent stripping.
func (v *SkillVectorizer) analyze(doc string) []string {
	folded, _, err := transform.String(accentFolder, strings.ToLower(doc))
	if err != nil {
		folded = strings.ToLower(doc)
	}

	raw := tokenPattern.FindAllString(folded, -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) < 2 {
			continue
		}
		if _, stop := englishStopwords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}

	grams := make([]string, 0, 2*len(tokens))
	grams = append(grams, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		grams = append(grams, tokens[i]+" "+tokens[i+1])
	}
	return grams
}

// cleanDocuments collapses internal whitespace and substitutes a
// placeholder for blank entries so row indexing never misaligns.
func cleanDocuments(docs []string) []string {
	cleaned := make([]string, len(docs))
	for i, d := range docs {
		c := strings.Join(strings.Fields(d), " ")
		if c == "" {
			c = "unknown skill"
		}
		cleaned[i] = c
	}
	return cleaned
}

// CosineSimilarity returns the raw cosine similarity of two vectors, 0
// when either has zero norm or lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
