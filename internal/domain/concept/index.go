package concept

import (
	"math"
	"sort"
	"strings"
	"unicode"

	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Match is a single fuzzy-search hit: a catalog concept and its cosine
// similarity to the query in (0, 1].
type Match struct {
	Concept *Concept
	Score   float64
}

// Index is a TF-IDF similarity index over a catalog.  It is built once and is
// safe for concurrent readers; hot reload replaces the whole index rather
// than mutating it.
type Index struct {
	catalog *Catalog
	idf     map[string]float64
	vectors []map[string]float64 // one L2-normalised weight vector per concept, catalog order
}

// BuildIndex computes the TF-IDF model over the catalog's search texts.  Term
// weights use the smoothed inverse document frequency
// ln((1+N)/(1+df)) + 1 and every document vector is L2-normalised, so cosine
// similarity reduces to a dot product at query time.
func BuildIndex(catalog *Catalog) (*Index, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, apperrors.New(apperrors.ErrCodeIndexBuildFailed, "cannot build index over an empty catalog")
	}

	n := catalog.Len()
	counts := make([]map[string]float64, n)
	df := make(map[string]int)

	for i := 0; i < n; i++ {
		tf := termCounts(catalog.at(i).SearchText())
		counts[i] = tf
		for term := range tf {
			df[term]++
		}
	}

	idf := make(map[string]float64, len(df))
	for term, d := range df {
		idf[term] = math.Log(float64(1+n)/float64(1+d)) + 1
	}

	vectors := make([]map[string]float64, n)
	for i, tf := range counts {
		vectors[i] = normalize(weigh(tf, idf))
	}

	return &Index{catalog: catalog, idf: idf, vectors: vectors}, nil
}

// Catalog returns the catalog the index was built over.
func (ix *Index) Catalog() *Catalog {
	return ix.catalog
}

// Search ranks catalog concepts by cosine similarity to the query and returns
// the top matches with score strictly above minSimilarity, best first.  Ties
// keep catalog order.  An empty query, or one sharing no vocabulary with the
// catalog, yields an empty result and no error.
func (ix *Index) Search(query string, limit int, minSimilarity float64) []Match {
	if limit <= 0 {
		return nil
	}

	qv := normalize(weigh(termCounts(strings.ToLower(query)), ix.idf))
	if len(qv) == 0 {
		return nil
	}

	matches := make([]Match, 0, limit)
	for i, dv := range ix.vectors {
		score := dot(qv, dv)
		if score > minSimilarity {
			matches = append(matches, Match{Concept: ix.catalog.at(i), Score: score})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// termCounts tokenises text into raw term counts.  Tokens are maximal runs of
// letters, digits or underscores at least two characters long; shorter runs
// carry no signal and are dropped.
func termCounts(text string) map[string]float64 {
	counts := make(map[string]float64)
	var b strings.Builder
	flush := func() {
		if b.Len() >= 2 {
			counts[b.String()]++
		}
		b.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return counts
}

func weigh(tf map[string]float64, idf map[string]float64) map[string]float64 {
	w := make(map[string]float64, len(tf))
	for term, count := range tf {
		if f, ok := idf[term]; ok {
			w[term] = count * f
		}
	}
	return w
}

func normalize(v map[string]float64) map[string]float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	if sum == 0 {
		return nil
	}
	norm := math.Sqrt(sum)
	for term := range v {
		v[term] /= norm
	}
	return v
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var s float64
	for term, wa := range a {
		if wb, ok := b[term]; ok {
			s += wa * wb
		}
	}
	return s
}
