package forms

import (
	"encoding/json"
	"maps"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Evaluator memoizes ComputeVisibility. Entries are keyed by a BLAKE2b-256
// digest of the JSON encoding of the form and answers, so a changed input
// never hits a stale entry. Safe for concurrent use.
type Evaluator struct {
	mu       sync.Mutex
	capacity int
	entries  map[[blake2b.Size256]byte]Visibility
	order    [][blake2b.Size256]byte
	hits     uint64
	misses   uint64
}

// NewEvaluator returns an evaluator keeping at most capacity results.
// A capacity of zero or less disables caching.
func NewEvaluator(capacity int) *Evaluator {
	return &Evaluator{
		capacity: capacity,
		entries:  make(map[[blake2b.Size256]byte]Visibility),
	}
}

// EvaluatorStats reports cache effectiveness.
type EvaluatorStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

// Visibility returns ComputeVisibility(f, answers), from cache when possible.
// The returned map is a copy the caller may modify.
func (e *Evaluator) Visibility(f *Form, answers map[string]Answer) Visibility {
	if e == nil || e.capacity <= 0 {
		return ComputeVisibility(f, answers)
	}
	key, ok := digest(f, answers)
	if !ok {
		return ComputeVisibility(f, answers)
	}

	e.mu.Lock()
	if v, found := e.entries[key]; found {
		e.hits++
		e.mu.Unlock()
		return maps.Clone(v)
	}
	e.misses++
	e.mu.Unlock()

	v := ComputeVisibility(f, answers)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, found := e.entries[key]; !found {
		if len(e.order) >= e.capacity {
			oldest := e.order[0]
			e.order = e.order[1:]
			delete(e.entries, oldest)
		}
		e.entries[key] = maps.Clone(v)
		e.order = append(e.order, key)
	}
	return v
}

func (e *Evaluator) Stats() EvaluatorStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EvaluatorStats{Hits: e.hits, Misses: e.misses, Entries: len(e.entries)}
}

// Reset drops every cached entry.
func (e *Evaluator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = make(map[[blake2b.Size256]byte]Visibility)
	e.order = nil
}

// keyedAnswer pairs an answer with the map key the evaluator looks it up by,
// which need not match the answer's own question ID.
type keyedAnswer struct {
	Key    string `json:"key"`
	Answer Answer `json:"answer"`
}

func digest(f *Form, answers map[string]Answer) ([blake2b.Size256]byte, bool) {
	pairs := make([]keyedAnswer, 0, len(answers))
	for _, k := range sortedKeys(answers) {
		pairs = append(pairs, keyedAnswer{Key: k, Answer: answers[k]})
	}
	payload, err := json.Marshal(struct {
		Form    *Form         `json:"form"`
		Answers []keyedAnswer `json:"answers"`
	}{f, pairs})
	if err != nil {
		return [blake2b.Size256]byte{}, false
	}
	return blake2b.Sum256(payload), true
}
