package record

import "sort"

// Set is the ordered record collection for one repository, keyed by PR number.
type Set struct {
	repo    string
	byNum   map[int]PullRequest
	ordered []int
	dirty   bool
}

// NewSet creates an empty record set for the given repository.
func NewSet(repo string) *Set {
	return &Set{
		repo:  repo,
		byNum: make(map[int]PullRequest),
	}
}

// Repo returns the repository this set belongs to.
func (s *Set) Repo() string {
	return s.repo
}

// Len returns the number of records in the set.
func (s *Set) Len() int {
	return len(s.byNum)
}

// Get returns the record with the given number, if present.
func (s *Set) Get(number int) (PullRequest, bool) {
	pr, ok := s.byNum[number]
	return pr, ok
}

// Upsert inserts or replaces a record by PR number. A stored final record is
// never replaced by a non-final observation (an enrichment pass that predates
// the closure); open records are always refreshed. Returns true if the set
// changed.
func (s *Set) Upsert(pr PullRequest) (bool, error) {
	if pr.Repo != s.repo {
		return false, ErrRepoMismatch
	}
	if pr.Number <= 0 {
		return false, ErrInvalidNumber
	}

	existing, ok := s.byNum[pr.Number]
	if ok && existing.IsFinal() && !pr.IsFinal() {
		return false, nil
	}

	if !ok {
		s.dirty = true
	}
	s.byNum[pr.Number] = pr
	return true, nil
}

// Records returns all records sorted ascending by PR number.
func (s *Set) Records() []PullRequest {
	if s.dirty || s.ordered == nil {
		s.ordered = make([]int, 0, len(s.byNum))
		for n := range s.byNum {
			s.ordered = append(s.ordered, n)
		}
		sort.Ints(s.ordered)
		s.dirty = false
	}

	out := make([]PullRequest, 0, len(s.ordered))
	for _, n := range s.ordered {
		out = append(out, s.byNum[n])
	}
	return out
}

// HighestNumber returns the highest known PR number, or false for an empty
// set. Acquisition uses it to bound incremental fetches.
func (s *Set) HighestNumber() (int, bool) {
	highest := 0
	for n := range s.byNum {
		if n > highest {
			highest = n
		}
	}
	return highest, highest > 0
}
