package batch

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/parse"
)

// Session aggregates the results of a batch of parses and tracks a current
// selection. Sessions are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	results  []*parse.Result
	selected int
}

// NewSession creates an empty session without selection.
func NewSession() *Session {
	return &Session{selected: -1}
}

// Add appends a result and returns its index.
func (s *Session) Add(r *parse.Result) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return len(s.results) - 1
}

// Len returns the number of results.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Results returns a copy of the results in order of addition.
func (s *Session) Results() []*parse.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*parse.Result(nil), s.results...)
}

// Select makes result i the current selection. -1 clears the selection.
func (s *Session) Select(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < -1 || i >= len(s.results) {
		return fmt.Errorf("no result with index %d", i)
	}
	s.selected = i
	return nil
}

// Selected returns the current selection, or nil.
func (s *Session) Selected() *parse.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected < 0 {
		return nil
	}
	return s.results[s.selected]
}

// Summary sums up the results of a session.
type Summary struct {
	Files    int
	Accepted int
	Lines    int
	Tokens   int
	Errors   int
	Elapsed  time.Duration
}

// Summary adds up the counts of all results.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum Summary
	for _, r := range s.results {
		sum.Files++
		if r.Accepted {
			sum.Accepted++
		}
		sum.Lines += r.Counts.Lines
		sum.Tokens += r.Counts.Tokens
		sum.Errors += r.Counts.Errors
		sum.Elapsed += r.Elapsed
	}
	return sum
}

// --- Result tables ---------------------------------------------------------

// Column is a column of a result table.
type Column struct {
	ID    string
	Title string
	Value func(*parse.Result) string
}

func count(f func(parse.Counts) int) func(*parse.Result) string {
	return func(r *parse.Result) string {
		return strconv.Itoa(f(r.Counts))
	}
}

// Columns is the set of columns available for result tables.
var Columns = []Column{
	{"source", "Source", func(r *parse.Result) string { return r.Source }},
	{"status", "Status", status},
	{"lines", "Lines", count(func(c parse.Counts) int { return c.Lines })},
	{"code", "Code", count(func(c parse.Counts) int { return c.CodeLines })},
	{"comments", "Comments", count(func(c parse.Counts) int { return c.CommentLines })},
	{"tokens", "Tokens", count(func(c parse.Counts) int { return c.Tokens })},
	{"errors", "Errors", count(func(c parse.Counts) int { return c.Errors })},
	{"warnings", "Warnings", count(func(c parse.Counts) int { return c.Warnings })},
	{"elapsed", "Elapsed", func(r *parse.Result) string { return r.Elapsed.Round(time.Microsecond).String() }},
	{"message", "Message", func(r *parse.Result) string {
		if r.Err == nil {
			return ""
		}
		return r.Err.Error()
	}},
}

// DefaultColumns are the ids of the columns shown if a table is requested
// without column ids.
var DefaultColumns = []string{"source", "status", "lines", "tokens", "errors", "elapsed"}

func status(r *parse.Result) string {
	var rej *koopa.Rejection
	switch {
	case r.Accepted:
		return "accepted"
	case errors.As(r.Err, &rej):
		return "rejected"
	}
	return "failed"
}

func column(id string) (Column, bool) {
	for _, c := range Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// Table renders the results as rows of strings. The first row holds the
// column titles.
func (s *Session) Table(ids ...string) ([][]string, error) {
	if len(ids) == 0 {
		ids = DefaultColumns
	}
	cols := make([]Column, len(ids))
	for i, id := range ids {
		c, ok := column(id)
		if !ok {
			return nil, fmt.Errorf("unknown table column %q", id)
		}
		cols[i] = c
	}
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Title
	}
	table := [][]string{header}
	for _, r := range s.Results() {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.Value(r)
		}
		table = append(table, row)
	}
	return table, nil
}
