package search

import (
	"context"
	"strings"

	"github.com/kailas-cloud/kmsearch/internal/domain/resource"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/match"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/request"
)

// --- Mocks ---

type matchCall struct {
	terms         []string
	limit, offset int
}

type mockStore struct {
	counts     map[string]int
	ids        map[string][]string
	countErr   error
	matchErr   error
	countCalls [][]string
	matchCalls []matchCall
}

func key(terms []string) string { return strings.Join(terms, "|") }

func (m *mockStore) Count(_ context.Context, terms []string) (int, error) {
	m.countCalls = append(m.countCalls, terms)
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.counts[key(terms)], nil
}

func (m *mockStore) Match(_ context.Context, terms []string, limit, offset int) ([]string, error) {
	m.matchCalls = append(m.matchCalls, matchCall{terms: terms, limit: limit, offset: offset})
	if m.matchErr != nil {
		return nil, m.matchErr
	}
	return m.ids[key(terms)], nil
}

type mockSegmenter struct {
	tokens []string
	err    error
	calls  int
}

func (m *mockSegmenter) Segment(_ context.Context, _ string) ([]string, error) {
	m.calls++
	return m.tokens, m.err
}

func (m *mockSegmenter) Name() string { return "mock" }

type mockReader struct {
	records []resource.Record
	err     error
	lastIDs []string
	calls   int
}

func (m *mockReader) FetchPublished(_ context.Context, ids []string) ([]resource.Record, error) {
	m.calls++
	m.lastIDs = ids
	return m.records, m.err
}

type mockRunner struct {
	set   match.Set
	err   error
	calls int
	last  request.Request
}

func (m *mockRunner) Run(_ context.Context, req request.Request) (match.Set, error) {
	m.calls++
	m.last = req
	return m.set, m.err
}

func mustRequest(text string, page, pageSize int) request.Request {
	req, err := request.New(text, page, pageSize, 0)
	if err != nil {
		panic(err)
	}
	return req
}
