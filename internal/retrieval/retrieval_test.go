// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tumorboard/pkg/types"
)

// streamServer replays the given lines as an NDJSON response.
func streamServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, line := range lines {
			fmt.Fprintln(w, line)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testClient(url string) *Client {
	return NewClient(types.RetrievalConfig{
		AnalyzeURL: url,
		MaxWait:    5 * time.Second,
		MaxRetries: 1,
	})
}

func collect(t *testing.T, c *Client, req Request) ([]Event, error) {
	t.Helper()
	var events []Event
	err := c.Analyze(context.Background(), req, func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	return events, err
}

func articleLine(number int, title string, points int) string {
	return fmt.Sprintf(`{"type":"article_analysis","data":{"progress":{"article_number":%d,"total_articles":2},"analysis":{"article_metadata":{"title":%q,"overall_points":%d}}}}`,
		number, title, points)
}

func TestAnalyze_FullStream(t *testing.T) {
	ts := streamServer(t, []string{
		`{"type":"metadata","data":{"total_articles":2,"current_article":0,"status":"processing"}}`,
		articleLine(1, "first", 30),
		articleLine(2, "second", 45),
		`{"type":"metadata","data":{"total_articles":2,"current_article":2,"status":"complete"}}`,
	})

	events, err := collect(t, testClient(ts.URL), Request{EventsText: "NRAS\nCD33"})
	require.NoError(t, err)
	require.Len(t, events, 4)

	require.NotNil(t, events[0].Progress)
	assert.Equal(t, 2, events[0].Progress.TotalArticles)
	assert.False(t, events[0].Progress.Complete())

	require.NotNil(t, events[1].Article)
	assert.Equal(t, "first", events[1].Article.Title)
	assert.Equal(t, 1, events[1].ArticleNumber)

	require.NotNil(t, events[2].Article)
	assert.Equal(t, "second", events[2].Article.Title)

	require.NotNil(t, events[3].Progress)
	assert.True(t, events[3].Progress.Complete())
}

func TestAnalyze_SendsRequestFields(t *testing.T) {
	var got Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		fmt.Fprintln(w, `{"type":"metadata","data":{"status":"complete"}}`)
	}))
	defer ts.Close()

	_, err := collect(t, testClient(ts.URL), Request{
		EventsText:  "KMT2A::MLLT3 fusion",
		Methodology: "methodology doc",
		Disease:     "AML",
	})
	require.NoError(t, err)

	assert.Equal(t, "KMT2A::MLLT3 fusion", got.EventsText)
	assert.Equal(t, "methodology doc", got.Methodology)
	assert.Equal(t, "AML", got.Disease)
}

func TestAnalyze_ErrorEventDoesNotEndStream(t *testing.T) {
	ts := streamServer(t, []string{
		articleLine(1, "first", 10),
		`{"type":"error","data":{"message":"analysis failed for article 2"}}`,
		articleLine(3, "third", 20),
		`{"type":"metadata","data":{"status":"complete"}}`,
	})

	events, err := collect(t, testClient(ts.URL), Request{EventsText: "x"})
	require.NoError(t, err)
	require.Len(t, events, 4)

	require.NotNil(t, events[1].Failure)
	assert.Equal(t, "analysis failed for article 2", events[1].Failure.Message)
	require.NotNil(t, events[2].Article)
	assert.Equal(t, "third", events[2].Article.Title)
}

func TestAnalyze_MalformedLineSurfacedAsFailure(t *testing.T) {
	ts := streamServer(t, []string{
		`{not json`,
		articleLine(1, "survives", 5),
		`{"type":"metadata","data":{"status":"complete"}}`,
	})

	events, err := collect(t, testClient(ts.URL), Request{EventsText: "x"})
	require.NoError(t, err)
	require.Len(t, events, 3)

	require.NotNil(t, events[0].Failure)
	assert.Contains(t, events[0].Failure.Message, "malformed stream line")
	require.NotNil(t, events[1].Article)
}

func TestAnalyze_UnknownEventTypeSkipped(t *testing.T) {
	ts := streamServer(t, []string{
		`{"type":"heartbeat","data":{}}`,
		`{"type":"metadata","data":{"status":"complete"}}`,
	})

	events, err := collect(t, testClient(ts.URL), Request{EventsText: "x"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Progress.Complete())
}

func TestAnalyze_TruncatedStreamIsNotAnError(t *testing.T) {
	ts := streamServer(t, []string{
		articleLine(1, "only", 5),
	})

	events, err := collect(t, testClient(ts.URL), Request{EventsText: "x"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "only", events[0].Article.Title)
}

func TestAnalyze_FoldErrorStopsStream(t *testing.T) {
	ts := streamServer(t, []string{
		articleLine(1, "first", 5),
		articleLine(2, "second", 5),
	})

	sentinel := errors.New("stop")
	calls := 0
	err := testClient(ts.URL).Analyze(context.Background(), Request{EventsText: "x"}, func(Event) error {
		calls++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestAnalyze_MaxWaitCutsStalledStream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, articleLine(1, "early", 5))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		// Stall until the client gives up.
		<-r.Context().Done()
	}))
	defer ts.Close()

	c := NewClient(types.RetrievalConfig{
		AnalyzeURL: ts.URL,
		MaxWait:    100 * time.Millisecond,
		MaxRetries: 1,
	})

	var events []Event
	err := c.Analyze(context.Background(), Request{EventsText: "x"}, func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// The article received before the deadline is kept.
	require.Len(t, events, 1)
	assert.Equal(t, "early", events[0].Article.Title)
}

func TestAnalyze_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	err := testClient(ts.URL).Analyze(context.Background(), Request{EventsText: "x"}, func(Event) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
