package web

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jaminalder/codex-connect-four/internal/app"
	"github.com/jaminalder/codex-connect-four/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	s := app.NewService(domain.DefaultWidth, domain.DefaultHeight)
	h := NewServer(s, 0)
	return s, h
}

func postDrop(t *testing.T, h http.Handler, id, col string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"col": {col}}
	req := httptest.NewRequest("POST", "/game/"+id+"/drop", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<form") || !strings.Contains(body, "action=\"/game\"") {
		t.Fatalf("index should contain create form; got body: %q", body)
	}
}

func TestCreateRedirectsToGame(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("POST", "/game", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther && rr.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	loc := rr.Result().Header.Get("Location")
	if !strings.HasPrefix(loc, "/game/") {
		t.Fatalf("expected redirect to /game/{id}, got %q", loc)
	}
}

func TestGamePageRendersBoardAndSSE(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	req := httptest.NewRequest("GET", "/game/"+url.PathEscape(gs.ID), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<html>") || !strings.Contains(body, "htmx.org") {
		t.Fatalf("expected full page layout; got body: %q", body)
	}
	if !strings.Contains(body, "hx-ext=\"sse\"") || !strings.Contains(body, "/game/"+gs.ID+"/events") {
		t.Fatalf("expected SSE wiring in page; got body: %q", body)
	}
	if got := strings.Count(body, "name=\"col\""); got != 7 {
		t.Fatalf("expected 7 column buttons, got %d", got)
	}
	if !strings.Contains(body, "id=\"5-6\"") || strings.Contains(body, "id=\"6-0\"") {
		t.Fatalf("expected a 6x7 grid of cells")
	}
	if !strings.Contains(body, "Player 1&#39;s Turn") {
		t.Fatalf("expected status for Player 1; got body: %q", body)
	}
}

func TestUnknownGameIsNotFound(t *testing.T) {
	_, h := newTestServer(t)
	for _, path := range []string{"/game/nope", "/game/nope/board", "/game/nope/events", "/game/nope/ws"} {
		req := httptest.NewRequest("GET", path, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rr.Code)
		}
	}
	if rr := postDrop(t, h, "nope", "0"); rr.Code != http.StatusNotFound {
		t.Fatalf("drop on unknown game: expected 404, got %d", rr.Code)
	}
}

func TestDropEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	rr := postDrop(t, h, gs.ID, "3")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "id=\"board\"") {
		t.Fatalf("expected board fragment, got %q", body)
	}
	if !strings.Contains(body, "id=\"5-3\"><div class=\"piece p1\">") {
		t.Fatalf("expected Player 1 piece at the bottom of column 3, got %q", body)
	}
	latest, _ := svc.Get(gs.ID)
	if latest.Game.Moves() != 1 || latest.Game.Current() != domain.Two {
		t.Fatalf("expected move applied, moves=%d current=%v", latest.Game.Moves(), latest.Game.Current())
	}
}

func TestDropEndpointRejectsBadColumns(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	cases := map[string]string{
		"":    "Pick a column",
		"abc": "Pick a column",
		"7":   "No such column",
		"-1":  "No such column",
	}
	for col, want := range cases {
		rr := postDrop(t, h, gs.ID, col)
		if rr.Code != http.StatusOK {
			t.Fatalf("col %q: expected 200, got %d", col, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), want) {
			t.Fatalf("col %q: expected %q in body, got %q", col, want, rr.Body.String())
		}
	}
	latest, _ := svc.Get(gs.ID)
	if latest.Game.Moves() != 0 {
		t.Fatalf("rejected columns must not change the game")
	}
}

func TestDropEndpointFullColumnAndGameOver(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	for i := 0; i < 6; i++ {
		postDrop(t, h, gs.ID, "0")
	}
	if rr := postDrop(t, h, gs.ID, "0"); !strings.Contains(rr.Body.String(), "That column is full") {
		t.Fatalf("expected full column message, got %q", rr.Body.String())
	}

	won, _ := svc.CreateGame()
	for _, col := range []string{"0", "0", "1", "1", "2", "2", "3"} {
		postDrop(t, h, won.ID, col)
	}
	rr := postDrop(t, h, won.ID, "4")
	body := rr.Body.String()
	if !strings.Contains(body, "Game is over") || !strings.Contains(body, "Player 1 Wins!") {
		t.Fatalf("expected game over message and result, got %q", body)
	}
	if strings.Count(body, "win\"") != 4 {
		t.Fatalf("expected 4 highlighted cells, got %q", body)
	}
	if !strings.Contains(body, " disabled") {
		t.Fatalf("expected column buttons disabled after the game ends")
	}
}

func TestResetEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	postDrop(t, h, gs.ID, "2")
	req := httptest.NewRequest("POST", "/game/"+gs.ID+"/reset", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	latest, _ := svc.Get(gs.ID)
	if latest.Game.Moves() != 0 {
		t.Fatalf("expected empty board after reset")
	}
}

func TestBoardFragmentEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	req := httptest.NewRequest("GET", "/game/"+gs.ID+"/board", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "id=\"board\"") {
		t.Fatalf("expected board fragment, got %d %q", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "<html") {
		t.Fatalf("fragment should not include the page layout")
	}
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	// create a game via POST
	reqCreate := httptest.NewRequest("POST", "/game", nil)
	rrCreate := httptest.NewRecorder()
	h.ServeHTTP(rrCreate, reqCreate)
	loc := rrCreate.Result().Header.Get("Location")
	if loc == "" {
		t.Fatalf("missing redirect location")
	}
	// Request SSE
	req := httptest.NewRequest("GET", loc+"/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	ct := rr.Result().Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/event-stream") {
		io.Copy(io.Discard, rr.Result().Body)
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
}

func TestEventsStreamBroadcastsBoard(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", srv.URL+"/game/"+gs.ID+"/events", nil)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("events request: %v", err)
	}
	defer resp.Body.Close()

	// headers are flushed after the subscription is registered
	if _, _, err := svc.Drop(gs.ID, 4); err != nil {
		t.Fatalf("drop: %v", err)
	}

	sc := bufio.NewScanner(resp.Body)
	sawEvent := false
	for sc.Scan() {
		line := sc.Text()
		if line == "event: board" {
			sawEvent = true
		}
		if sawEvent && strings.Contains(line, "piece p1") {
			return
		}
	}
	t.Fatalf("did not receive board event (sawEvent=%v, err=%v)", sawEvent, sc.Err())
}

func openEvents(t *testing.T, baseURL, id string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest("GET", baseURL+"/game/"+id+"/events", nil)
	req.Header.Set("Accept", "text/event-stream")
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("events request: %v", err)
	}
	return resp
}

func TestShutdownEndsEventStreams(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := NewHTTPServer(ctx, ln.Addr().String(), h)
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	resp := openEvents(t, "http://"+ln.Addr().String(), gs.ID)
	defer resp.Body.Close()

	// the signal context ends before Shutdown is called
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	start := time.Now()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown with an open stream: %v after %s", err, time.Since(start))
	}
	if took := time.Since(start); took > time.Second {
		t.Fatalf("shutdown took %s", took)
	}
	if err := <-served; err != http.ErrServerClosed {
		t.Fatalf("expected ErrServerClosed, got %v", err)
	}
}

func TestEventsStreamEndsWhenGameSwept(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp := openEvents(t, srv.URL, gs.ID)
	defer resp.Body.Close()

	if n := svc.Sweep(time.Now().Add(24*time.Hour), 0); n != 1 {
		t.Fatalf("expected 1 game swept, got %d", n)
	}
	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.Discard, resp.Body)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("stream ended with error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event stream still open after the game was swept")
	}
}

func TestWriteEventPrefixesEveryLine(t *testing.T) {
	var b strings.Builder
	writeEvent(&b, "board", []byte("<div>\n<p>x</p>\n</div>\n"))
	want := "event: board\ndata: <div>\ndata: <p>x</p>\ndata: </div>\n\n"
	if b.String() != want {
		t.Fatalf("unexpected event encoding: %q", b.String())
	}
}
