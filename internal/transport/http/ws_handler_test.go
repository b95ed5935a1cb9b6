package http

import (
	"net/http"
	"testing"
	"time"

	"exam-prep-service/internal/domain"
	"github.com/gorilla/websocket"
)

func TestWebSocketLeaderboardStream(t *testing.T) {
	srv := newTestServer(t)

	var contest domain.Contest
	srv.do(t, http.MethodGet, "/api/contests/weekly", nil, &contest)

	u := "ws" + srv.URL[len("http"):] + "/api/contests/" + contest.ID + "/leaderboard/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The current leaderboard arrives first.
	msgType, entries := readLeaderboard(t, conn)
	if msgType != "leaderboard" {
		t.Fatalf("expected leaderboard, got %s", msgType)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %d entries", len(entries))
	}

	sub := domain.ContestResult{UserID: "u1", Score: 25, TotalMarks: 30, CorrectAnswers: 25, TotalQuestions: 30, TimeTakenSeconds: 900}
	if code := srv.do(t, http.MethodPost, "/api/contests/"+contest.ID+"/submit", sub, nil); code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", code)
	}

	msgType, entries = readLeaderboard(t, conn)
	if msgType != "leaderboard" {
		t.Fatalf("expected leaderboard, got %s", msgType)
	}
	if len(entries) != 1 || entries[0].UserID != "u1" || entries[0].Rank != 1 {
		t.Fatalf("unexpected leaderboard %+v", entries)
	}
}

func TestWebSocketUnknownContest(t *testing.T) {
	srv := newTestServer(t)

	u := "ws" + srv.URL[len("http"):] + "/api/contests/missing/leaderboard/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var msg struct {
		Type    string       `json:"type"`
		Payload errorPayload `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "error" || msg.Payload.Message != domain.ErrContestNotFound.Error() {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) (string, []domain.ContestResult) {
	t.Helper()
	var msg struct {
		Type    string                 `json:"type"`
		Payload []domain.ContestResult `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}
