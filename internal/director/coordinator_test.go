package director

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malexanderboyd/godr4ft/internal/cards/cardtest"
	"github.com/malexanderboyd/godr4ft/internal/director/models"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

func startCoordinator(t *testing.T, snapshotPath string) (*Coordinator, *httptest.Server) {
	t.Helper()
	c, err := NewCoordinator(Config{
		Pool:         cardtest.Pool(),
		Defaults:     game.DefaultOptions(),
		StatusKey:    "secret",
		SnapshotPath: snapshotPath,
		Seed:         func() uint64 { return 7 },
	})
	require.NoError(t, err)
	go c.Listen()
	server := httptest.NewServer(c.Router())
	t.Cleanup(server.Close)
	return c, server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?" + query
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), models.UserCookieName)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// readUntil skips messages until one of type mt arrives.
func readUntil(t *testing.T, ws *websocket.Conn, mt models.GameMessageType) *models.Message {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg models.Message
		require.NoError(t, ws.ReadJSON(&msg))
		if msg.Type == mt {
			return &msg
		}
	}
}

func send(t *testing.T, ws *websocket.Conn, mt models.GameMessageType, ack int, data interface{}) {
	t.Helper()
	msg := models.NewMessage(mt, data)
	msg.Ack = &ack
	require.NoError(t, ws.WriteJSON(msg))
}

func readAck(t *testing.T, ws *websocket.Conn, ack int) models.AckResponse {
	t.Helper()
	msg := readUntil(t, ws, models.Ack)
	require.NotNil(t, msg.Ack)
	assert.Equal(t, ack, *msg.Ack)
	var resp models.AckResponse
	require.NoError(t, msg.Decode(&resp))
	return resp
}

func TestCoordinatorAcknowledgesRequests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	c, server := startCoordinator(t, path)

	alice := dial(t, server, "userID=alice&userName=Alice&sessionID=table")
	readUntil(t, alice, models.SessionOptions)

	send(t, alice, models.StartDraft, 1, nil)
	assert.Equal(t, game.CodeNotEnoughPlayers, readAck(t, alice, 1).Code)

	send(t, alice, models.ParseCustomCardList, 2, models.CustomListRequest{Text: "1 Black Lotus"})
	resp := readAck(t, alice, 2)
	assert.Equal(t, game.CodeValidation, resp.Code)
	require.NotNil(t, resp.ParseError)
	assert.Equal(t, "Unknown card", resp.ParseError.Title)

	send(t, alice, models.GameMessageType("dance"), 3, nil)
	assert.Equal(t, game.CodeValidation, readAck(t, alice, 3).Code)

	opts := game.DefaultOptions()
	opts.OwnerIsPlayer = false
	opts.Bots = 1
	send(t, alice, models.SetOptions, 4, opts)
	assert.Equal(t, game.CodeOK, readAck(t, alice, 4).Code)

	bob := dial(t, server, "userID=bob&sessionID=table")
	readUntil(t, bob, models.SessionOptions)
	send(t, bob, models.StartDraft, 1, nil)
	assert.Equal(t, game.CodeNotOwner, readAck(t, bob, 1).Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))

	snaps, err := readSnapshots(path)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "table", snaps[0].ID)
	assert.Equal(t, "alice", snaps[0].Owner)
	assert.Equal(t, 1, snaps[0].Options.Bots)
}

func TestCoordinatorStartsDraftOverSocket(t *testing.T) {
	c, server := startCoordinator(t, "")

	alice := dial(t, server, "userID=alice&sessionID=table")
	readUntil(t, alice, models.SessionOptions)
	bob := dial(t, server, "userID=bob&sessionID=table")
	readUntil(t, bob, models.SessionOptions)

	send(t, alice, models.StartDraft, 1, nil)
	assert.Equal(t, game.CodeOK, readAck(t, alice, 1).Code)

	var view models.DraftStatePayload
	require.NoError(t, readUntil(t, bob, models.DraftState).Decode(&view))
	require.NotEmpty(t, view.Booster)

	// The pool update is sent before the acknowledgement.
	send(t, bob, models.PickCard, 2, models.PickRequest{Picks: []int{view.Booster[0].UniqueID}})
	var sel models.SelectionPayload
	require.NoError(t, readUntil(t, bob, models.SetCardSelection).Decode(&sel))
	assert.Len(t, sel.Pool, 1)
	assert.Equal(t, game.CodeOK, readAck(t, bob, 2).Code)

	send(t, bob, models.PickCard, 3, models.PickRequest{Picks: []int{view.Booster[1].UniqueID}})
	assert.Equal(t, game.CodeNotYourTurn, readAck(t, bob, 3).Code)

	// Reconnecting restores the draft view.
	_ = bob.Close()
	bob = dial(t, server, "userID=bob")
	var rejoin models.RejoinPayload
	require.NoError(t, readUntil(t, bob, models.RejoinDraft).Decode(&rejoin))
	assert.Len(t, rejoin.Pool, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))
}

func TestMalformedMessageGetsNotice(t *testing.T) {
	c, server := startCoordinator(t, "")
	ws := dial(t, server, "userID=alice")
	readUntil(t, ws, models.SessionOptions)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var notice models.NoticePayload
	require.NoError(t, readUntil(t, ws, models.Notice).Decode(&notice))
	assert.Equal(t, "malformed message", notice.Text)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))
}

func TestStatusEndpoint(t *testing.T) {
	c, server := startCoordinator(t, "")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
	}()

	resp, err := http.Get(server.URL + "/getStatus/wrong")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = http.Get(server.URL + "/getStatus/secret")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.CanRestart)
	assert.Zero(t, status.Drafting)

	resp, err = http.Get(server.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Moving on twice after leaving a running draft must leave the user in
// exactly one session.
func TestMovingBetweenSessionsKeepsOneSeat(t *testing.T) {
	for i := 0; i < 20; i++ {
		c, err := NewCoordinator(Config{
			Pool:     cardtest.Pool(),
			Defaults: game.DefaultOptions(),
			Seed:     func() uint64 { return 7 },
		})
		require.NoError(t, err)

		u1 := NewConnection(c, nil, "u1", "", "")
		u2 := NewConnection(c, nil, "u2", "", "")
		require.NoError(t, c.joinSession(u1, "A"))
		require.NoError(t, c.joinSession(u2, "A"))
		a := c.sessions["A"]
		a.Options.Bots = 2
		a.Options.BoostersPerPlayer = 1
		require.NoError(t, a.StartDraft("u1"))

		require.NoError(t, c.joinSession(u1, "B"))
		assert.True(t, a.replaced["u1"])
		assert.Equal(t, "B", c.sessionOf("u1"))

		require.NoError(t, c.joinSession(u1, "C"))
		assert.Equal(t, "C", c.sessionOf("u1"))
		assert.NotContains(t, c.sessions["B"].Users, "u1")
		assert.NotContains(t, a.Users, "u1")
		assert.Equal(t, []string{"u1"}, c.sessions["C"].Users)
		c.cancel()
	}
}

func TestShutdownStopsAcceptingConnections(t *testing.T) {
	c, _ := startCoordinator(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))

	assert.False(t, c.AddConnection(NewConnection(c, nil, "late", "", "")))
	assert.NoError(t, c.Shutdown(ctx))
}
