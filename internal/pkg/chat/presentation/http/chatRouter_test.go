package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruturajs19/chat-app/internal/infrastructure/auth"
	"github.com/ruturajs19/chat-app/internal/infrastructure/httperr"
	"github.com/ruturajs19/chat-app/internal/infrastructure/httpserver"
	"github.com/ruturajs19/chat-app/internal/infrastructure/realtime"
	storage "github.com/ruturajs19/chat-app/internal/infrastructure/storage/port"
	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/usecase"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/persistence/repository/adapter"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/presentation/controller"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/presentation/dto"
	profiles "github.com/ruturajs19/chat-app/internal/repository/port"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type stubProfiles map[string]chat.Profile

func (s stubProfiles) FindByID(_ context.Context, id string) (chat.Profile, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return chat.Profile{}, profiles.ErrProfileNotFound
}

type memStore struct {
	mu      sync.Mutex
	objects map[string]string
	err     error
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = contentType
	return "https://img.test/" + key, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type nopPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *nopPublisher) Publish(_ context.Context, topic string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
}

type testApp struct {
	engine    *gin.Engine
	router    *realtime.Router
	tokens    *auth.Validator
	store     *memStore
	publisher *nopPublisher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := zerolog.Nop()
	tokens, err := auth.NewValidator(testSecret, log)
	require.NoError(t, err)

	repo := adapter.NewMemoryChatRepository()
	people := stubProfiles{
		"alice": {ID: "alice", Name: "Alice", Email: "alice@example.com"},
		"bob":   {ID: "bob", Name: "Bob", Email: "bob@example.com"},
	}
	rt := realtime.NewRouter(realtime.NewRegistry(), log)
	emitter := controller.NewSocketEmitter(rt)
	store := &memStore{objects: map[string]string{}}
	pub := &nopPublisher{}

	markSeen := usecase.NewMarkSeenUseCase(repo, emitter)
	timeout := 2 * time.Second
	ctl := Controllers{
		CreateChat:  controller.NewCreateChatController(usecase.NewCreateChatUseCase(repo), timeout, log),
		ListChats:   controller.NewListChatsController(usecase.NewListChatsUseCase(repo, people, log), timeout, log),
		SendMessage: controller.NewSendMessageController(usecase.NewSendMessageUseCase(repo, store, emitter, pub, markSeen, 1<<20, "chat-images", log), 1<<20, timeout, log),
		GetMessage:  controller.NewGetMessageController(usecase.NewGetMessageUseCase(repo, people, markSeen, log), timeout, log),
		Socket:      controller.NewChatSocketController(rt, tokens, usecase.NewJoinConversationUseCase(repo), timeout, log),
	}

	srv := httpserver.New(httpserver.Options{}, log, func(e *gin.Engine) {
		RegisterRoutes(e.Group("/api/v1"), ctl, tokens)
	})
	t.Cleanup(rt.Close)
	return &testApp{engine: srv.Engine(), router: rt, tokens: tokens, store: store, publisher: pub}
}

func (a *testApp) token(t *testing.T, id string) string {
	t.Helper()
	tok, err := a.tokens.Issue(auth.User{ID: id, Name: strings.ToUpper(id[:1]) + id[1:]}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(t *testing.T, user, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+a.token(t, user))
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) createChat(t *testing.T, user, other string) string {
	t.Helper()
	w := a.do(t, user, http.MethodPost, "/api/v1/chat/new", strings.NewReader(`{"otherUserId":"`+other+`"}`), "application/json")
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, w.Code, w.Body.String())
	var resp struct {
		ChatID string `json:"chatId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ChatID
}

func (a *testApp) sendText(t *testing.T, user, chatID, text string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"chatId": {chatID}, "text": {text}}
	return a.do(t, user, http.MethodPost, "/api/v1/message", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

type sendResponse struct {
	Message dto.MessagePayload `json:"message"`
	Sender  string             `json:"sender"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httperr.Body {
	t.Helper()
	var body httperr.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequiresAuthentication(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, "", http.MethodGet, "/api/v1/chat/all", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, httperr.TypeUnauthorized, body.Error.Type)
	assert.NotEmpty(t, body.Error.RequestID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/all", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateChatEndpoint(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, "alice", http.MethodPost, "/api/v1/chat/new", strings.NewReader(`{"userId":"alice","otherUserId":"bob"}`), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Message string `json:"message"`
		ChatID  string `json:"chatId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ChatID)

	w = app.do(t, "bob", http.MethodPost, "/api/v1/chat/new", strings.NewReader(`{"otherUserId":"alice"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ChatID)

	w = app.do(t, "alice", http.MethodPost, "/api/v1/chat/new", strings.NewReader(`{"otherUserId":"alice"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, "alice", http.MethodPost, "/api/v1/chat/new", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, "alice", http.MethodPost, "/api/v1/chat/new", strings.NewReader(`{"userId":"bob","otherUserId":"carol"}`), "application/json")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSendAndFetchMessages(t *testing.T) {
	app := newTestApp(t)
	chatID := app.createChat(t, "alice", "bob")

	w := app.sendText(t, "alice", chatID, "hello bob")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sent sendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	assert.Equal(t, "alice", sent.Sender)
	assert.Equal(t, "hello bob", sent.Message.Text)
	assert.Equal(t, "text", sent.Message.MessageType)
	assert.False(t, sent.Message.Seen)

	// Bob is offline, so a digest goes out.
	assert.Len(t, app.publisher.topics, 1)

	w = app.do(t, "bob", http.MethodGet, "/api/v1/chat/all", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Chats []dto.ChatListEntry `json:"chats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Chats, 1)
	assert.Equal(t, "alice", list.Chats[0].User.ID)
	assert.Equal(t, "Alice", list.Chats[0].User.Name)
	assert.Equal(t, 1, list.Chats[0].Chat.UnseenCount)
	require.NotNil(t, list.Chats[0].Chat.LatestMessage)
	assert.Equal(t, "hello bob", list.Chats[0].Chat.LatestMessage.Text)

	var raw struct {
		Chats []struct {
			Chat struct {
				LatestMessage map[string]any `json:"latestMessage"`
			} `json:"chat"`
		} `json:"chats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, map[string]any{"text": "hello bob", "senderId": "alice"}, raw.Chats[0].Chat.LatestMessage)

	w = app.do(t, "bob", http.MethodGet, "/api/v1/message/"+chatID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched struct {
		Messages []dto.MessagePayload `json:"messages"`
		User     dto.ProfilePayload   `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	require.Len(t, fetched.Messages, 1)
	assert.True(t, fetched.Messages[0].Seen)
	assert.Equal(t, "alice", fetched.User.ID)

	w = app.do(t, "bob", http.MethodGet, "/api/v1/chat/all", nil, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Chats[0].Chat.UnseenCount)
}

func TestMessageErrors(t *testing.T) {
	app := newTestApp(t)
	chatID := app.createChat(t, "alice", "bob")

	w := app.sendText(t, "alice", chatID, "   ")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.sendText(t, "alice", "", "hi")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.sendText(t, "carol", chatID, "hi")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, httperr.TypeForbidden, decodeError(t, w).Error.Type)

	w = app.sendText(t, "alice", "no-such-chat", "hi")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, "carol", http.MethodGet, "/api/v1/message/"+chatID, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, "alice", http.MethodGet, "/api/v1/message/no-such-chat", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func multipartImage(t *testing.T, chatID string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("chatId", chatID))
	fw, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestSendImageMessageEndpoint(t *testing.T) {
	app := newTestApp(t)
	chatID := app.createChat(t, "alice", "bob")

	body, ct := multipartImage(t, chatID, pngHeader)
	w := app.do(t, "alice", http.MethodPost, "/api/v1/message", body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sent sendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	assert.Equal(t, "image", sent.Message.MessageType)
	require.NotNil(t, sent.Message.Image)
	assert.Equal(t, "https://img.test/"+sent.Message.Image.PublicID, sent.Message.Image.URL)

	w = app.do(t, "alice", http.MethodGet, "/api/v1/chat/all", nil, "")
	assert.Contains(t, w.Body.String(), chat.ImagePreview)

	app.store.err = storage.ErrDisabled
	body, ct = multipartImage(t, chatID, pngHeader)
	w = app.do(t, "alice", http.MethodPost, "/api/v1/message", body, ct)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, httperr.TypeUnavailable, decodeError(t, w).Error.Type)
}

func TestSendOversizedImageEndpoint(t *testing.T) {
	app := newTestApp(t)
	chatID := app.createChat(t, "alice", "bob")

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2<<20)...)
	body, ct := multipartImage(t, chatID, big)
	w := app.do(t, "alice", http.MethodPost, "/api/v1/message", body, ct)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	env := decodeError(t, w)
	assert.Equal(t, httperr.TypeInvalidRequest, env.Error.Type)
	assert.Equal(t, "image is too large", env.Error.Message)
	assert.Empty(t, app.store.objects)
	assert.Empty(t, app.publisher.topics)
}

func dialSocket(t *testing.T, base, token string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(base, "http") + "/api/v1/ws?token=" + url.QueryEscape(token)
	ws, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

// readUntil returns the data of the first frame with the given event.
func readUntil(t *testing.T, ws *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var f realtime.Frame
		require.NoError(t, ws.ReadJSON(&f))
		if f.Event == event {
			return f.Data
		}
	}
}

func TestSocketDeliveryAndSeenOnArrival(t *testing.T) {
	app := newTestApp(t)
	chatID := app.createChat(t, "alice", "bob")
	srv := httptest.NewServer(app.engine)
	defer srv.Close()

	bob := dialSocket(t, srv.URL, app.token(t, "bob"))
	var ack realtime.ConnectedPayload
	require.NoError(t, json.Unmarshal(readUntil(t, bob, realtime.EventConnected), &ack))
	assert.Equal(t, "bob", ack.UserID)

	require.NoError(t, bob.WriteJSON(realtime.Frame{Event: realtime.EventJoinChat, Data: json.RawMessage(`"` + chatID + `"`)}))
	require.Eventually(t, func() bool { return app.router.IsUserInRoom("bob", chatID) }, 2*time.Second, 10*time.Millisecond)

	w := app.sendText(t, "alice", chatID, "are you there?")
	require.Equal(t, http.StatusCreated, w.Code)
	var sent sendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	assert.True(t, sent.Message.Seen, "recipient viewing the chat sees it on arrival")
	assert.Empty(t, app.publisher.topics)

	var msg dto.MessagePayload
	require.NoError(t, json.Unmarshal(readUntil(t, bob, realtime.EventNewMessage), &msg))
	assert.Equal(t, sent.Message.ID, msg.ID)

	var seen realtime.MessagesSeenPayload
	require.NoError(t, json.Unmarshal(readUntil(t, bob, realtime.EventMessagesSeen), &seen))
	assert.Equal(t, chatID, seen.ChatID)
	assert.Equal(t, "bob", seen.SeenBy)
	assert.Equal(t, []string{sent.Message.ID}, seen.MessageIDs)
}

func TestSocketPresenceAndTyping(t *testing.T) {
	app := newTestApp(t)
	chatID := app.createChat(t, "alice", "bob")
	srv := httptest.NewServer(app.engine)
	defer srv.Close()

	alice := dialSocket(t, srv.URL, app.token(t, "alice"))
	readUntil(t, alice, realtime.EventConnected)
	bob := dialSocket(t, srv.URL, app.token(t, "bob"))
	readUntil(t, bob, realtime.EventConnected)

	waitOnline(t, alice, []string{"alice", "bob"})

	for _, ws := range []*websocket.Conn{alice, bob} {
		require.NoError(t, ws.WriteJSON(realtime.Frame{Event: realtime.EventJoinChat, Data: json.RawMessage(`{"chatId":"` + chatID + `"}`)}))
	}
	require.Eventually(t, func() bool {
		return app.router.IsUserInRoom("alice", chatID) && app.router.IsUserInRoom("bob", chatID)
	}, 2*time.Second, 10*time.Millisecond)

	// Garbage is ignored and the connection stays usable.
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, alice.WriteJSON(realtime.Frame{Event: realtime.EventTyping, Data: json.RawMessage(`{"chatId":"` + chatID + `","userId":"mallory"}`)}))

	var typing realtime.TypingPayload
	require.NoError(t, json.Unmarshal(readUntil(t, bob, realtime.EventUserTyping), &typing))
	assert.Equal(t, chatID, typing.ChatID)
	assert.Equal(t, "alice", typing.UserID, "identity comes from the token")

	require.NoError(t, bob.Close())
	waitOnline(t, alice, []string{"alice"})
}

// waitOnline reads presence frames until one lists exactly want.
func waitOnline(t *testing.T, ws *websocket.Conn, want []string) {
	t.Helper()
	for {
		var online []string
		require.NoError(t, json.Unmarshal(readUntil(t, ws, realtime.EventOnlineUsers), &online))
		if assert.ObjectsAreEqual(want, online) {
			return
		}
	}
}

func TestSocketRejectsMissingToken(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(app.engine)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
