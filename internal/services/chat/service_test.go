package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/seungho-m/jikgwan/internal/api"
	"github.com/seungho-m/jikgwan/internal/models"
	"github.com/seungho-m/jikgwan/internal/realtime"
	"github.com/seungho-m/jikgwan/internal/repositories/chatsummary"
	"github.com/seungho-m/jikgwan/internal/repositories/credential"
	"github.com/seungho-m/jikgwan/internal/repositories/viewcache"
)

// echoBroker upgrades websocket connections and echoes every SEND frame
// back as a MESSAGE frame with a server-assigned ID, the way the real
// broker fans a published message back to subscribers.
type echoBroker struct {
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu     sync.Mutex
	nextID int64
}

func newEchoBroker(t *testing.T) *echoBroker {
	b := &echoBroker{nextID: 100}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var roomID int64
		for {
			var frame realtime.Frame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			switch frame.Type {
			case realtime.FrameSubscribe:
				// One room per connection; remember it for echoes
				fmt.Sscanf(frame.Destination, "/topic/chat/%d", &roomID)
			case realtime.FrameSend:
				var payload map[string]string
				if json.Unmarshal(frame.Body, &payload) != nil {
					continue
				}
				b.mu.Lock()
				id := b.nextID
				b.nextID++
				b.mu.Unlock()

				body, _ := json.Marshal(models.Message{
					ID:         id,
					ChatRoomID: roomID,
					SenderID:   1,
					Content:    payload["content"],
					SentAt:     time.Now().UTC(),
				})
				conn.WriteJSON(realtime.Frame{
					Type:        realtime.FrameMessage,
					Destination: realtime.TopicFor(roomID),
					Body:        body,
				})
			}
		}
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *echoBroker) url() string {
	return "ws" + strings.TrimPrefix(b.server.URL, "http")
}

type ServiceTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client

	summaries   chatsummary.Repository
	cache       viewcache.Repository
	credentials credential.Repository

	server *httptest.Server
	mux    *http.ServeMux
	calls  map[string]int
	broker *echoBroker

	service Service
	ctx     context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.calls = map[string]int{}

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	summaries, err := chatsummary.NewRedis(&chatsummary.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.summaries = summaries

	cache, err := viewcache.NewRedis(&viewcache.Config{RedisClient: s.client, TTL: time.Minute})
	s.Require().NoError(err)
	s.cache = cache

	credentials, err := credential.NewRedis(&credential.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.credentials = credentials

	s.Require().NoError(s.credentials.SaveTokens(s.ctx, &credential.SaveTokensInput{
		Tokens: &models.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"},
	}))

	s.mux = http.NewServeMux()
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls[r.Method+" "+r.URL.Path]++
		s.mux.ServeHTTP(w, r)
	}))

	s.broker = newEchoBroker(s.T())

	apiClient, err := api.New(&api.Config{BaseURL: s.server.URL})
	s.Require().NoError(err)

	svc, err := New(&Config{
		API:                  apiClient,
		Summaries:            s.summaries,
		ViewCache:            s.cache,
		Credentials:          s.credentials,
		WSURL:                s.broker.url(),
		ReconnectBase:        10 * time.Millisecond,
		ReconnectCap:         20 * time.Millisecond,
		MaxReconnectAttempts: 1,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceTestSuite) TearDownTest() {
	s.server.Close()
	s.client.Close()
	s.mr.Close()
}

func (s *ServiceTestSuite) respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status < 400,
		"data":    data,
	})
}

func (s *ServiceTestSuite) handleRoomEndpoints(roomID string) {
	s.mux.HandleFunc("/chat/rooms/"+roomID+"/messages", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusOK, api.MessagePage{Content: []models.Message{}})
	})
	s.mux.HandleFunc("/chat/rooms/"+roomID+"/read", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusOK, nil)
	})
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) TestRequestJoinDropsCachedRoster() {
	s.mux.HandleFunc("/chat/rooms", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var body map[string]int64
			s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
			s.Equal(int64(5), body["gatheringId"])
			s.respond(w, http.StatusCreated, models.ChatRoom{ID: 7, GatheringID: 5})
			return
		}
		s.respond(w, http.StatusOK, map[string]interface{}{
			"chatRooms": []models.ChatRoom{{ID: 7, GatheringID: 5}},
		})
	})

	// Warm the roster view
	_, err := s.service.Rooms(s.ctx)
	s.Require().NoError(err)

	output, err := s.service.RequestJoin(s.ctx, &RequestJoinInput{GatheringID: 5})
	s.Require().NoError(err)
	s.Equal(int64(7), output.Room.ID)

	relist, err := s.service.Rooms(s.ctx)
	s.Require().NoError(err)
	s.False(relist.FromCache)
	s.Equal(2, s.calls["GET /chat/rooms"])
}

func (s *ServiceTestSuite) TestRoomsBaselinesSummaries() {
	last := models.Message{ID: 42, ChatRoomID: 7, SenderID: 2, Content: "경기 끝나고 봐요"}
	s.mux.HandleFunc("/chat/rooms", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusOK, map[string]interface{}{
			"chatRooms": []models.ChatRoom{
				{ID: 7, LastMessage: &last, UnreadCount: 3},
				{ID: 9},
			},
		})
	})

	output, err := s.service.Rooms(s.ctx)
	s.Require().NoError(err)
	s.False(output.FromCache)
	s.Len(output.Rooms, 2)
	s.Require().Len(output.Summaries, 2)
	s.Equal(int64(7), output.Summaries[0].RoomID)
	s.Equal(3, output.Summaries[0].UnreadCount)
	s.Equal("경기 끝나고 봐요", output.Summaries[0].LastMessage.Content)

	// Second call is served from the view cache, summaries untouched
	cached, err := s.service.Rooms(s.ctx)
	s.Require().NoError(err)
	s.True(cached.FromCache)
	s.Equal(1, s.calls["GET /chat/rooms"])
}

func (s *ServiceTestSuite) TestHistoryOrdersOldestFirst() {
	base := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	s.mux.HandleFunc("/chat/rooms/7/messages", func(w http.ResponseWriter, r *http.Request) {
		// Server pages newest first
		s.respond(w, http.StatusOK, api.MessagePage{
			Content: []models.Message{
				{ID: 3, SentAt: base.Add(2 * time.Minute)},
				{ID: 2, SentAt: base.Add(time.Minute)},
				{ID: 1, SentAt: base},
			},
			TotalElements: 3,
		})
	})

	output, err := s.service.History(s.ctx, &HistoryInput{RoomID: 7})
	s.Require().NoError(err)
	s.Require().Len(output.Messages, 3)
	s.Equal(int64(1), output.Messages[0].ID)
	s.Equal(int64(3), output.Messages[2].ID)
}

func (s *ServiceTestSuite) TestMarkReadZeroesCounter() {
	s.Require().NoError(s.summaries.SetRooms(s.ctx, &chatsummary.SetRoomsInput{
		Rooms: []*models.ChatRoom{{ID: 7, UnreadCount: 4}},
	}))
	s.mux.HandleFunc("/chat/rooms/7/read", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusOK, nil)
	})

	s.Require().NoError(s.service.MarkRead(s.ctx, &MarkReadInput{RoomID: 7}))

	summary, err := s.summaries.GetSummary(s.ctx, &chatsummary.GetSummaryInput{RoomID: 7})
	s.Require().NoError(err)
	s.Equal(0, summary.UnreadCount)
	s.Equal(1, s.calls["POST /chat/rooms/7/read"])
}

func (s *ServiceTestSuite) TestOpenPushSendEchoesIntoThread() {
	s.handleRoomEndpoints("7")
	accepted := make(chan models.Message, 4)

	session, err := s.service.Open(s.ctx, &OpenInput{
		RoomID:    7,
		OnMessage: func(msg models.Message) { accepted <- msg },
	})
	s.Require().NoError(err)
	defer session.Close()

	s.Require().Eventually(func() bool {
		return session.State() == realtime.StateConnected
	}, 2*time.Second, 10*time.Millisecond)

	s.Require().NoError(session.Send(s.ctx, "5회초에 도착해요"))

	select {
	case msg := <-accepted:
		s.Equal("5회초에 도착해요", msg.Content)
		s.Equal(int64(7), msg.ChatRoomID)
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for the push echo")
	}

	s.Len(session.Messages(), 1)
	s.Zero(s.calls["POST /chat/rooms/7/messages"])

	// The accepted message advanced the summary pointer
	summary, err := s.summaries.GetSummary(s.ctx, &chatsummary.GetSummaryInput{RoomID: 7})
	s.Require().NoError(err)
	s.Equal("5회초에 도착해요", summary.LastMessage.Content)
}

func (s *ServiceTestSuite) TestOpenFallsBackToHTTPWhenBrokerDown() {
	s.handleRoomEndpoints("7")
	s.mux.HandleFunc("POST /chat/rooms/7/messages", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
		s.respond(w, http.StatusCreated, models.Message{
			ID:         200,
			ChatRoomID: 7,
			SenderID:   1,
			Content:    body["content"],
			SentAt:     time.Now().UTC(),
		})
	})

	// Point the push channel at a dead endpoint
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := "ws" + strings.TrimPrefix(dead.URL, "http")
	dead.Close()

	svc, err := New(&Config{
		API:                  mustAPI(s.T(), s.server.URL),
		Summaries:            s.summaries,
		ViewCache:            s.cache,
		Credentials:          s.credentials,
		WSURL:                deadURL,
		ReconnectBase:        5 * time.Millisecond,
		MaxReconnectAttempts: 1,
	})
	s.Require().NoError(err)

	accepted := make(chan models.Message, 1)
	session, err := svc.Open(s.ctx, &OpenInput{
		RoomID:    7,
		OnMessage: func(msg models.Message) { accepted <- msg },
	})
	s.Require().NoError(err)
	defer session.Close()

	s.Require().NoError(session.Send(s.ctx, "지하철이 늦네요"))

	select {
	case msg := <-accepted:
		s.Equal(int64(200), msg.ID)
		s.Equal("지하철이 늦네요", msg.Content)
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for the fallback send")
	}
	s.Equal(1, s.calls["POST /chat/rooms/7/messages"])
}

func (s *ServiceTestSuite) TestSendFallback() {
	s.mux.HandleFunc("POST /chat/rooms/7/messages", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
		s.respond(w, http.StatusCreated, models.Message{
			ID:         300,
			ChatRoomID: 7,
			Content:    body["content"],
			SentAt:     time.Now().UTC(),
		})
	})

	output, err := s.service.SendFallback(s.ctx, &SendFallbackInput{RoomID: 7, Content: "먼저 들어가 있을게요"})
	s.Require().NoError(err)
	s.Equal(int64(300), output.Message.ID)

	summary, err := s.summaries.GetSummary(s.ctx, &chatsummary.GetSummaryInput{RoomID: 7})
	s.Require().NoError(err)
	s.Equal(int64(300), summary.LastMessage.ID)

	_, err = s.service.SendFallback(s.ctx, &SendFallbackInput{RoomID: 7, Content: "  "})
	s.ErrorIs(err, ErrEmptyMessage)
}

func (s *ServiceTestSuite) TestOpenMarksRoomRead() {
	s.handleRoomEndpoints("7")
	s.Require().NoError(s.summaries.SetRooms(s.ctx, &chatsummary.SetRoomsInput{
		Rooms: []*models.ChatRoom{{ID: 7, UnreadCount: 2}},
	}))

	session, err := s.service.Open(s.ctx, &OpenInput{RoomID: 7})
	s.Require().NoError(err)
	defer session.Close()

	summary, err := s.summaries.GetSummary(s.ctx, &chatsummary.GetSummaryInput{RoomID: 7})
	s.Require().NoError(err)
	s.Equal(0, summary.UnreadCount)
	s.Equal(1, s.calls["POST /chat/rooms/7/read"])
}

func (s *ServiceTestSuite) TestSessionRejectsEmptyAndClosed() {
	s.handleRoomEndpoints("7")

	session, err := s.service.Open(s.ctx, &OpenInput{RoomID: 7})
	s.Require().NoError(err)

	s.ErrorIs(session.Send(s.ctx, "   "), ErrEmptyMessage)

	session.Close()
	s.ErrorIs(session.Send(s.ctx, "hello"), ErrSessionClosed)
}

func mustAPI(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	client, err := api.New(&api.Config{BaseURL: baseURL})
	if err != nil {
		t.Fatal(err)
	}
	return client
}
