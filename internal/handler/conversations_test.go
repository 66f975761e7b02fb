package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooni-app/salesdesk/internal/model"
	"github.com/tooni-app/salesdesk/internal/panel"
	"github.com/tooni-app/salesdesk/internal/store"
	"github.com/tooni-app/salesdesk/pkg/logger"
)

// stubFetcher feeds the panel manager a canned result.
type stubFetcher struct {
	result model.SuggestionResult
}

func (f *stubFetcher) FetchSuggestions(ctx context.Context, _ []model.Message) (model.SuggestionResult, error) {
	return f.result, nil
}

type testEnv struct {
	store   *store.Store
	manager *panel.Manager
	router  chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.NewNop()
	st := store.New(log)
	st.Seed()

	fetcher := &stubFetcher{result: model.SuggestionResult{
		Suggestions:    []string{"a", "b", "c"},
		Summary:        "painel pronto",
		ConversionRate: 65,
	}}
	manager := panel.NewManager(fetcher, 10*time.Millisecond, 0, log)
	t.Cleanup(manager.Close)

	conversations := NewConversationHandler(st, log)
	customers := NewCustomerHandler(st, log)
	panels := NewPanelHandler(manager, st, log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversations.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversations.Get)
				r.Post("/messages", conversations.Send)
				r.Post("/read", conversations.MarkRead)
				r.Post("/payment-link", conversations.SendPaymentLink)
				r.Post("/sold", conversations.MarkSold)
				r.Get("/panel", panels.Get)
				r.Post("/panel/refresh", panels.Refresh)
			})
		})
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", customers.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", customers.Get)
				r.Put("/stage", customers.UpdateStage)
			})
		})
	})

	return &testEnv{store: st, manager: manager, router: r}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestConversationList(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/conversations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ListConversationsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Conversations, 3)
	assert.Equal(t, "conv-001", resp.Conversations[0].ID)
	assert.NotEmpty(t, resp.Conversations[0].LastMessage)
}

func TestConversationGet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/conversations/conv-001", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var conv model.Conversation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&conv))
	assert.Equal(t, "João Silva", conv.CustomerName)
	assert.Len(t, conv.Messages, 8)
}

func TestConversationGet_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/conversations/conv-999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/conversations/conv-001/messages",
		`{"content":"Posso te ajudar com mais alguma coisa?"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp model.SendMessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Message)
	assert.Equal(t, model.SenderAgent, resp.Message.Sender, "sender defaults to agent")
	assert.NotEmpty(t, resp.Message.ID)

	require.NotNil(t, resp.Conversation)
	assert.Equal(t, "Posso te ajudar com mais alguma coisa?", resp.Conversation.LastMessage)
	assert.Len(t, resp.Conversation.Messages, 9)
}

func TestSendMessage_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{content`},
		{"empty content", `{"content":""}`},
		{"bad sender", `{"sender":"robot","content":"oi"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/conversations/conv-001/messages", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSendMessage_ConversationNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/conversations/conv-999/messages", `{"content":"oi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkRead(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/conversations/conv-002/read", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var conv model.Conversation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&conv))
	assert.Equal(t, 0, conv.UnreadCount)
}

func TestSendPaymentLink(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/conversations/conv-003/payment-link", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]model.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	msg := resp["message"]
	assert.Equal(t, model.SenderAgent, msg.Sender)
	assert.Contains(t, msg.Content, "pagamento.tooni.app/checkout")

	conv, err := env.store.Conversation("conv-003")
	require.NoError(t, err)
	assert.Equal(t, msg.Content, conv.LastMessage)
}

func TestMarkSold(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/conversations/conv-001/sold", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Customer model.Customer `json:"customer"`
		Message  model.Message  `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.StageSold, resp.Customer.FunnelStage)
	assert.Equal(t, soldThanksMessage, resp.Message.Content)

	cust, err := env.store.Customer("cust-001")
	require.NoError(t, err)
	assert.Equal(t, model.StageSold, cust.FunnelStage)
}

func TestCustomerList(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/customers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ListCustomersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Total)
}

func TestCustomerGet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/customers/cust-002", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cust model.Customer
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cust))
	assert.Equal(t, "Maria Oliveira", cust.Name)
	assert.Equal(t, model.StageNewLead, cust.FunnelStage)
}

func TestCustomerUpdateStage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/customers/cust-002/stage",
		`{"funnel_stage":"in_negotiation"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var cust model.Customer
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cust))
	assert.Equal(t, model.StageInNegotiation, cust.FunnelStage)
}

func TestCustomerUpdateStage_Errors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/customers/cust-002/stage", `{"funnel_stage":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/customers/cust-999/stage", `{"funnel_stage":"sold"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPanelGet_InitialSnapshot(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/conversations/conv-001/panel", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap panel.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, panel.StateIdle, snap.State)
}

func TestPanelGet_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/conversations/conv-999/panel", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPanelRefresh(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/conversations/conv-001/panel/refresh", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		return env.manager.For("conv-001").Snapshot().State == panel.StateReady
	}, 2*time.Second, 5*time.Millisecond)

	rec = env.do(t, http.MethodGet, "/api/v1/conversations/conv-001/panel", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap panel.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, "painel pronto", snap.Summary)
	assert.Equal(t, []string{"a", "b", "c"}, snap.Suggestions)
}

func TestPanelRefresh_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/conversations/conv-999/panel/refresh", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
