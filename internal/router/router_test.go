package router_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"docextract/internal/domain"
	"docextract/internal/handler"
	"docextract/internal/router"
	"docextract/internal/service"
	"docextract/mocks"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newEngine(svc service.ChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return router.Setup(
		zap.NewNop(),
		[]string{"http://localhost:3000"},
		handler.NewChatHandler(svc, 1024),
		handler.NewInterpretHandler(),
		handler.NewHealthHandler(okPinger{}),
	)
}

func TestSetup_Routes(t *testing.T) {
	svc := new(mocks.MockChatService)
	convID, msgID := uuid.New(), uuid.New()
	svc.On("GetConversation", mock.Anything, convID).Return(&domain.Conversation{ID: convID}, nil)
	svc.On("RenderMessage", mock.Anything, convID, msgID, domain.FormatJSON).
		Return(&service.Rendering{Format: domain.FormatJSON}, nil)

	r := newEngine(svc)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/readyz", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodPost, "/api/v1/interpret", `{"text":"Total Cost: $5"}`, http.StatusOK},
		{http.MethodGet, "/api/v1/conversations/" + convID.String(), "", http.StatusOK},
		{http.MethodGet, "/api/v1/conversations/" + convID.String() + "/messages/" + msgID.String() + "/render?format=json", "", http.StatusOK},
		{http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}
