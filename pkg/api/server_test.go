package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cbodonnell/deacoudre/pkg/repositories"
	"github.com/cbodonnell/deacoudre/pkg/repositories/mocks"
	"github.com/cbodonnell/deacoudre/pkg/repositories/models"
	"github.com/cbodonnell/deacoudre/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	stateManager := state.NewInMemoryStateManager()
	require.NoError(t, stateManager.Set(context.Background(), &state.Status{Timestamp: 42, Phase: state.PhaseLobby}))

	results := []*models.MatchResult{{ID: 2, Winner: "w"}, {ID: 1}}
	repo.EXPECT().ListMatchResults(gomock.Any(), 0).Return(results, nil)
	repo.EXPECT().ListMatchResults(gomock.Any(), 5).Return(nil, errors.New("boom"))
	repo.EXPECT().GetMatchResult(gomock.Any(), int64(2)).Return(results[0], nil)
	repo.EXPECT().GetMatchResult(gomock.Any(), int64(9)).Return(nil, &repositories.ErrNotFound{})

	router := NewRouter(stateManager, repo)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "healthz", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "session", method: http.MethodGet, path: "/session", wantStatus: http.StatusOK, wantBody: `{"timestamp":42,"phase":"lobby","players":null}`},
		{name: "preflight", method: http.MethodOptions, path: "/session", wantStatus: http.StatusNoContent},
		{name: "list results", method: http.MethodGet, path: "/results", wantStatus: http.StatusOK, wantBody: `[{"id":2,"started_at":0,"ended_at":0,"winner":"w","ticks":0,"participants":null},{"id":1,"started_at":0,"ended_at":0,"ticks":0,"participants":null}]`},
		{name: "repository failure", method: http.MethodGet, path: "/results?limit=5", wantStatus: http.StatusInternalServerError},
		{name: "bad limit", method: http.MethodGet, path: "/results?limit=0", wantStatus: http.StatusBadRequest},
		{name: "get result", method: http.MethodGet, path: "/results/2", wantStatus: http.StatusOK, wantBody: `{"id":2,"started_at":0,"ended_at":0,"winner":"w","ticks":0,"participants":null}`},
		{name: "missing result", method: http.MethodGet, path: "/results/9", wantStatus: http.StatusNotFound},
		{name: "non numeric id", method: http.MethodGet, path: "/results/abc", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPost, path: "/session", wantStatus: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody == "" {
				return
			}
			if json.Valid([]byte(tt.wantBody)) {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
