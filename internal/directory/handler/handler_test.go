package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"notify-gateway/internal/directory/handler/mocks"
	"notify-gateway/internal/directory/provider"
	"notify-gateway/internal/directory/service"
	"notify-gateway/internal/domain"
)

type DirectoryHandlerSuite struct {
	suite.Suite
}

func TestDirectoryHandlerSuite(t *testing.T) {
	suite.Run(t, new(DirectoryHandlerSuite))
}

func newTestRouter(t *testing.T, svc Service, strict bool) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(svc, logger, strict).Register(r)
	return r
}

func newMockService(t *testing.T) *mocks.MockService {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return mocks.NewMockService(ctrl)
}

func (s *DirectoryHandlerSuite) get(router http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/supervisors", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (s *DirectoryHandlerSuite) TestListSuccess() {
	svc := newMockService(s.T())
	svc.EXPECT().FetchDirectory(gomock.Any()).Return([]domain.Supervisor{
		{ID: "1", Name: "A - Choi, Sam", Phone: "2", IdentificationNumber: "X1"},
	}, nil)

	rec := s.get(newTestRouter(s.T(), svc, false))

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[{"id":"1","name":"A - Choi, Sam","phone":"2","identificationNumber":"X1"}]`, rec.Body.String())
}

func (s *DirectoryHandlerSuite) TestListEmptyIsArray() {
	svc := newMockService(s.T())
	svc.EXPECT().FetchDirectory(gomock.Any()).Return([]domain.Supervisor{}, nil)

	rec := s.get(newTestRouter(s.T(), svc, false))

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())
}

func (s *DirectoryHandlerSuite) TestUpstreamFailureDegradesTo200() {
	svc := newMockService(s.T())
	svc.EXPECT().FetchDirectory(gomock.Any()).Return(nil, &service.FetchError{
		Category: provider.ErrorProviderOutage,
		Message:  "request failed with status code 500",
	})

	rec := s.get(newTestRouter(s.T(), svc, false))

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"error":"request failed with status code 500"}`, rec.Body.String())
}

func (s *DirectoryHandlerSuite) TestUpstreamFailureStrictStatus() {
	svc := newMockService(s.T())
	svc.EXPECT().FetchDirectory(gomock.Any()).Return(nil, &service.FetchError{Message: "timeout"})

	rec := s.get(newTestRouter(s.T(), svc, true))

	s.Equal(http.StatusBadGateway, rec.Code)
	s.JSONEq(`{"error":"timeout"}`, rec.Body.String())
}

func (s *DirectoryHandlerSuite) TestUnexpectedErrorHidesDetails() {
	svc := newMockService(s.T())
	svc.EXPECT().FetchDirectory(gomock.Any()).Return(nil, errors.New("nil pointer somewhere"))

	rec := s.get(newTestRouter(s.T(), svc, false))

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"error":"internal error"}`, rec.Body.String())
}

func TestListEndToEnd(t *testing.T) {
	p := provider.Static{Name: "static", Records: []domain.RawSupervisorRecord{
		{ID: "2", Jurisdiction: "B", LastName: "Lee", FirstName: "Ann", Phone: "1", IdentificationNumber: "X2"},
		{ID: "1", Jurisdiction: "A", LastName: "Choi", FirstName: "Sam", Phone: "2", IdentificationNumber: "X1"},
	}}
	svc := service.New(p, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := newTestRouter(t, svc, false)

	req := httptest.NewRequest(http.MethodGet, "/api/supervisors", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []domain.Supervisor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []domain.Supervisor{
		{ID: "1", Name: "A - Choi, Sam", Phone: "2", IdentificationNumber: "X1"},
		{ID: "2", Name: "B - Lee, Ann", Phone: "1", IdentificationNumber: "X2"},
	}, got)
}

func TestUpstreamNetworkErrorEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	svc := service.New(provider.NewHTTPProvider("directory", url, 0), slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := newTestRouter(t, svc, false)

	req := httptest.NewRequest(http.MethodGet, "/api/supervisors", nil)
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { router.ServeHTTP(rec, req) })

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}
