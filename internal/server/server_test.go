package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yomijipsa-art/concrete-ai/constants"
	"github.com/yomijipsa-art/concrete-ai/internal/common"
	"github.com/yomijipsa-art/concrete-ai/internal/core/async"
	"github.com/yomijipsa-art/concrete-ai/internal/core/report"
)

type mockAssembler struct {
	mock.Mock
}

func (m *mockAssembler) Assemble(ctx context.Context, photos []report.Photo) (*report.Result, error) {
	args := m.Called(ctx, photos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Result), args.Error(1)
}

type mockJobs struct {
	mock.Mock
}

func (m *mockJobs) Submit(ctx context.Context, photos []report.Photo) (string, error) {
	args := m.Called(ctx, photos)
	return args.String(0), args.Error(1)
}

func (m *mockJobs) Get(id string) (async.Snapshot, bool) {
	args := m.Called(id)
	return args.Get(0).(async.Snapshot), args.Bool(1)
}

func (m *mockJobs) Result(id string) (*report.Result, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Result), args.Error(1)
}

func (m *mockJobs) Cancel(id string) (async.Snapshot, error) {
	args := m.Called(id)
	return args.Get(0).(async.Snapshot), args.Error(1)
}

type part struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func twoParts() []part {
	return []part{
		{field: "photos", name: "site.jpg", data: []byte("photo-one")},
		{field: "photos", name: "ticket.png", data: []byte("photo-two")},
	}
}

func newTestServer(t *testing.T, asm *mockAssembler, jobs *mockJobs) *httptest.Server {
	t.Helper()
	deps := Dependencies{}
	if asm != nil {
		deps.Assembler = asm
	}
	if jobs != nil {
		deps.Jobs = jobs
	}
	srv := httptest.NewServer(ConfigureRouter(Config{MaxUploadMB: 1, Dependencies: deps}))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url string, parts ...part) *http.Response {
	t.Helper()
	body, ct := multipartBody(t, parts...)
	resp, err := http.Post(url, ct, body)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var out errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCreateReport_StreamsWorkbook(t *testing.T) {
	asm := new(mockAssembler)
	srv := newTestServer(t, asm, nil)

	asm.On("Assemble", mock.Anything, []report.Photo{
		{Filename: "site.jpg", Data: []byte("photo-one")},
		{Filename: "ticket.png", Data: []byte("photo-two")},
	}).Return(&report.Result{
		Data:     []byte("PK-xlsx"),
		Filename: "현장보고서_3층 슬래브.xlsx",
		Missing:  []constants.FieldKey{constants.Chloride},
	}, nil).Once()

	resp := post(t, srv.URL+"/api/v1/reports", twoParts()...)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, constants.XLSXMimeType, resp.Header.Get("Content-Type"))
	assert.Equal(t,
		`attachment; filename="report.xlsx"; filename*=UTF-8''%ED%98%84%EC%9E%A5%EB%B3%B4%EA%B3%A0%EC%84%9C_3%EC%B8%B5%20%EC%8A%AC%EB%9E%98%EB%B8%8C.xlsx`,
		resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "%EC%97%BC%ED%99%94%EB%AC%BC", resp.Header.Get("X-Missing-Fields"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK-xlsx"), body)
	asm.AssertExpectations(t)
}

func TestCreateReport_RejectsBadUploads(t *testing.T) {
	tests := []struct {
		name  string
		parts []part
	}{
		{name: "one photo", parts: twoParts()[:1]},
		{name: "three photos", parts: append(twoParts(), part{field: "photos", name: "c.jpg", data: []byte("x")})},
		{name: "wrong field", parts: []part{{field: "image", name: "a.jpg", data: []byte("x")}, {field: "image", name: "b.jpg", data: []byte("y")}}},
		{name: "unsupported type", parts: []part{{field: "photos", name: "a.pdf", data: []byte("x")}, {field: "photos", name: "b.jpg", data: []byte("y")}}},
		{name: "empty photo", parts: []part{{field: "photos", name: "a.jpg"}, {field: "photos", name: "b.jpg", data: []byte("y")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm := new(mockAssembler)
			srv := newTestServer(t, asm, nil)

			resp := post(t, srv.URL+"/api/v1/reports", tt.parts...)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, common.CodeUserInput, decodeError(t, resp).Code)
			asm.AssertNotCalled(t, "Assemble", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateReport_UploadLimit(t *testing.T) {
	asm := new(mockAssembler)
	router := ConfigureRouter(Config{MaxUploadMB: 1, Dependencies: Dependencies{Assembler: asm}})

	body, ct := multipartBody(t,
		part{field: "photos", name: "a.jpg", data: make([]byte, 2<<20)},
		part{field: "photos", name: "b.jpg", data: []byte("y")},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	asm.AssertNotCalled(t, "Assemble", mock.Anything, mock.Anything)
}

func TestCreateReport_MapsAssemblerErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"user input", common.NewUserInputError("template file not found: t.xlsx", nil), http.StatusBadRequest, "template file not found: t.xlsx"},
		{"processing", common.NewProcessingError("vision model call failed", errors.New("api key leaked here")), http.StatusBadGateway, "vision model call failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm := new(mockAssembler)
			srv := newTestServer(t, asm, nil)
			asm.On("Assemble", mock.Anything, mock.Anything).Return(nil, tt.err)

			resp := post(t, srv.URL+"/api/v1/reports", twoParts()...)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.msg, decodeError(t, resp).Error)
		})
	}
}

func TestJobs_Endpoints(t *testing.T) {
	jobs := new(mockJobs)
	srv := newTestServer(t, nil, jobs)

	jobs.On("Submit", mock.Anything, mock.MatchedBy(func(p []report.Photo) bool {
		return len(p) == 2 && p[0].Filename == "site.jpg" && p[1].Filename == "ticket.png"
	})).Return("job-1", nil).Once()

	resp := post(t, srv.URL+"/api/v1/jobs", twoParts()...)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "/api/v1/jobs/job-1", resp.Header.Get("Location"))
	var accepted map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accepted))
	assert.Equal(t, map[string]string{"id": "job-1", "status": "QUEUED"}, accepted)

	jobs.On("Get", "job-1").Return(async.Snapshot{ID: "job-1", Status: constants.JobStatusRunning, Busy: true}, true).Once()
	resp, err := http.Get(srv.URL + "/api/v1/jobs/job-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap async.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.True(t, snap.Busy)
	assert.Equal(t, constants.JobStatusRunning, snap.Status)

	jobs.On("Result", "job-1").Return(nil, common.NewConflictError("job is still RUNNING")).Once()
	resp, err = http.Get(srv.URL + "/api/v1/jobs/job-1/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	jobs.On("Result", "job-1").Return(&report.Result{Data: []byte("PK"), Filename: constants.ReportFallbackName}, nil).Once()
	resp, err = http.Get(srv.URL + "/api/v1/jobs/job-1/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "filename*=UTF-8''")

	jobs.On("Cancel", "job-1").Return(async.Snapshot{ID: "job-1", Status: constants.JobStatusCanceled}, nil).Once()
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/jobs/job-1", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	jobs.AssertExpectations(t)
}

func TestJobs_UnknownAndUnavailable(t *testing.T) {
	jobs := new(mockJobs)
	srv := newTestServer(t, nil, jobs)

	jobs.On("Get", "missing").Return(async.Snapshot{}, false)
	resp, err := http.Get(srv.URL + "/api/v1/jobs/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	jobs.On("Submit", mock.Anything, mock.Anything).Return("", common.NewUnavailableError("job queue is full"))
	resp = post(t, srv.URL+"/api/v1/jobs", twoParts()...)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "job queue is full", decodeError(t, resp).Error)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t,
		`attachment; filename="report.xlsx"; filename*=UTF-8''a%2Bb%20c.xlsx`,
		contentDisposition("a+b c.xlsx"))
}
