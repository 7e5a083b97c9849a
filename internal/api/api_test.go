package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bulletin-board-api/internal/api"
	"github.com/bulletin-board-api/internal/config"
	"github.com/bulletin-board-api/internal/legacy"
	"github.com/bulletin-board-api/internal/mocks"
	"github.com/bulletin-board-api/internal/models"
	"github.com/bulletin-board-api/internal/repository"
	"github.com/bulletin-board-api/internal/service"
	"github.com/bulletin-board-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type testEnv struct {
	router    *gin.Engine
	cfg       *config.Config
	importSvc *mocks.MockImportService
	exportSvc *mocks.MockExportService
	jobSvc    *mocks.MockJobService
	boardSvc  *mocks.MockBoardService
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	return setupTestRouterWithConfig(t, func(*config.Config) {})
}

func setupTestRouterWithConfig(t *testing.T, modify func(*config.Config)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		importSvc: mocks.NewMockImportService(),
		exportSvc: mocks.NewMockExportService(),
		jobSvc:    mocks.NewMockJobService(),
		boardSvc:  mocks.NewMockBoardService(),
	}

	services := &service.Services{
		Import: env.importSvc,
		Export: env.exportSvc,
		Job:    env.jobSvc,
		Board:  env.boardSvc,
	}

	env.cfg = &config.Config{
		Server: config.ServerConfig{Port: "8080", AllowedOrigins: []string{"*"}},
		Import: config.ImportConfig{
			MaxUploadSize: 1024 * 1024,
			UploadDir:     t.TempDir(),
		},
	}
	modify(env.cfg)

	env.router = api.NewRouter(services, env.cfg, zerolog.Nop())
	return env
}

func (env *testEnv) do(method, url string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func multipartUpload(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write(content)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func (env *testEnv) upload(t *testing.T, fields map[string]string, filename string, content []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, fields, filename, content)
	req := httptest.NewRequest("POST", "/v1/imports", body)
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

const sampleExport = `<?xml version="1.0" encoding="UTF-8"?><posts><post><title>dGl0bGU=</title></post></posts>`

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("GET", "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "bulletin-board-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	env.exportSvc.Counts[service.ResourceCategories] = 5
	env.exportSvc.Counts[service.ResourcePosts] = 1000
	env.exportSvc.Counts[service.ResourceComments] = 2000

	w := env.do("GET", "/metrics", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	db := response["database"].(map[string]interface{})
	if db["posts"].(float64) != 1000 {
		t.Errorf("Expected 1000 posts, got %v", db["posts"])
	}
	if db["categories"].(float64) != 5 {
		t.Errorf("Expected 5 categories, got %v", db["categories"])
	}
}

func TestCreateImport(t *testing.T) {
	env := setupTestRouter(t)

	w := env.upload(t, map[string]string{"category": "free"}, "export.xml", []byte(sampleExport), nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d. Body: %s", w.Code, w.Body.String())
	}

	if len(env.importSvc.CreatedPaths) != 1 {
		t.Fatalf("Expected 1 created job, got %d", len(env.importSvc.CreatedPaths))
	}
	saved := env.importSvc.CreatedPaths[0]
	if !strings.HasPrefix(saved, env.cfg.Import.UploadDir) {
		t.Errorf("Expected upload under %s, got %s", env.cfg.Import.UploadDir, saved)
	}
	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("uploaded file not saved: %v", err)
	}
	if string(data) != sampleExport {
		t.Errorf("saved file content mismatch: %q", data)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["category"] != "free" {
		t.Errorf("Expected category 'free' in response, got %v", response["category"])
	}
	if response["job_id"] != "test-job-id" {
		t.Errorf("Expected job id, got %v", response["job_id"])
	}
}

func TestCreateImport_CategoryFromFilename(t *testing.T) {
	env := setupTestRouter(t)

	var gotCategory string
	env.importSvc.CreateJobFunc = func(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error) {
		gotCategory = req.Category
		return &models.Job{ID: "job-1", Category: models.CategoryPhoto, Status: models.JobStatusPending}, nil
	}

	w := env.upload(t, nil, "module_g1.photo.xml", []byte(sampleExport), nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d. Body: %s", w.Code, w.Body.String())
	}
	if gotCategory != "module_g1.photo.xml" {
		t.Errorf("Expected the file name as category source, got %q", gotCategory)
	}
}

func TestCreateImport_UnknownCategory(t *testing.T) {
	env := setupTestRouter(t)
	env.importSvc.CreateJobFunc = func(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error) {
		return nil, fmt.Errorf("%w: %q", legacy.ErrUnknownCategory, req.Category)
	}

	w := env.upload(t, map[string]string{"category": "nope"}, "export.xml", []byte(sampleExport), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d. Body: %s", w.Code, w.Body.String())
	}

	entries, _ := os.ReadDir(env.cfg.Import.UploadDir)
	if len(entries) != 0 {
		t.Errorf("Expected rejected upload to be removed, found %d files", len(entries))
	}
}

func TestCreateImport_Validation(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name          string
		filename      string
		content       []byte
		expectedError string
	}{
		{"missing file", "", nil, "file upload is required"},
		{"wrong extension", "export.csv", []byte("a,b\n"), "legacy export must be an .xml file"},
		{"empty file", "export.xml", []byte{}, "file is empty"},
		{"too large", "export.xml", bytes.Repeat([]byte("x"), 2*1024*1024), "file too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.upload(t, map[string]string{"category": "free"}, tt.filename, tt.content, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d. Body: %s", w.Code, w.Body.String())
			}
			if !bytes.Contains(w.Body.Bytes(), []byte(tt.expectedError)) {
				t.Errorf("Expected error '%s' in response, got: %s", tt.expectedError, w.Body.String())
			}
		})
	}

	if len(env.importSvc.CreatedPaths) != 0 {
		t.Errorf("Expected no jobs created, got %d", len(env.importSvc.CreatedPaths))
	}
}

func TestIdempotencyKey(t *testing.T) {
	env := setupTestRouter(t)

	env.jobSvc.Jobs["existing-job-123"] = &models.JobResponse{
		Job: models.Job{
			ID:             "existing-job-123",
			Category:       models.CategoryFree,
			Status:         models.JobStatusCompleted,
			IdempotencyKey: "unique-idempotency-key",
		},
	}

	w := env.upload(t, map[string]string{"category": "free"}, "export.xml", []byte(sampleExport),
		map[string]string{"Idempotency-Key": "unique-idempotency-key"})

	// Should return existing job, not create new one
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 (existing job), got %d", w.Code)
	}
	if len(env.importSvc.CreatedPaths) != 0 {
		t.Errorf("Expected no new job, got %d", len(env.importSvc.CreatedPaths))
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("existing-job-123")) {
		t.Errorf("Expected existing job in response, got: %s", w.Body.String())
	}
}

func TestGetImportStatus(t *testing.T) {
	env := setupTestRouter(t)

	now := time.Now()
	env.jobSvc.Jobs["test-job-123"] = &models.JobResponse{
		Job: models.Job{
			ID:               "test-job-123",
			Type:             models.JobTypeImport,
			Category:         models.CategoryFree,
			Status:           models.JobStatusCompleted,
			TotalRecords:     10,
			SuccessfulCount:  10,
			CommentsImported: 25,
			CommentsFailed:   1,
			FieldsRecovered:  2,
			DurationMs:       5000,
			CreatedAt:        now,
		},
		ErrorCount: 3,
	}

	w := env.do("GET", "/v1/imports/test-job-123", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response models.JobResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	if response.Job.ID != "test-job-123" {
		t.Errorf("Expected job ID 'test-job-123', got '%s'", response.Job.ID)
	}
	if response.Job.Status != models.JobStatusCompleted {
		t.Errorf("Expected status completed, got %s", response.Job.Status)
	}
	if response.Job.CommentsImported != 25 {
		t.Errorf("Expected 25 comments imported, got %d", response.Job.CommentsImported)
	}
	if response.Job.FieldsRecovered != 2 {
		t.Errorf("Expected 2 recovered fields, got %d", response.Job.FieldsRecovered)
	}
}

func TestGetImportStatus_NotFound(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("GET", "/v1/imports/nonexistent-job", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetImportErrors(t *testing.T) {
	env := setupTestRouter(t)

	env.jobSvc.Errors["job-with-errors"] = []models.JobError{
		{Line: 1, Field: "title", Message: "undecodable base64, left blank", Value: "!!!"},
		{Line: 5, Field: "comments[0].author", Message: "undecodable base64, left blank"},
		{Line: 10, Field: "post", Message: "insert failed"},
	}

	w := env.do("GET", "/v1/imports/job-with-errors/errors", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response["error_count"].(float64) != 3 {
		t.Errorf("Expected 3 errors, got %v", response["error_count"])
	}
	if errs := response["errors"].([]interface{}); len(errs) != 3 {
		t.Errorf("Expected 3 error details, got %d", len(errs))
	}
}

func TestGetImportErrors_CSV(t *testing.T) {
	env := setupTestRouter(t)

	env.jobSvc.Errors["job-with-errors"] = []models.JobError{
		{Line: 4, Field: "regdate", Message: "undecodable base64, left blank", Value: "@@"},
	}

	w := env.do("GET", "/v1/imports/job-with-errors/errors?format=csv", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("line,field,message,value")) {
		t.Error("CSV should contain header row")
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("4,regdate,")) {
		t.Errorf("CSV should contain error data, got: %s", w.Body.String())
	}
}

func TestGetImportErrors_EmptyErrors(t *testing.T) {
	env := setupTestRouter(t)
	env.jobSvc.Errors["job-no-errors"] = []models.JobError{}

	w := env.do("GET", "/v1/imports/job-no-errors/errors", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["error_count"].(float64) != 0 {
		t.Errorf("Expected 0 errors, got %v", response["error_count"])
	}
}

func TestGetImportErrors_InvalidFormat(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("GET", "/v1/imports/job-1/errors?format=xml", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestExportStream_ValidationErrors(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name          string
		url           string
		expectedError string
	}{
		{"missing resource", "/v1/exports", "resource parameter is required"},
		{"invalid resource", "/v1/exports?resource=users", "resource must be one of"},
		{"invalid format", "/v1/exports?resource=posts&format=csv", "format must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("GET", tt.url, nil, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
			if !bytes.Contains(w.Body.Bytes(), []byte(tt.expectedError)) {
				t.Errorf("Expected error '%s' in response, got: %s", tt.expectedError, w.Body.String())
			}
		})
	}
}

func TestExportStream_Posts(t *testing.T) {
	env := setupTestRouter(t)

	var gotFormat, gotCategory string
	env.exportSvc.StreamPostsFunc = func(ctx context.Context, w http.ResponseWriter, format, category string) error {
		gotFormat, gotCategory = format, category
		w.Write([]byte(`{"id":1}` + "\n"))
		return nil
	}

	w := env.do("GET", "/v1/exports?resource=posts&category="+models.CategoryPhoto, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if gotFormat != service.FormatNDJSON {
		t.Errorf("Expected default ndjson format, got %q", gotFormat)
	}
	if gotCategory != models.CategoryPhoto {
		t.Errorf("Expected category filter %q, got %q", models.CategoryPhoto, gotCategory)
	}
	if !strings.Contains(w.Body.String(), `{"id":1}`) {
		t.Errorf("Expected streamed body, got %s", w.Body.String())
	}
}

func TestCORSHeaders(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("OPTIONS", "/v1/imports", nil, map[string]string{
		"Origin":                        "http://board.example.com",
		"Access-Control-Request-Method": "POST",
	})

	if w.Code != http.StatusNoContent && w.Code != http.StatusOK {
		t.Errorf("Expected 2xx for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin '*', got '%s'", got)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("Expected Access-Control-Allow-Methods header")
	}
}

func TestRateLimit(t *testing.T) {
	env := setupTestRouterWithConfig(t, func(cfg *config.Config) {
		cfg.Server.RateLimitPerMinute = 2
	})

	first := env.do("GET", "/health", nil, nil)
	if first.Code != http.StatusOK {
		t.Fatalf("Expected first request to pass, got %d", first.Code)
	}

	second := env.do("GET", "/health", nil, nil)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 once the burst is spent, got %d", second.Code)
	}
}

func TestCategories(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("POST", "/v1/categories", []byte(`{"name":"공지사항","type":"text"}`), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}

	w = env.do("GET", "/v1/categories", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var list struct {
		Categories []models.Category `json:"categories"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Categories) != 1 || list.Categories[0].Name != "공지사항" {
		t.Errorf("Unexpected categories: %+v", list.Categories)
	}

	w = env.do("PATCH", "/v1/categories/1", []byte(`{"type":"photo"}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if env.boardSvc.Categories[0].Type != models.CategoryTypePhoto {
		t.Errorf("Expected type photo, got %s", env.boardSvc.Categories[0].Type)
	}

	w = env.do("DELETE", "/v1/categories/1", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = env.do("DELETE", "/v1/categories/1", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for deleted category, got %d", w.Code)
	}
}

func TestCategories_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"validation", validation.Errors{{Field: "type", Message: "type is required"}}, http.StatusBadRequest},
		{"duplicate", fmt.Errorf("create: %w", repository.ErrDuplicateCategory), http.StatusConflict},
		{"internal", fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t)
			env.boardSvc.Err = tt.err

			w := env.do("POST", "/v1/categories", []byte(`{"name":"x","type":"text"}`), nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestCategories_BadID(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("PATCH", "/v1/categories/abc", []byte(`{"type":"photo"}`), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListPosts(t *testing.T) {
	env := setupTestRouter(t)
	env.boardSvc.Posts[1] = &models.Post{ID: 1, Title: "hello", Category: models.CategoryFree}

	w := env.do("GET", "/v1/posts?category="+models.CategoryFree+"&q=hel&page=2", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	opts := env.boardSvc.LastListOpts
	if opts.Category != models.CategoryFree || opts.Query != "hel" || opts.Page != 2 {
		t.Errorf("Unexpected list options: %+v", opts)
	}

	var page models.PostPage
	json.Unmarshal(w.Body.Bytes(), &page)
	if page.Total != 1 || len(page.Posts) != 1 {
		t.Errorf("Expected 1 post, got %+v", page)
	}

	w = env.do("GET", "/v1/posts?page=0", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for page 0, got %d", w.Code)
	}
}

func TestGetPost(t *testing.T) {
	env := setupTestRouter(t)
	env.boardSvc.Posts[7] = &models.Post{ID: 7, Title: "seven"}

	w := env.do("GET", "/v1/posts/7", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"seven"`)) {
		t.Errorf("Expected post in body, got %s", w.Body.String())
	}

	w = env.do("GET", "/v1/posts/8", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCreatePostAndComment(t *testing.T) {
	env := setupTestRouter(t)

	body := []byte(`{"title":"t","author":"a","content":"<p>c</p>","category":"` + models.CategoryFree + `","password":"secret"}`)
	w := env.do("POST", "/v1/posts", body, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}
	if len(env.boardSvc.CreatedPosts) != 1 || env.boardSvc.CreatedPosts[0].Password != "secret" {
		t.Errorf("Expected password forwarded, got %+v", env.boardSvc.CreatedPosts)
	}

	w = env.do("POST", "/v1/posts/1/comments", []byte(`{"author":"b","content":"nice"}`), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}

	w = env.do("POST", "/v1/posts/99/comments", []byte(`{"author":"b","content":"nice"}`), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for missing post, got %d", w.Code)
	}

	w = env.do("POST", "/v1/posts", []byte(`not json`), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad body, got %d", w.Code)
	}
}

func TestDeletePost_PasswordSources(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		body    []byte
		headers map[string]string
	}{
		{"header", "/v1/posts/1", nil, map[string]string{"X-Post-Password": "pw1234"}},
		{"json body", "/v1/posts/1", []byte(`{"password":"pw1234"}`), nil},
		{"query", "/v1/posts/1?password=pw1234", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t)
			env.boardSvc.Posts[1] = &models.Post{ID: 1}

			w := env.do("DELETE", tt.url, tt.body, tt.headers)
			if w.Code != http.StatusNoContent {
				t.Fatalf("Expected status 204, got %d. Body: %s", w.Code, w.Body.String())
			}
			if env.boardSvc.DeletedPassword != "pw1234" {
				t.Errorf("Expected password 'pw1234', got %q", env.boardSvc.DeletedPassword)
			}
		})
	}
}

func TestDeletePost_InvalidPassword(t *testing.T) {
	env := setupTestRouter(t)
	env.boardSvc.Posts[1] = &models.Post{ID: 1}
	env.boardSvc.Err = service.ErrInvalidPassword

	w := env.do("DELETE", "/v1/posts/1?password=wrong", nil, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) HealthCheck(ctx context.Context) error { return p.err }

func TestReadiness(t *testing.T) {
	env := setupTestRouter(t)
	api.RegisterReadiness(env.router, fakePinger{})

	if w := env.do("GET", "/ready", nil, nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	down := setupTestRouter(t)
	api.RegisterReadiness(down.router, fakePinger{err: fmt.Errorf("connection refused")})

	if w := down.do("GET", "/ready", nil, nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}
