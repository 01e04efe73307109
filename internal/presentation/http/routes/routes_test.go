package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/star-temple/starprint/internal/application/service"
	"github.com/star-temple/starprint/internal/config"
	"github.com/star-temple/starprint/internal/domain/entity"
	"github.com/star-temple/starprint/internal/domain/repository"
	"github.com/star-temple/starprint/internal/presentation/http/handler"
	"github.com/star-temple/starprint/internal/presentation/http/middleware"
	"github.com/star-temple/starprint/pkg/printer"
	"github.com/star-temple/starprint/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPrinter struct {
	mu    sync.Mutex
	jobs  [][]byte
	err   error
	delay time.Duration
}

func (p *stubPrinter) Print(ctx context.Context, data []byte) error {
	time.Sleep(p.delay)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, data)
	return nil
}

func (p *stubPrinter) Close() error                         { return nil }
func (p *stubPrinter) IsConnected(ctx context.Context) bool { return p.err == nil }

func (p *stubPrinter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

type memTxRepo struct{ txs map[int]*entity.Transaction }

func (r *memTxRepo) GetWithDetails(ctx context.Context, id int) (*entity.Transaction, error) {
	return r.txs[id], nil
}

type memJobRepo struct {
	mu   sync.Mutex
	jobs []entity.PrintJob
}

func (r *memJobRepo) Create(ctx context.Context, job *entity.PrintJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, *job)
	return nil
}

func (r *memJobRepo) List(ctx context.Context, params *repository.PrintJobFilterParams) ([]entity.PrintJob, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.PrintJob
	for _, j := range r.jobs {
		if params.Status != "" && j.Status != params.Status {
			continue
		}
		out = append(out, j)
	}
	return out, int64(len(out)), nil
}

type memIdemRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func (r *memIdemRepo) GetByKey(ctx context.Context, key, station string) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[station+"/"+key], nil
}

func (r *memIdemRepo) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[ikey.Station+"/"+ikey.Key] = ikey
	return nil
}

func (r *memIdemRepo) DeleteExpired(ctx context.Context) error { return nil }

type testServer struct {
	router  *gin.Engine
	printer *stubPrinter
	jobs    *memJobRepo
	jwt     *utils.JWTManager
}

func newTestServer(t *testing.T, rateLimit config.RateLimitConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p := &stubPrinter{}
	jobs := &memJobRepo{}
	txs := &memTxRepo{txs: map[int]*entity.Transaction{
		42: {
			ID:              42,
			ReceiptNo:       "R-42",
			DevoteeName:     "Ravi",
			AmountPaid:      101,
			TransactionDate: time.Date(2026, 2, 7, 5, 0, 0, 0, time.UTC),
			Seva:            &entity.Seva{NameEng: "Archane"},
		},
	}}

	svc := service.NewPrinterService(p, printer.TypeBridge, service.DefaultReceiptHeader(), txs, jobs, zap.NewNop())
	jwtManager := utils.NewJWTManager("test-secret", time.Hour)

	rl := NewRateLimiter(&rateLimit)
	t.Cleanup(rl.Stop)

	cfg := &config.Config{App: config.AppConfig{Name: "starprint"}}
	router := Setup(&Handlers{Printer: handler.NewPrinterHandler(svc)}, &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: &memIdemRepo{keys: map[string]*entity.IdempotencyKey{}},
		RateLimiter:     rl,
		Log:             zap.NewNop(),
	})

	return &testServer{router: router, printer: p, jobs: jobs, jwt: jwtManager}
}

func (s *testServer) token(t *testing.T, station, role string) string {
	t.Helper()
	tok, err := s.jwt.GenerateStationToken(station, role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func receiptBody() gin.H {
	return gin.H{
		"receipt": gin.H{
			"receipt_no":      "R100",
			"date":            "01-01-2025",
			"devotee_name_en": "Ravi Kumar",
			"gothra":          "Bharadwaja",
			"amount_paid":     501,
		},
		"seva": gin.H{"name_eng": "Archane", "name_kan": "ಅರ್ಚನೆ"},
		"lang": "KN",
	}
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	w := s.do(t, http.MethodGet, "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "starprint")
}

func TestPrinterRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})

	w := s.do(t, http.MethodPost, "/api/v1/printer/receipt", "", receiptBody(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/printer/receipt", "not-a-token", receiptBody(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, s.printer.count())
}

func TestPrintReceipt(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	w := s.do(t, http.MethodPost, "/api/v1/printer/receipt", s.token(t, "counter-1", utils.RoleClerk), receiptBody(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decode(t, w)
	assert.True(t, env.Success)

	var res service.PrintResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "Sent to Printer", res.Result)
	assert.Equal(t, "counter-1", res.Job.Station)
	assert.Contains(t, res.Preview.Text, "Seva: Archane")
	assert.NotContains(t, res.Preview.Text, "ಅರ್ಚನೆ")

	require.Equal(t, 1, s.printer.count())
	assert.Equal(t, service.EncodeReceipt(&entity.ReceiptData{
		ReceiptNo:     "R100",
		Date:          "01-01-2025",
		DevoteeNameEn: "Ravi Kumar",
		Gothra:        "Bharadwaja",
		AmountPaid:    501,
	}, &entity.SevaInfo{NameEng: "Archane"}, entity.LanguageEnglish), s.printer.jobs[0])
}

func TestPrintReceiptValidation(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	tok := s.token(t, "counter-1", "")

	cases := map[string]func(gin.H){
		"missing receipt no": func(b gin.H) { delete(b["receipt"].(gin.H), "receipt_no") },
		"missing date":       func(b gin.H) { delete(b["receipt"].(gin.H), "date") },
		"missing name":       func(b gin.H) { delete(b["receipt"].(gin.H), "devotee_name_en") },
		"missing amount":     func(b gin.H) { delete(b["receipt"].(gin.H), "amount_paid") },
		"negative amount":    func(b gin.H) { b["receipt"].(gin.H)["amount_paid"] = -1 },
		"missing seva":       func(b gin.H) { delete(b, "seva") },
		"bad lang":           func(b gin.H) { b["lang"] = "FR" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			body := receiptBody()
			mutate(body)
			w := s.do(t, http.MethodPost, "/api/v1/printer/receipt", tok, body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Zero(t, s.printer.count())
}

func TestPrintReceiptValidationReportsFields(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	body := receiptBody()
	delete(body["receipt"].(gin.H), "receipt_no")

	w := s.do(t, http.MethodPost, "/api/v1/printer/receipt", s.token(t, "counter-1", ""), body, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Message string `json:"message"`
		Errors  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Invalid request", env.Message)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "Receipt.ReceiptNo", env.Errors[0].Field)
	assert.Equal(t, "failed on required", env.Errors[0].Message)
}

func TestPrintReceiptBridgeDown(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	s.printer.err = &printer.BridgeError{Cause: errors.New("connection refused")}

	w := s.do(t, http.MethodPost, "/api/v1/printer/receipt", s.token(t, "counter-1", ""), receiptBody(), nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	env := decode(t, w)
	assert.False(t, env.Success)

	var data struct {
		Warning string                 `json:"warning"`
		Job     entity.PrintJob        `json:"job"`
		Preview service.ReceiptPreview `json:"preview"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Printer Bridge Unreachable", data.Warning)
	assert.Equal(t, entity.PrintJobStatusFailed, data.Job.Status)
	assert.Contains(t, data.Preview.Text, "TOTAL: Rs. 501")
}

func TestPrintReceiptIdempotency(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	tok := s.token(t, "counter-1", "")
	key := map[string]string{middleware.IdempotencyKeyHeader: "click-1"}

	first := s.do(t, http.MethodPost, "/api/v1/printer/receipt", tok, receiptBody(), key)
	require.Equal(t, http.StatusOK, first.Code)

	second := s.do(t, http.MethodPost, "/api/v1/printer/receipt", tok, receiptBody(), key)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, s.printer.count())

	// Same key from another station is a different request.
	other := s.do(t, http.MethodPost, "/api/v1/printer/receipt", s.token(t, "counter-2", ""), receiptBody(), key)
	require.Equal(t, http.StatusOK, other.Code)
	assert.Empty(t, other.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 2, s.printer.count())
}

func TestConcurrentDoubleClickPrintsOnce(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	s.printer.delay = 200 * time.Millisecond
	tok := s.token(t, "counter-1", "")

	const clicks = 5
	reqs := make([]*http.Request, clicks)
	for i := range reqs {
		body, err := json.Marshal(receiptBody())
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/printer/receipt", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set(middleware.IdempotencyKeyHeader, "click-dbl")
		reqs[i] = req
	}

	recs := make([]*httptest.ResponseRecorder, clicks)
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recs[i] = httptest.NewRecorder()
			s.router.ServeHTTP(recs[i], reqs[i])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, s.printer.count())
	replayed := 0
	for _, w := range recs {
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, recs[0].Body.String(), w.Body.String())
		if w.Header().Get("X-Idempotency-Replayed") == "true" {
			replayed++
		}
	}
	assert.Equal(t, clicks-1, replayed)
}

func TestIdempotencyKeyReusedOnOtherEndpoint(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	tok := s.token(t, "counter-1", "")
	key := map[string]string{middleware.IdempotencyKeyHeader: "click-3"}

	w := s.do(t, http.MethodPost, "/api/v1/printer/receipt", tok, receiptBody(), key)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/printer/transactions/42/reprint", tok, nil, key)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "Idempotency-Key was already used for a different request", env.Message)
	assert.Equal(t, 1, s.printer.count())
}

func TestFailedPrintIsNotReplayed(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	tok := s.token(t, "counter-1", "")
	key := map[string]string{middleware.IdempotencyKeyHeader: "click-2"}

	s.printer.err = &printer.BridgeError{Cause: errors.New("connection refused")}
	w := s.do(t, http.MethodPost, "/api/v1/printer/receipt", tok, receiptBody(), key)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	s.printer.err = nil
	w = s.do(t, http.MethodPost, "/api/v1/printer/receipt", tok, receiptBody(), key)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 1, s.printer.count())
}

func TestPreviewDoesNotPrint(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	w := s.do(t, http.MethodPost, "/api/v1/printer/preview", s.token(t, "counter-1", ""), receiptBody(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "raw_base64")
	assert.Zero(t, s.printer.count())
}

func TestReprintTransaction(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	tok := s.token(t, "counter-1", "")

	w := s.do(t, http.MethodPost, "/api/v1/printer/transactions/42/reprint?lang=KN", tok, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Rcpt #: R-42")

	w = s.do(t, http.MethodPost, "/api/v1/printer/transactions/7/reprint", tok, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/printer/transactions/abc/reprint", tok, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/printer/transactions/42/reprint?lang=TA", tok, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTestPrintAndStatus(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	tok := s.token(t, "counter-1", "")

	w := s.do(t, http.MethodPost, "/api/v1/printer/test", tok, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.printer.count())

	w = s.do(t, http.MethodGet, "/api/v1/printer/status", tok, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status service.PrinterStatus
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &status))
	assert.True(t, status.Connected)
	assert.Equal(t, printer.TypeBridge, status.Type)
}

func TestListJobsRequiresAdmin(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	s.do(t, http.MethodPost, "/api/v1/printer/test", s.token(t, "counter-1", ""), nil, nil)

	w := s.do(t, http.MethodGet, "/api/v1/printer/jobs", s.token(t, "counter-1", utils.RoleClerk), nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/printer/jobs?status=sent&page=1&per_page=10", s.token(t, "office", utils.RoleAdmin), nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page struct {
		Items []entity.PrintJob `json:"items"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, entity.PrintJobSourceTest, page.Items[0].Source)

	w = s.do(t, http.MethodGet, "/api/v1/printer/jobs?status=queued", s.token(t, "office", utils.RoleAdmin), nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitPerStation(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{Requests: 2, Duration: 60})
	a := s.token(t, "counter-1", "")

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodGet, "/api/v1/printer/status", a, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := s.do(t, http.MethodGet, "/api/v1/printer/status", a, nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/printer/status", s.token(t, "counter-2", ""), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
