package helpers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/forgo/hungry/internal/handler"
	"github.com/forgo/hungry/internal/middleware"
	"github.com/forgo/hungry/internal/model"
	"github.com/forgo/hungry/internal/service"
)

// ============================================================================
// Search API Server
// ============================================================================

// staticLoader serves a fixed dataset to the catalog
type staticLoader struct {
	restaurants []model.Restaurant
}

func (l staticLoader) LoadAll(ctx context.Context) ([]*model.Restaurant, error) {
	out := make([]*model.Restaurant, len(l.restaurants))
	for i := range l.restaurants {
		r := l.restaurants[i]
		out[i] = &r
	}
	return out, nil
}

// SearchServer is a running search API over an in-memory catalog
type SearchServer struct {
	*httptest.Server
	Catalog *service.CatalogService

	requests chan *http.Request
}

// NewSearchServer starts a search API serving restaurants. The catalog is
// loaded before the server accepts requests; the server closes with the test.
func NewSearchServer(t *testing.T, restaurants ...model.Restaurant) *SearchServer {
	t.Helper()

	catalog := service.NewCatalogService(service.CatalogServiceConfig{
		Loader: staticLoader{restaurants: restaurants},
	})
	if err := catalog.Reload(context.Background()); err != nil {
		t.Fatalf("helpers: failed to load catalog: %v", err)
	}

	mux := http.NewServeMux()
	handler.NewSearchHandler(handler.SearchHandlerConfig{Catalog: catalog}).RegisterRoutes(mux)

	s := &SearchServer{
		Catalog:  catalog,
		requests: make(chan *http.Request, 64),
	}
	record := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case s.requests <- r.Clone(context.Background()):
			default:
			}
			next.ServeHTTP(w, r)
		})
	}
	s.Server = httptest.NewServer(middleware.Chain(mux, record, middleware.RequestID, middleware.Recovery))
	t.Cleanup(s.Close)
	return s
}

// Requests drains and returns the requests served so far
func (s *SearchServer) Requests() []*http.Request {
	var out []*http.Request
	for {
		select {
		case r := <-s.requests:
			out = append(out, r)
		default:
			return out
		}
	}
}

// ============================================================================
// Request Helpers
// ============================================================================

// SearchPath builds a /api/search path from query parameters
func SearchPath(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return "/api/search?" + values.Encode()
}

// Do serves a GET for path through h and returns the recorded response
func Do(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// Response Assertion Helpers
// ============================================================================

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, resp *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if resp.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, resp.Code, resp.Body.String())
	}
}

// AssertProblemDetails validates an RFC 9457 Problem Details error response
func AssertProblemDetails(t *testing.T, resp *httptest.ResponseRecorder, expectedStatus int, expectedCode model.ErrorCode) {
	t.Helper()

	AssertStatus(t, resp, expectedStatus)

	var problem model.ProblemDetails
	bodyBytes := resp.Body.Bytes()
	if err := json.Unmarshal(bodyBytes, &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v. Body: %s", err, string(bodyBytes))
	}

	if problem.Status != expectedStatus {
		t.Errorf("expected problem.status %d, got %d", expectedStatus, problem.Status)
	}

	if expectedCode != 0 && problem.Code != expectedCode {
		t.Errorf("expected problem.code %d, got %d", expectedCode, problem.Code)
	}
}

// AssertValidationError checks for a validation error on a specific field
func AssertValidationError(t *testing.T, resp *httptest.ResponseRecorder, field string) {
	t.Helper()

	AssertStatus(t, resp, http.StatusUnprocessableEntity)

	var problem model.ProblemDetails
	if err := json.Unmarshal(resp.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v", err)
	}

	for _, fe := range problem.Errors {
		if fe.Field == field {
			return
		}
	}

	t.Errorf("expected validation error on field %q, but not found. Errors: %+v", field, problem.Errors)
}

// DecodeResponse decodes the JSON response body into v
func DecodeResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, resp.Body.String())
	}
}

// DecodePage decodes a search page response
func DecodePage(t *testing.T, resp *httptest.ResponseRecorder) model.SearchPage {
	t.Helper()
	var page model.SearchPage
	DecodeResponse(t, resp, &page)
	return page
}

// Names returns the names of restaurants in order
func Names(restaurants []model.Restaurant) []string {
	out := make([]string, len(restaurants))
	for i, r := range restaurants {
		out[i] = r.Name
	}
	return out
}
