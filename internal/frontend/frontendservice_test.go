package frontend

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jo-hoe/cnpdb/internal/common"
	"github.com/jo-hoe/cnpdb/internal/core"
	"github.com/jo-hoe/cnpdb/internal/core/coretest"
	"github.com/labstack/echo/v4"
)

func newTestServer(t *testing.T) (*echo.Echo, *core.CoreService) {
	t.Helper()
	config := coretest.Config(t)
	service := coretest.NewServiceWithConfig(t, config)

	e := echo.New()
	e.Validator = &common.GenericEchoValidator{}
	NewFrontendService(config, service).SetRoutes(e)
	return e, service
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(e *echo.Echo, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRootRedirect(t *testing.T) {
	e, _ := newTestServer(t)
	rec := get(e, "/")
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/"+MainPageName {
		t.Errorf("status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestPages(t *testing.T) {
	e, service := newTestServer(t)
	wants := map[string]string{
		"/index.html":      "Crustacean Neuropeptide Database",
		"/search.html":     `name="family"`,
		"/blast.html":      `<option value="BLOSUM62" selected>`,
		"/tools.html":      "Peptide Property Calculator",
		"/statistics.html": "/statistics/composition.png",
		"/glossary.html":   "Boman Index",
		"/submission.html": `hx-post="/htmx/submission"`,
	}
	for path, want := range wants {
		t.Run(path, func(t *testing.T) {
			rec := get(e, path)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), want) {
				t.Errorf("page missing %q", want)
			}
		})
	}

	stats, err := service.Statistics()
	if err != nil {
		t.Fatalf("Statistics error: %v", err)
	}
	if stats.TotalViews != len(wants) {
		t.Errorf("TotalViews = %d, want %d", stats.TotalViews, len(wants))
	}
}

func TestHtmxSearch(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postForm(e, "/htmx/search", url.Values{"family": {"Orcokinin"}})
	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, "2 peptides found") {
		t.Fatalf("unexpected response %d: %s", rec.Code, body)
	}
	if !strings.Contains(body, `name="id" value="1"`) || !strings.Contains(body, `formaction="/download/fasta"`) {
		t.Errorf("missing selection form: %s", body)
	}

	rec = postForm(e, "/htmx/search", url.Values{"seq": {"WWWWW"}})
	if !strings.Contains(rec.Body.String(), "No peptides match") {
		t.Errorf("expected empty result message: %s", rec.Body.String())
	}

	rec = postForm(e, "/htmx/search", url.Values{"mass_min": {"heavy"}})
	if !strings.Contains(rec.Body.String(), `class="warning"`) {
		t.Errorf("expected warning: %s", rec.Body.String())
	}
}

func TestHtmxBlast(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postForm(e, "/htmx/blast", url.Values{"query": {">q\nFDAFTTGFGHN"}, "topN": {"5"}})
	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, "<td>cNP1</td>") || !strings.Contains(body, "|||||||||||") {
		t.Fatalf("unexpected response %d: %s", rec.Code, body)
	}

	rec = postForm(e, "/htmx/blast", url.Values{"query": {">header only"}})
	if !strings.Contains(rec.Body.String(), "No valid query sequence") {
		t.Errorf("expected empty query warning: %s", rec.Body.String())
	}

	rec = postForm(e, "/htmx/blast", url.Values{"query": {"HELLO 123 WORLD"}})
	if body := rec.Body.String(); !strings.Contains(body, `class="warning"`) || !strings.Contains(body, "Invalid query sequence") {
		t.Errorf("expected invalid residue warning: %s", body)
	}

	rec = postForm(e, "/htmx/blast", url.Values{"query": {"<script>"}})
	if strings.Contains(rec.Body.String(), "<script>") {
		t.Errorf("query not escaped: %s", rec.Body.String())
	}
}

func TestHtmxProperties(t *testing.T) {
	e, _ := newTestServer(t)
	rec := postForm(e, "/htmx/properties", url.Values{"sequence": {"fdaf ttgf ghn"}})
	body := rec.Body.String()
	if !strings.Contains(body, "FDAFTTGFGHN") || !strings.Contains(body, "Boman Index") {
		t.Errorf("unexpected properties fragment: %s", body)
	}

	rec = postForm(e, "/htmx/properties", url.Values{"sequence": {""}})
	if !strings.Contains(rec.Body.String(), `class="warning"`) {
		t.Errorf("expected warning: %s", rec.Body.String())
	}
}

func TestHtmxSubmission(t *testing.T) {
	e, service := newTestServer(t)
	rec := postForm(e, "/htmx/submission", url.Values{"name": {"R"}, "email": {"r@example.org"}, "message": {"new peptide"}})
	if !strings.Contains(rec.Body.String(), "Thank you") {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
	submissions, err := service.Submissions()
	if err != nil || len(submissions) != 1 {
		t.Errorf("submissions = %v, %v", submissions, err)
	}

	rec = postForm(e, "/htmx/submission", url.Values{"name": {"R"}, "email": {"nope"}, "message": {"x"}})
	if !strings.Contains(rec.Body.String(), `class="warning"`) {
		t.Errorf("expected warning: %s", rec.Body.String())
	}
}

func TestDownloads(t *testing.T) {
	e, _ := newTestServer(t)
	tests := []struct {
		target      string
		form        url.Values
		status      int
		contentType string
		filename    string
	}{
		{"/download/fasta", url.Values{"id": {"1", "2"}}, http.StatusOK, echo.MIMETextPlainCharsetUTF8, "selected_peptides.fasta"},
		{"/download/xlsx", url.Values{"id": {"1"}}, http.StatusOK, mimeXLSX, "selected_peptides.xlsx"},
		{"/download/zip", url.Values{"id": {"1"}}, http.StatusOK, mimeZIP, "selected_peptides_assets.zip"},
		{"/download/blast-report", url.Values{"query": {"FDAFTTGFGHN"}}, http.StatusOK, echo.MIMETextPlainCharsetUTF8, "blast_report.txt"},
		{"/download/fasta", url.Values{}, http.StatusBadRequest, "", ""},
		{"/download/fasta", url.Values{"id": {"x"}}, http.StatusBadRequest, "", ""},
		{"/download/fasta", url.Values{"id": {"99"}}, http.StatusNotFound, "", ""},
		{"/download/blast-report", url.Values{"query": {">empty"}}, http.StatusBadRequest, "", ""},
		{"/download/blast-report", url.Values{"query": {"FDAF123"}}, http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.target+"?"+tt.form.Encode(), func(t *testing.T) {
			rec := postForm(e, tt.target, tt.form)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			if got := rec.Header().Get(echo.HeaderContentType); got != tt.contentType {
				t.Errorf("content type = %q, want %q", got, tt.contentType)
			}
			if got := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(got, tt.filename) {
				t.Errorf("content disposition = %q, want %q", got, tt.filename)
			}
		})
	}

	rec := postForm(e, "/download/fasta", url.Values{"id": {"1"}})
	if rec.Body.String() != ">cNP1\nFDAFTTGFGHN\n" {
		t.Errorf("fasta = %q", rec.Body.String())
	}
}

func TestCompositionChart(t *testing.T) {
	e, _ := newTestServer(t)
	rec := get(e, "/statistics/composition.png")
	if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != mimePNG {
		t.Fatalf("status = %d, content type = %q", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
}

func TestIcon(t *testing.T) {
	e, _ := newTestServer(t)
	rec := get(e, "/icon.svg")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Errorf("status = %d", rec.Code)
	}
}
