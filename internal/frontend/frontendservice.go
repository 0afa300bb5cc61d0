package frontend

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jo-hoe/cnpdb/internal/backend/alignment"
	"github.com/jo-hoe/cnpdb/internal/backend/preprocess"
	"github.com/jo-hoe/cnpdb/internal/backend/reference"
	"github.com/jo-hoe/cnpdb/internal/common"
	"github.com/jo-hoe/cnpdb/internal/core"
	"github.com/labstack/echo/v4"
)

const (
	MainPageName = "index.html"
	mimePNG      = "image/png"
	mimeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeZIP      = "application/zip"
)

// pages maps each page route to its view; all of them record page views
var pages = []struct {
	name   string
	title  string
	active string
}{
	{MainPageName, "Home", "home"},
	{"search.html", "Search", "search"},
	{"blast.html", "BLAST", "blast"},
	{"tools.html", "Tools", "tools"},
	{"statistics.html", "Statistics", "statistics"},
	{"glossary.html", "Glossary", "glossary"},
	{"submission.html", "Submission", "submission"},
}

// PageData is passed to every page view
type PageData struct {
	Title  string
	Active string
	Data   any
}

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		config:      config,
	}
}

// rootRedirectHandler redirects root path to index.html
func (service *FrontendService) rootRedirectHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusMovedPermanently, "/"+MainPageName)
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	// Create template renderer
	e.Renderer = newTemplate()

	e.GET("/", service.rootRedirectHandler) // Redirect root to index.html
	pageGroup := e.Group("", service.pageViewMiddleware)
	for _, page := range pages {
		pageGroup.GET("/"+page.name, service.pageHandler(page.name, page.title, page.active))
	}

	e.POST("/htmx/search", service.htmxSearchHandler)
	e.POST("/htmx/blast", service.htmxBlastHandler)
	e.POST("/htmx/properties", service.htmxPropertiesHandler)
	e.POST("/htmx/submission", service.htmxSubmissionHandler)

	e.POST("/download/blast-report", service.downloadBlastReportHandler)
	e.POST("/download/fasta", service.downloadFastaHandler)
	e.POST("/download/xlsx", service.downloadXlsxHandler)
	e.POST("/download/zip", service.downloadZipHandler)

	e.GET("/statistics/composition.png", service.compositionChartHandler)

	// Favicon (SVG) route
	e.GET("/icon.svg", service.iconHandler)
}

// pageViewMiddleware records a visit for every successfully rendered page
func (service *FrontendService) pageViewMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		err := next(ctx)
		if err == nil && ctx.Response().Status < http.StatusBadRequest {
			if rerr := service.coreService.RecordPageView(ctx.Path()); rerr != nil {
				slog.Warn("pageViewMiddleware: failed to record page view", "path", ctx.Path(), "error", rerr)
			}
		}
		return err
	}
}

func (service *FrontendService) pageHandler(name, title, active string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data, err := service.pageData(name)
		if err != nil {
			slog.Error("pageHandler: failed to prepare page", "page", name, "status", http.StatusInternalServerError, "error", err)
			return ctx.String(http.StatusInternalServerError, "Failed to load page")
		}
		return ctx.Render(http.StatusOK, name, PageData{Title: title, Active: active, Data: data})
	}
}

type categoryField struct {
	Label   string
	Key     string
	Options []string
}

type rangeField struct {
	Label string
	Key   string
	Min   float64
	Max   float64
}

type blastForm struct {
	Params      alignment.Params
	Matrices    []string
	TopNChoices []int
}

func (service *FrontendService) pageData(name string) (any, error) {
	switch name {
	case MainPageName:
		table, err := service.coreService.Table()
		if err != nil {
			return nil, err
		}
		return map[string]int{
			"Peptides": table.Len(),
			"Families": len(table.UniqueValues(reference.FamilyColumn)),
		}, nil
	case "search.html":
		options, err := service.coreService.FilterOptions()
		if err != nil {
			return nil, err
		}
		categories := make([]categoryField, 0, len(reference.CategoricalColumns))
		for _, column := range reference.CategoricalColumns {
			categories = append(categories, categoryField{
				Label:   categoryLabel(column),
				Key:     reference.CategoricalKeys[column],
				Options: options[column],
			})
		}
		ranges := make([]rangeField, 0, len(reference.NumericColumns))
		for _, column := range reference.NumericColumns {
			r := reference.DefaultRanges[column]
			ranges = append(ranges, rangeField{Label: string(column), Key: reference.NumericKeys[column], Min: r.Min, Max: r.Max})
		}
		return map[string]any{"Categories": categories, "Ranges": ranges}, nil
	case "blast.html":
		return blastForm{
			Params:      service.coreService.DefaultSearchParams(),
			Matrices:    alignment.Matrices,
			TopNChoices: alignment.TopNChoices,
		}, nil
	case "statistics.html":
		return service.coreService.Statistics()
	}
	return nil, nil
}

func categoryLabel(column reference.CategoricalColumn) string {
	if column == reference.OrganismColumn {
		return "Organism"
	}
	return string(column)
}

func (service *FrontendService) htmxSearchHandler(ctx echo.Context) error {
	form, err := ctx.FormParams()
	if err != nil {
		slog.Error("htmxSearchHandler: failed to parse form", "status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Failed to parse form")
	}
	filter, err := reference.FilterFromValues(form)
	if err != nil {
		return ctx.HTML(http.StatusOK, warningHTML(err.Error()))
	}
	peptides, err := service.coreService.SearchPeptides(filter)
	if err != nil {
		slog.Error("htmxSearchHandler: failed to search peptides", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to search peptides")
	}
	service.setNoCache(ctx)
	return ctx.HTML(http.StatusOK, buildPeptideTableHTML(peptides))
}

func (service *FrontendService) htmxBlastHandler(ctx echo.Context) error {
	var request common.BlastRequest
	if err := common.BindAndValidate(ctx, &request); err != nil {
		return ctx.HTML(http.StatusOK, warningHTML(userMessage(err)))
	}
	params := request.Params(service.coreService.DefaultSearchParams())
	result, err := service.coreService.Blast(ctx.Request().Context(), request.Query, params)
	switch {
	case errors.Is(err, preprocess.ErrEmptyQuery):
		return ctx.HTML(http.StatusOK, warningHTML("No valid query sequence. Please enter amino acid residues."))
	case errors.Is(err, alignment.ErrInvalidSequence):
		return ctx.HTML(http.StatusOK, warningHTML("Invalid query sequence: "+err.Error()))
	case errors.Is(err, alignment.ErrInvalidParams):
		return ctx.HTML(http.StatusOK, warningHTML(err.Error()))
	case err != nil:
		slog.Error("htmxBlastHandler: search failed", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Search failed")
	}
	service.setNoCache(ctx)
	return ctx.HTML(http.StatusOK, buildBlastResultHTML(result))
}

func (service *FrontendService) htmxPropertiesHandler(ctx echo.Context) error {
	var request common.PropertiesRequest
	if err := common.BindAndValidate(ctx, &request); err != nil {
		return ctx.HTML(http.StatusOK, warningHTML("Please enter a peptide sequence."))
	}
	props, err := service.coreService.Properties(request.Sequence)
	if err != nil {
		return ctx.HTML(http.StatusOK, warningHTML(err.Error()))
	}
	return ctx.HTML(http.StatusOK, buildPropertiesHTML(props))
}

func (service *FrontendService) htmxSubmissionHandler(ctx echo.Context) error {
	var request common.SubmissionRequest
	if err := common.BindAndValidate(ctx, &request); err != nil {
		return ctx.HTML(http.StatusOK, warningHTML("Please provide your name, a valid email address and a message."))
	}
	id, err := service.coreService.Submit(request.Submission())
	if err != nil {
		slog.Error("htmxSubmissionHandler: failed to store submission", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to store submission")
	}
	return ctx.HTML(http.StatusOK, fmt.Sprintf(`<p>Thank you! Your submission was received (reference %s).</p>`, id))
}

func (service *FrontendService) downloadBlastReportHandler(ctx echo.Context) error {
	var request common.BlastRequest
	if err := common.BindAndValidate(ctx, &request); err != nil {
		return ctx.String(http.StatusBadRequest, userMessage(err))
	}
	var buf bytes.Buffer
	params := request.Params(service.coreService.DefaultSearchParams())
	err := service.coreService.BlastReport(ctx.Request().Context(), &buf, request.Query, params)
	if errors.Is(err, preprocess.ErrEmptyQuery) || errors.Is(err, alignment.ErrInvalidSequence) ||
		errors.Is(err, alignment.ErrInvalidParams) {
		return ctx.String(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		slog.Error("downloadBlastReportHandler: failed to build report", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to build report")
	}
	return service.attachment(ctx, "blast_report.txt", echo.MIMETextPlainCharsetUTF8, buf.Bytes())
}

func (service *FrontendService) downloadFastaHandler(ctx echo.Context) error {
	ids, err := selectedIDs(ctx)
	if err != nil {
		return ctx.String(http.StatusBadRequest, err.Error())
	}
	var buf bytes.Buffer
	if err := service.coreService.ExportFASTA(&buf, ids); err != nil {
		return service.exportError(ctx, "downloadFastaHandler", err)
	}
	return service.attachment(ctx, "selected_peptides.fasta", echo.MIMETextPlainCharsetUTF8, buf.Bytes())
}

func (service *FrontendService) downloadXlsxHandler(ctx echo.Context) error {
	ids, err := selectedIDs(ctx)
	if err != nil {
		return ctx.String(http.StatusBadRequest, err.Error())
	}
	var buf bytes.Buffer
	if err := service.coreService.ExportXLSX(&buf, ids); err != nil {
		return service.exportError(ctx, "downloadXlsxHandler", err)
	}
	return service.attachment(ctx, "selected_peptides.xlsx", mimeXLSX, buf.Bytes())
}

func (service *FrontendService) downloadZipHandler(ctx echo.Context) error {
	ids, err := selectedIDs(ctx)
	if err != nil {
		return ctx.String(http.StatusBadRequest, err.Error())
	}
	var buf bytes.Buffer
	added, err := service.coreService.ExportZIP(&buf, ids)
	if err != nil {
		return service.exportError(ctx, "downloadZipHandler", err)
	}
	slog.Debug("downloadZipHandler: bundled assets", "files", added, "peptides", len(ids))
	return service.attachment(ctx, "selected_peptides_assets.zip", mimeZIP, buf.Bytes())
}

func (service *FrontendService) exportError(ctx echo.Context, handler string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return ctx.String(http.StatusNotFound, "No peptides selected")
	}
	slog.Error(handler+": export failed", "status", http.StatusInternalServerError, "error", err)
	return ctx.String(http.StatusInternalServerError, "Export failed")
}

func (service *FrontendService) compositionChartHandler(ctx echo.Context) error {
	chart, err := service.coreService.CompositionChart()
	if err != nil {
		slog.Error("compositionChartHandler: failed to render chart", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to render chart")
	}
	service.setNoCache(ctx)
	return ctx.Blob(http.StatusOK, mimePNG, chart)
}

// selectedIDs reads the checked "id" form values
func selectedIDs(ctx echo.Context) ([]int, error) {
	form, err := ctx.FormParams()
	if err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}
	values := form["id"]
	if len(values) == 0 {
		return nil, errors.New("no peptides selected")
	}
	ids := make([]int, 0, len(values))
	for _, v := range values {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid peptide id %q", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (service *FrontendService) attachment(ctx echo.Context, filename, contentType string, data []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Blob(http.StatusOK, contentType, data)
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}

// userMessage unwraps an echo error into its message
func userMessage(err error) string {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprint(httpErr.Message)
	}
	return err.Error()
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}
