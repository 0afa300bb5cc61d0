package backend

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/jo-hoe/cnpdb/internal/backend/alignment"
	"github.com/jo-hoe/cnpdb/internal/backend/preprocess"
	"github.com/jo-hoe/cnpdb/internal/backend/properties"
	"github.com/jo-hoe/cnpdb/internal/backend/reference"
	"github.com/jo-hoe/cnpdb/internal/common"
	"github.com/jo-hoe/cnpdb/internal/core"

	"github.com/labstack/echo/v4"
)

type APIService struct {
	config      *core.ServiceConfig
	coreService *core.CoreService
}

// Peptide is the JSON form of a reference row. Missing numeric values are null.
type Peptide struct {
	CNPDBID        int                 `json:"cnpdbId"`
	ID             string              `json:"id"`
	Sequence       string              `json:"sequence"`
	ActiveSequence string              `json:"activeSequence,omitempty"`
	Family         string              `json:"family"`
	Organism       string              `json:"organism"`
	Tissue         string              `json:"tissue"`
	PTM            string              `json:"ptm,omitempty"`
	Existence      string              `json:"existence,omitempty"`
	Topic          string              `json:"topic,omitempty"`
	Instrument     string              `json:"instrument,omitempty"`
	Technique      string              `json:"technique,omitempty"`
	DOI            string              `json:"doi,omitempty"`
	Properties     map[string]*float64 `json:"properties"`
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService) *APIService {
	return &APIService{
		config:      config,
		coreService: coreService,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	// Set probe route
	e.GET("/probe", func(c echo.Context) error {
		return c.String(http.StatusOK, "API Service is running")
	})

	api := e.Group("/api")
	api.GET("/peptides", s.listPeptidesHandler)
	api.GET("/peptides/:id", s.getPeptideHandler)
	api.POST("/blast", s.blastHandler)
	api.POST("/properties", s.propertiesHandler)
	api.GET("/statistics", s.statisticsHandler)
}

func (s *APIService) listPeptidesHandler(ctx echo.Context) error {
	filter, err := reference.FilterFromValues(ctx.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	peptides, err := s.coreService.SearchPeptides(filter)
	if err != nil {
		slog.Error("listPeptidesHandler: failed to search peptides", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to search peptides")
	}
	response := make([]Peptide, len(peptides))
	for i, p := range peptides {
		response[i] = toPeptide(p)
	}
	return ctx.JSON(http.StatusOK, response)
}

func (s *APIService) getPeptideHandler(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "peptide id must be a number")
	}
	p, err := s.coreService.Peptide(id)
	if errors.Is(err, core.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		slog.Error("getPeptideHandler: failed to get peptide", "cnpdb_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get peptide")
	}
	return ctx.JSON(http.StatusOK, toPeptide(p))
}

func (s *APIService) blastHandler(ctx echo.Context) error {
	var request common.BlastRequest
	if err := common.BindAndValidate(ctx, &request); err != nil {
		return err
	}
	params := request.Params(s.coreService.DefaultSearchParams())
	result, err := s.coreService.Blast(ctx.Request().Context(), request.Query, params)
	switch {
	case errors.Is(err, preprocess.ErrEmptyQuery), errors.Is(err, alignment.ErrInvalidSequence),
		errors.Is(err, alignment.ErrInvalidParams):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		slog.Error("blastHandler: search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return ctx.JSON(http.StatusOK, result)
}

func (s *APIService) propertiesHandler(ctx echo.Context) error {
	var request common.PropertiesRequest
	if err := common.BindAndValidate(ctx, &request); err != nil {
		return err
	}
	props, err := s.coreService.Properties(request.Sequence)
	if errors.Is(err, properties.ErrEmptySequence) || errors.Is(err, properties.ErrInvalidResidue) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		slog.Error("propertiesHandler: calculation failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "calculation failed")
	}
	return ctx.JSON(http.StatusOK, props)
}

func (s *APIService) statisticsHandler(ctx echo.Context) error {
	stats, err := s.coreService.Statistics()
	if err != nil {
		slog.Error("statisticsHandler: failed to compute statistics", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func toPeptide(p reference.Peptide) Peptide {
	values := make(map[string]*float64, len(reference.NumericColumns))
	for _, column := range reference.NumericColumns {
		v := p.Number(column)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[string(column)] = nil
			continue
		}
		values[string(column)] = &v
	}
	return Peptide{
		CNPDBID:        p.CNPDBID,
		ID:             p.FastaID(),
		Sequence:       p.Sequence,
		ActiveSequence: p.ActiveSequence,
		Family:         p.Family,
		Organism:       p.Organism,
		Tissue:         p.Tissue,
		PTM:            p.PTM,
		Existence:      p.Existence,
		Topic:          p.Topic,
		Instrument:     p.Instrument,
		Technique:      p.Technique,
		DOI:            p.DOI,
		Properties:     values,
	}
}
