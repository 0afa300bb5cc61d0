package common

import (
	"strings"

	"github.com/jo-hoe/cnpdb/internal/backend/alignment"
	"github.com/jo-hoe/cnpdb/internal/backend/database"
)

// BlastRequest is the similarity search input of both the html form and the JSON API
type BlastRequest struct {
	Query         string  `json:"query" form:"query" validate:"required,max=10000"`
	Mode          string  `json:"mode" form:"mode" validate:"omitempty,oneof=local global"`
	Matrix        string  `json:"matrix" form:"matrix"`
	MatchScore    int     `json:"matchScore" form:"matchScore"`
	MismatchScore int     `json:"mismatchScore" form:"mismatchScore"`
	GapOpen       *int    `json:"gapOpen" form:"gapOpen" validate:"omitempty,min=0"`
	GapExtend     *int    `json:"gapExtend" form:"gapExtend" validate:"omitempty,min=0"`
	WordSize      int     `json:"wordSize" form:"wordSize" validate:"min=0"`
	Threshold     float64 `json:"threshold" form:"threshold" validate:"min=0"`
	TopN          int     `json:"topN" form:"topN" validate:"omitempty,oneof=5 10 20"`
	LowComplexity bool    `json:"lowComplexity" form:"lowComplexity"`
}

// Params merges the request over the given defaults
func (r BlastRequest) Params(defaults alignment.Params) alignment.Params {
	p := defaults
	if r.Mode != "" {
		p.Mode = alignment.Mode(r.Mode)
	}
	if r.Matrix != "" {
		p.Matrix = strings.ToUpper(r.Matrix)
	}
	if r.MatchScore != 0 || r.MismatchScore != 0 {
		p.MatchScore, p.MismatchScore = r.MatchScore, r.MismatchScore
	}
	// nil means absent, so an explicit 0 disables the penalty
	if r.GapOpen != nil {
		p.GapOpen = *r.GapOpen
	}
	if r.GapExtend != nil {
		p.GapExtend = *r.GapExtend
	}
	if r.WordSize != 0 {
		p.WordSize = r.WordSize
	}
	if r.Threshold != 0 {
		p.Threshold = r.Threshold
	}
	if r.TopN != 0 {
		p.TopN = r.TopN
	}
	p.LowComplexity = r.LowComplexity
	return p
}

type PropertiesRequest struct {
	Sequence string `json:"sequence" form:"sequence" validate:"required,max=10000"`
}

// SubmissionRequest is the data contribution form
type SubmissionRequest struct {
	Name        string `json:"name" form:"name" validate:"required,max=200"`
	Title       string `json:"title" form:"title" validate:"max=200"`
	Institution string `json:"institution" form:"institution" validate:"max=300"`
	Email       string `json:"email" form:"email" validate:"required,email"`
	Message     string `json:"message" form:"message" validate:"required,max=5000"`
}

func (r SubmissionRequest) Submission() database.Submission {
	return database.Submission{
		Name:        r.Name,
		Title:       r.Title,
		Institution: r.Institution,
		Email:       r.Email,
		Message:     r.Message,
	}
}
