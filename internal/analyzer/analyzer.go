// Package analyzer runs the full pipeline over one message: load,
// decompose, extract, parse, detect and score.
package analyzer

import (
	"fmt"

	"go.uber.org/zap"

	"phishscan/internal/detection"
	"phishscan/internal/email"
	"phishscan/internal/extract"
	"phishscan/internal/parsing"
	"phishscan/internal/reference"
	"phishscan/internal/scoring"
)

// Report is the complete analysis of one message.
type Report struct {
	Extraction extract.Artifacts `json:"extraction"`
	Parsing    parsing.Result    `json:"parsing"`
	Detection  Detection         `json:"detection"`
}

// Detection is the detector output with the score attached.
type Detection struct {
	detection.Result
	Score scoring.Report `json:"score"`
}

type Options struct {
	Lists   reference.Lists
	Rules   *detection.Rules
	Profile *scoring.Profile
	Logger  *zap.Logger
}

// Analyzer holds read-only configuration and is safe for concurrent use.
type Analyzer struct {
	lists   reference.Lists
	battery *detection.Battery
	profile scoring.Profile
	logger  *zap.Logger
}

// New builds an analyzer. Nil rules and profile select the defaults.
func New(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := detection.DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	profile := scoring.Strict()
	if opts.Profile != nil {
		profile = *opts.Profile
	}
	return &Analyzer{
		lists:   opts.Lists,
		battery: detection.New(rules, logger),
		profile: profile,
		logger:  logger,
	}
}

// Profile returns the scoring profile in use.
func (a *Analyzer) Profile() scoring.Profile { return a.profile }

// Analyze accepts the sources email.Load does. Only a load failure is
// returned as an error; malformed content degrades to empty structures and
// a failed scoring step yields a degraded score.
func (a *Analyzer) Analyze(src any) (Report, error) {
	raw, err := email.Load(src)
	if err != nil {
		return Report{}, fmt.Errorf("load message: %w", err)
	}
	return a.AnalyzeBytes(raw), nil
}

// AnalyzeBytes analyzes a message already in memory.
func (a *Analyzer) AnalyzeBytes(raw []byte) Report {
	msg := email.Decompose(raw)
	a.logger.Debug("message decomposed",
		zap.String("step", "decompose"),
		zap.Int("email_size", len(raw)),
		zap.Int("headers", msg.Headers.Len()),
		zap.Int("parts", len(msg.Parts)))

	artifacts := extract.Extract(msg)
	parsed := parsing.Parse(msg)
	a.logger.Debug("message parsed",
		zap.String("step", "parse"),
		zap.Int("links", len(parsed.Body.Links)),
		zap.Int("attachments", len(parsed.Attachments)),
		zap.String("from_domain", parsed.Headers.FromDomain))

	det, err := a.battery.Run(&detection.Message{Parsed: parsed, RawEmails: artifacts.RawEmails}, &a.lists)
	if err != nil {
		a.logger.Warn("detector failed; its findings are missing", zap.String("step", "detect"), zap.Error(err))
	}

	score := a.score(det)
	a.logger.Debug("message scored",
		zap.String("step", "score"),
		zap.Float64("score", score.Score),
		zap.String("verdict", string(score.Verdict)),
		zap.Bool("degraded", score.Degraded))

	return Report{
		Extraction: artifacts,
		Parsing:    parsed,
		Detection:  Detection{Result: det, Score: score},
	}
}

// score never fails: errors and panics fall back to a neutral, degraded
// report.
func (a *Analyzer) score(det detection.Result) (rep scoring.Report) {
	defer func() {
		if r := recover(); r != nil {
			rep = scoring.Fallback(a.profile.Name, fmt.Errorf("scoring panicked: %v", r))
			a.logger.Error("scoring panicked", zap.String("step", "score"), zap.Any("panic", r))
		}
	}()
	rep, err := scoring.Score(det, a.profile)
	if err != nil {
		a.logger.Error("scoring failed", zap.String("step", "score"), zap.Error(err))
		return scoring.Fallback(a.profile.Name, err)
	}
	return rep
}
