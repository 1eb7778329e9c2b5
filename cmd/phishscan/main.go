package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"phishscan/internal/analyzer"
	"phishscan/internal/config"
	"phishscan/internal/email"
	"phishscan/internal/logging"
	"phishscan/internal/recommendation"
	"phishscan/internal/reference"
	"phishscan/internal/scoring"
)

const previewRunes = 200

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Printf("ignoring .env: %v", err)
	}
	cfg := config.Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileCfg, err := config.LoadFromFile(path)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = fileCfg
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	profile, err := scoring.ProfileByName(cfg.ScoringProfile)
	if err != nil {
		logger.Fatal("invalid scoring profile", zap.String("profile", cfg.ScoringProfile), zap.Error(err))
	}

	lists, _ := reference.Load(cfg.ReferencePaths(), logger)
	lists = lists.WithTrustedDomains(cfg.TrustedDomains...)

	a := analyzer.New(analyzer.Options{Lists: lists, Profile: &profile, Logger: logger})

	logger.Info("loading emails", zap.String("dir", cfg.SampleDir), zap.String("profile", profile.Name))
	emails, err := email.LoadEmailsFromDir(cfg.SampleDir)
	if err != nil {
		logger.Fatal("failed to load emails", zap.Error(err))
	}
	if len(emails) == 0 {
		logger.Info("no .eml files found", zap.String("dir", cfg.SampleDir))
		return
	}

	for _, em := range emails {
		summarize(os.Stdout, &em, cfg, a, logger)
	}
}

func summarize(w io.Writer, em *email.Email, cfg config.Config, a *analyzer.Analyzer, logger *zap.Logger) {
	rep := a.AnalyzeBytes(em.Raw)
	scorecard := recommendation.Build(rep.Parsing, rep.Detection.Result, rep.Detection.Score)

	if cfg.Output == "json" {
		out := struct {
			ID     string          `json:"id"`
			Status scoring.Status  `json:"status"`
			Report analyzer.Report `json:"report"`
		}{em.ID, scorecard.Status, rep}
		data, err := json.Marshal(out)
		if err != nil {
			logger.Error("failed to encode report", zap.String("email", em.ID), zap.Error(err))
			return
		}
		fmt.Fprintln(w, string(data))
	} else {
		printScorecard(w, em, scorecard, rep)
	}

	if !cfg.MoveFiles {
		return
	}
	targetDir := cfg.CleanDir
	switch scorecard.Status {
	case scoring.StatusMalicious:
		targetDir = cfg.SpamDir
	case scoring.StatusSuspicious:
		targetDir = cfg.QuarantineDir
	}
	if err := moveEmail(em.Path, targetDir); err != nil {
		logger.Error("failed to move email", zap.String("email", em.ID), zap.Error(err))
		return
	}
	logger.Info("moved email", zap.String("email", em.ID), zap.String("dir", targetDir))
}

func printScorecard(w io.Writer, em *email.Email, scorecard recommendation.Scorecard, rep analyzer.Report) {
	fmt.Fprintln(w, "==============================")
	fmt.Fprintf(w, "Email: %s\n", em.ID)
	fmt.Fprintf(w, "Subject: %s\n", rep.Parsing.Auth.Subject)
	if preview := email.BodyPreview(email.Decompose(em.Raw), previewRunes); preview != "" {
		fmt.Fprintf(w, "Preview: %s\n", preview)
	}

	fmt.Fprintln(w, "\n----- EMAIL SCORECARD -----")
	fmt.Fprintf(w, "FINAL DECISION: %s (%s, Score: %.2f/100)\n", scorecard.Status, scorecard.Verdict, scorecard.DecisionScore)
	fmt.Fprintln(w, "---------------------------")
	fmt.Fprintln(w, "Detailed Breakdown:")
	fmt.Fprintf(w, " [ ] From:    %s\n", orNone(scorecard.Details.FromDomain))
	fmt.Fprintf(w, " [ ] SPF:     %s\n", scorecard.Details.SPF)
	fmt.Fprintf(w, " [ ] DKIM:    %s\n", scorecard.Details.DKIM)
	fmt.Fprintf(w, " [ ] DMARC:   %s\n", scorecard.Details.DMARC)
	fmt.Fprintf(w, " [ ] Profile: %s\n", scorecard.Details.Profile)
	for _, key := range rep.Detection.Score.Detail.Keys() {
		e, _ := rep.Detection.Score.Detail.Get(key)
		if e.Count > 0 {
			fmt.Fprintf(w, " [x] %-30s x%d (+%d)\n", key, e.Count, e.Subtotal)
		}
	}
	for _, f := range rep.Detection.ExtraFlags.Obfuscation {
		fmt.Fprintf(w, " [!] SECURITY: %s in %s part %d\n", f.Reason, f.Part, f.Index)
	}
	if scorecard.Details.Degraded {
		fmt.Fprintln(w, " [!] SCORING: degraded")
	}

	fmt.Fprintln(w, "Reasons:")
	for _, r := range scorecard.Reasons {
		fmt.Fprintf(w, " - %s\n", r)
	}
}

func orNone(s string) string {
	if s == "" {
		return "NONE"
	}
	return s
}

func moveEmail(srcPath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	destPath := filepath.Join(destDir, filepath.Base(srcPath))
	return os.Rename(srcPath, destPath)
}
