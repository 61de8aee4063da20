package enrich

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/casefile-io/casefile/internal/htmltext"
	"github.com/casefile-io/casefile/pkg/casefile/store"
)

// inspectionLines is how many leading lines the content-sniffing rules
// see. The flight-log rule is the one exception and scans the whole
// content, matching the original classifier's behavior.
const inspectionLines = 30

var (
	fromRe    = regexp.MustCompile(`(?im)^\s*from:\s*(.+)$`)
	toRe      = regexp.MustCompile(`(?im)^\s*to:\s*(.+)$`)
	subjectRe = regexp.MustCompile(`(?im)^\s*subject:\s*(.+)$`)
	dateRe    = regexp.MustCompile(`(?im)^\s*(?:date|sent):\s*(.+)$`)

	legalRe  = regexp.MustCompile(`(?i)case no|deposition|affidavit`)
	caseNoRe = regexp.MustCompile(`(?i)case no\.?\s*:?\s*([A-Za-z0-9][\w-]*)`)
	courtRe  = regexp.MustCompile(`(?i)((?:united states |u\.s\. )?(?:district|circuit|supreme|superior|bankruptcy) court(?:\s+(?:of|for)\s+[^,.\n]+)?)`)

	financialRe = regexp.MustCompile(`(?i)invoice|receipt|statement|transaction|payment`)
	articleRe   = regexp.MustCompile(`(?i)https?://|www\.|published:`)
)

// legalSubtypes is checked in this fixed order, independent of which
// keyword triggered the Legal rule.
var legalSubtypes = []string{"deposition", "affidavit", "motion", "complaint"}

// dateLayouts are tried in order when parsing an extracted date string.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"1/2/2006",
	"2 January 2006",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006",
	time.RFC3339,
}

// DocumentClassifier assigns a type, subtype and extracted metadata to
// every source document via an ordered first-match-wins cascade of
// content-sniffing rules.
type DocumentClassifier struct {
	store store.Store
	log   *zap.Logger
}

// NewDocumentClassifier builds the classifier stage.
func NewDocumentClassifier(st store.Store, log *zap.Logger) *DocumentClassifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentClassifier{store: st, log: log}
}

// Name implements Stage.
func (c *DocumentClassifier) Name() string { return "document-classify" }

// Run classifies every document and writes one enrichment row each,
// INSERT OR REPLACE keyed on document_id: a re-run fully overwrites
// prior enrichment.
func (c *DocumentClassifier) Run(ctx context.Context) error {
	docs, err := c.store.Documents(ctx)
	if err != nil {
		return fmt.Errorf("read documents: %w", err)
	}

	var classified int
	for i, d := range docs {
		e := c.Classify(d)
		if err := c.store.UpsertEnrichment(ctx, e); err != nil {
			return fmt.Errorf("upsert enrichment for document %d: %w", d.ID, err)
		}
		if e.DocumentType != store.DocGeneric {
			classified++
		}

		if (i+1)%100 == 0 {
			c.log.Info("classifying documents",
				zap.Int("processed", i+1),
				zap.Int("total", len(docs)))
		}
	}

	c.log.Info("document classification complete",
		zap.Int("documents", len(docs)),
		zap.Int("classified", classified))
	return nil
}

// Classify runs the sniffing cascade over one document and returns its
// enrichment record.
func (c *DocumentClassifier) Classify(d store.Document) store.Enrichment {
	text := d.Content
	if htmltext.LooksLikeHTML(text) {
		text = htmltext.Strip(text)
	}
	window := leadingLines(text, inspectionLines)

	e := store.Enrichment{
		DocumentID:   d.ID,
		DocumentType: store.DocGeneric,
		// summary is always the head of the raw content, even for HTML
		Summary: truncate(d.Content, 500),
	}

	switch {
	case fromRe.MatchString(window) && toRe.MatchString(window):
		c.classifyEmail(&e, d, window)
	case legalRe.MatchString(window):
		c.classifyLegal(&e, window)
	case isFlightLog(text):
		e.DocumentType = store.DocFlightLog
	case financialRe.MatchString(window):
		classifyFinancial(&e, window)
	case articleRe.MatchString(window):
		e.DocumentType = store.DocArticle
	}

	if e.Title == "" {
		e.Title = fallbackTitle(text, d.FileName)
	}
	e.Title = e.Title + " (" + truncate(d.FileName, 40) + ")"

	return e
}

func (c *DocumentClassifier) classifyEmail(e *store.Enrichment, d store.Document, window string) {
	e.DocumentType = store.DocEmail

	if m := fromRe.FindStringSubmatch(window); m != nil {
		e.Sender = strings.TrimSpace(m[1])
	}
	if m := toRe.FindStringSubmatch(window); m != nil {
		e.Recipients = []string{strings.TrimSpace(m[1])}
	}
	if m := subjectRe.FindStringSubmatch(window); m != nil {
		e.Subject = strings.TrimSpace(m[1])
		e.Title = truncate(e.Subject, 80)
	}
	if m := dateRe.FindStringSubmatch(window); m != nil {
		raw := strings.TrimSpace(m[1])
		if date, ok := parseDate(raw); ok {
			e.ExtractedDate = date
		} else {
			// Degrade to a null date rather than failing the document,
			// but leave a trace so systematic parse failures are visible.
			c.log.Debug("unparseable email date",
				zap.Int64("document_id", d.ID),
				zap.String("raw", raw))
		}
	}
}

func (c *DocumentClassifier) classifyLegal(e *store.Enrichment, window string) {
	e.DocumentType = store.DocLegal

	lower := strings.ToLower(window)
	for _, sub := range legalSubtypes {
		if strings.Contains(lower, sub) {
			e.Subtype = strings.ToUpper(sub[:1]) + sub[1:]
			break
		}
	}

	for _, line := range strings.Split(window, "\n") {
		if e.CaseNumber == "" {
			if m := caseNoRe.FindStringSubmatch(line); m != nil {
				e.CaseNumber = m[1]
			}
		}
		if e.Court == "" {
			if m := courtRe.FindStringSubmatch(line); m != nil {
				e.Court = strings.TrimSpace(m[1])
			}
		}
	}
}

func classifyFinancial(e *store.Enrichment, window string) {
	e.DocumentType = store.DocFinancial

	lower := strings.ToLower(window)
	if strings.Contains(lower, "invoice") {
		e.Subtype = "Invoice"
	} else if strings.Contains(lower, "statement") {
		e.Subtype = "Statement"
	}
}

// isFlightLog scans the entire content, not just the inspection window.
// Any document mentioning "passenger" anywhere classifies as a flight
// log; the scope mismatch with the other rules is inherited behavior,
// kept on purpose.
func isFlightLog(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "n908je") ||
		strings.Contains(lower, "flight log") ||
		strings.Contains(lower, "passenger")
}

// fallbackTitle picks the first content line longer than 10 characters,
// or the filename with its extension stripped.
func fallbackTitle(text, fileName string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 10 {
			return truncate(line, 100)
		}
	}
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// parseDate tries each known layout and normalizes to YYYY-MM-DD.
func parseDate(raw string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

func leadingLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
