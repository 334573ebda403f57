// Package discovery scans the shared data directory for input files that
// have not been processed yet.
package discovery

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/stockpipe/data-clean-service/internal/models"
)

// Input and output file naming conventions
const (
	QuotesPrefix     = "stock_quotes_"
	HistoricalPrefix = "stock_historical_"
	ProcessedPrefix  = "processed_"
	Extension        = ".csv"
)

// FindUnprocessed returns the work items in dir whose token does not appear
// in any already-produced output, quote files first then historical files.
// The scan is read-only; an unreadable directory yields an empty result.
func FindUnprocessed(dir string) []models.WorkItem {
	done := processedTokens(dir)

	var items []models.WorkItem
	for _, set := range []struct {
		prefix string
		kind   string
	}{
		{QuotesPrefix, models.KindQuotes},
		{HistoricalPrefix, models.KindHistorical},
	} {
		matches, err := filepath.Glob(filepath.Join(dir, set.prefix+"*"+Extension))
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, path := range matches {
			token := extractToken(filepath.Base(path), set.prefix)
			if token == "" || done[token] {
				continue
			}
			items = append(items, models.WorkItem{Path: path, Kind: set.kind, Token: token})
		}
	}
	return items
}

// processedTokens collects the tokens of every output file already present.
func processedTokens(dir string) map[string]bool {
	done := make(map[string]bool)
	matches, err := filepath.Glob(filepath.Join(dir, ProcessedPrefix+"*"+Extension))
	if err != nil {
		return done
	}
	for _, path := range matches {
		base := filepath.Base(path)
		for _, prefix := range []string{
			ProcessedPrefix + models.KindQuotes + "_",
			ProcessedPrefix + models.KindHistorical + "_",
			ProcessedPrefix,
		} {
			if token := extractToken(base, prefix); token != "" {
				done[token] = true
				break
			}
		}
	}
	return done
}

// extractToken strips the kind prefix and extension from a file basename.
// The token is opaque: it is identity, never parsed as a timestamp.
func extractToken(base, prefix string) string {
	if !strings.HasPrefix(base, prefix) || !strings.HasSuffix(base, Extension) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(base, prefix), Extension)
}
