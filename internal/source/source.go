package source

import (
	"context"
	"fmt"
	"os"

	appLog "prodcal/internal/log"
	"prodcal/internal/schedule"
)

// Origin says where a rule list came from.
type Origin string

const (
	OriginFile     Origin = "file"
	OriginURL      Origin = "url"
	OriginCache    Origin = "cache"
	OriginDefaults Origin = "defaults"
)

// Spec selects the rule source. Path wins over URL; with neither set the
// built-in default rules are used.
type Spec struct {
	Path string
	URL  string
}

// Rules is a loaded rule list.
type Rules struct {
	Text   string
	Origin Origin
}

// Load resolves spec to rule text.
func (l *Loader) Load(ctx context.Context, spec Spec) (Rules, error) {
	switch {
	case spec.Path != "":
		data, err := os.ReadFile(spec.Path)
		if err != nil {
			return Rules{}, fmt.Errorf("read rules file: %w", err)
		}
		appLog.Debug("rules loaded from file", "path", spec.Path, "bytes", len(data))
		return Rules{Text: string(data), Origin: OriginFile}, nil

	case spec.URL != "":
		res, err := l.Fetch(ctx, spec.URL)
		if err != nil {
			return Rules{}, err
		}
		origin := OriginURL
		if res.FromCache {
			origin = OriginCache
		}
		return Rules{Text: string(res.Body), Origin: origin}, nil

	default:
		return Rules{Text: schedule.DefaultRulesText, Origin: OriginDefaults}, nil
	}
}
