package crawler

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	relativeTimeRe = regexp.MustCompile(`(\d+)\s*(giờ|phút) trước`)
	gmtOffsetRe    = regexp.MustCompile(`\(GMT([+-]\d+)\)`)
	weekdayPrefix  = regexp.MustCompile(`^.*?,\s*`)
)

const absoluteTimeLayout = "2/1/2006, 15:04"

// ParseSiteTime resolves the publish-time strings Vietnamese news sites
// render: relative "N giờ/phút trước" text, or an absolute
// "dd/mm/yyyy, HH:MM" with an optional weekday prefix and "(GMT±H)" suffix.
// Unparseable input falls back to now; a listing is never dropped for a bad
// clock string.
func ParseSiteTime(raw string, now time.Time) int64 {
	if match := relativeTimeRe.FindStringSubmatch(raw); match != nil {
		amount, _ := strconv.Atoi(match[1])
		if match[2] == "giờ" {
			return now.Add(-time.Duration(amount) * time.Hour).Unix()
		}
		return now.Add(-time.Duration(amount) * time.Minute).Unix()
	}

	cleaned := raw
	offset := 0
	if match := gmtOffsetRe.FindStringSubmatch(cleaned); match != nil {
		offset, _ = strconv.Atoi(match[1])
		cleaned = gmtOffsetRe.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	zone := time.FixedZone("GMT", offset*3600)
	if parsed, err := time.ParseInLocation(absoluteTimeLayout, cleaned, zone); err == nil {
		return parsed.Unix()
	}

	// "Thứ năm, 27/3/2025, 10:15" -> "27/3/2025, 10:15"
	stripped := strings.TrimSpace(weekdayPrefix.ReplaceAllString(cleaned, ""))
	if parsed, err := time.ParseInLocation(absoluteTimeLayout, stripped, zone); err == nil {
		return parsed.Unix()
	}

	return now.Unix()
}
