package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatLRCTimestamp renders seconds as mm:ss.xx. Minutes are not wrapped into
// hours and hundredths are truncated.
func FormatLRCTimestamp(seconds float64) string {
	seconds = clampSeconds(seconds)
	minutes := int(seconds / 60)
	secs := int(math.Mod(seconds, 60))
	hundredths := int(math.Mod(seconds, 1) * 100)
	return fmt.Sprintf("%02d:%02d.%02d", minutes, secs, hundredths)
}

// FormatSRTTimestamp renders seconds as HH:MM:SS,mmm. Hours are not wrapped
// and milliseconds are truncated.
func FormatSRTTimestamp(seconds float64) string {
	seconds = clampSeconds(seconds)
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := int(math.Mod(seconds, 60))
	millis := int(math.Mod(seconds, 1) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

func clampSeconds(seconds float64) float64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0
	}
	return seconds
}

// ParseSRTTimestamp parses HH:MM:SS,mmm (a period separator is also accepted).
func ParseSRTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if minutes > 59 || seconds > 59 || millis > 999 || hours < 0 || minutes < 0 || seconds < 0 || millis < 0 {
		return 0, fmt.Errorf("timestamp %q out of range", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// ParseLRCTimestamp parses mm:ss.xx. A three-digit fraction is read as
// milliseconds.
func ParseLRCTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	minutePart, rest, ok := strings.Cut(value, ":")
	if !ok {
		return 0, fmt.Errorf("invalid lrc timestamp %q", value)
	}
	secondPart, fraction, ok := strings.Cut(rest, ".")
	if !ok {
		fraction = ""
	}
	minutes, errM := strconv.Atoi(minutePart)
	secs, errS := strconv.Atoi(secondPart)
	if errM != nil || errS != nil || minutes < 0 || secs < 0 || secs > 59 {
		return 0, fmt.Errorf("invalid lrc timestamp %q", value)
	}
	total := float64(minutes*60 + secs)
	switch len(fraction) {
	case 0:
	case 2, 3:
		frac, err := strconv.Atoi(fraction)
		if err != nil || frac < 0 {
			return 0, fmt.Errorf("invalid lrc timestamp %q", value)
		}
		if len(fraction) == 2 {
			total += float64(frac) / 100
		} else {
			total += float64(frac) / 1000
		}
	default:
		return 0, fmt.Errorf("invalid lrc timestamp %q", value)
	}
	return total, nil
}
