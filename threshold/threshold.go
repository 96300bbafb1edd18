package threshold

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Range implements the threshold range format from the Nagios plugin
// development guidelines:
// https://www.monitoring-plugins.org/doc/guidelines.html#THRESHOLDFORMAT
type Range struct {
	spec   string
	start  float64
	end    float64
	inside bool
}

// ErrStartAboveEnd is returned when the range start is greater than the end.
var ErrStartAboveEnd = errors.New("range start must not be greater than range end")

// NewRange parses a range specification of the form `[@]start:end`. An
// omitted start defaults to 0 and `~` stands for negative infinity; an
// omitted end stands for positive infinity. A spec without `:` is shorthand
// for `0:end`. A leading `@` inverts the check so that values inside the
// range raise the alert.
func NewRange(spec string) (*Range, error) {
	def := strings.TrimSpace(spec)
	r := &Range{spec: def}
	if strings.HasPrefix(def, "@") {
		r.inside = true
		def = def[1:]
		if def == "" {
			return nil, fmt.Errorf("invalid range %q: nothing after @", spec)
		}
	}
	start, end, found := strings.Cut(def, ":")
	if strings.Contains(end, ":") {
		return nil, fmt.Errorf("invalid range %q: more than one colon", spec)
	}
	if !found {
		start, end = "0", start
	}
	switch start {
	case "":
		r.start = 0
	case "~":
		r.start = math.Inf(-1)
	default:
		v, err := strconv.ParseFloat(start, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range start %q in %q", start, spec)
		}
		r.start = v
	}
	if end == "" {
		r.end = math.Inf(1)
	} else {
		v, err := strconv.ParseFloat(end, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range end %q in %q", end, spec)
		}
		r.end = v
	}
	if r.start > r.end {
		return nil, fmt.Errorf("%w: %q", ErrStartAboveEnd, spec)
	}
	return r, nil
}

// CheckValue tests the given value against the range.
// false: value raises the alert
// true: value is ok
func (r *Range) CheckValue(value float64) bool {
	in := value >= r.start && value <= r.end
	if r.inside {
		return !in
	}
	return in
}

// String prints the range specification as it was given.
func (r Range) String() string {
	return r.spec
}

// Bounds prints the canonical `[@]start:end` form of the range; unlike
// String, a shorthand spec such as "0" comes out with both bounds ("0:0").
func (r Range) Bounds() string {
	var sb strings.Builder
	if r.inside {
		sb.WriteString("@")
	}
	if math.IsInf(r.start, -1) {
		sb.WriteString("~")
	} else {
		sb.WriteString(strconv.FormatFloat(r.start, 'f', -1, 64))
	}
	sb.WriteString(":")
	if !math.IsInf(r.end, 1) {
		sb.WriteString(strconv.FormatFloat(r.end, 'f', -1, 64))
	}
	return sb.String()
}
