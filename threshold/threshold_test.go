package threshold

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRange(t *testing.T) {
	t.Parallel()

	stringToRange := []struct {
		input string
		want  *Range
		err   error
	}{
		{"0", &Range{spec: "0", start: 0, end: 0}, nil},
		{"3", &Range{spec: "3", start: 0, end: 3}, nil},
		{" 3.4", &Range{spec: "3.4", start: 0, end: 3.4}, nil},
		{"", &Range{spec: "", start: 0, end: math.Inf(1)}, nil},
		{"foo", nil, errors.New("")},
		{"3,4", nil, errors.New("")},
		{"~", nil, errors.New("")},
		{"-3.4", nil, ErrStartAboveEnd},

		{"10:", &Range{spec: "10:", start: 10, end: math.Inf(1)}, nil},
		{" -3.4:", &Range{spec: "-3.4:", start: -3.4, end: math.Inf(1)}, nil},
		{":10", &Range{spec: ":10", start: 0, end: 10}, nil},
		{"3,1:", nil, errors.New("")},

		{"~:", &Range{spec: "~:", start: math.Inf(-1), end: math.Inf(1)}, nil},
		{"~:10", &Range{spec: "~:10", start: math.Inf(-1), end: 10}, nil},
		{"~:-3.4 ", &Range{spec: "~:-3.4", start: math.Inf(-1), end: -3.4}, nil},
		{"0:~", nil, errors.New("")},

		{"1.2:3.4", &Range{spec: "1.2:3.4", start: 1.2, end: 3.4}, nil},
		{"-3.4:-1.2", &Range{spec: "-3.4:-1.2", start: -3.4, end: -1.2}, nil},
		{"3:2", nil, ErrStartAboveEnd},
		{"-1.2:-3.4", nil, ErrStartAboveEnd},
		{"1:2:3", nil, errors.New("")},

		{"@1.2:3.4", &Range{spec: "@1.2:3.4", start: 1.2, end: 3.4, inside: true}, nil},
		{"@10:", &Range{spec: "@10:", start: 10, end: math.Inf(1), inside: true}, nil},
		{"@~:10", &Range{spec: "@~:10", start: math.Inf(-1), end: 10, inside: true}, nil},
		{"@3:2", nil, ErrStartAboveEnd},
		{"@", nil, errors.New("")},
	}

	for _, data := range stringToRange {
		r, err := NewRange(data.input)
		switch {
		case data.err == nil:
			assert.NoErrorf(t, err, "range %q parses", data.input)
		case errors.Is(data.err, ErrStartAboveEnd):
			assert.ErrorIsf(t, err, ErrStartAboveEnd, "range %q start above end", data.input)
		default:
			assert.Errorf(t, err, "range %q results in error", data.input)
		}
		assert.Equalf(t, data.want, r, "range %q parsed value", data.input)
	}
}

func TestRange_CheckValue(t *testing.T) {
	t.Parallel()

	rangeBorders := []struct {
		rangeSpec string
		value     float64
		expected  bool
	}{
		{"0", 0, true},
		{"0", 1, false},
		{"0", -1, false},

		{"~:", 0, true},
		{"~:", -12345, true},
		{"~:", 99999, true},

		{"10", -1, false},
		{"10", 0, true},
		{"10", 1, true},
		{"10", 10, true},
		{"10", 11, false},

		{"10:", -1, false},
		{"10:", 9, false},
		{"10:", 10, true},
		{"10:", 11, true},

		{"~:10", 11, false},
		{"~:10", 10, true},
		{"~:10", 9, true},
		{"~:10", -1, true},

		{"10:20", -1, false},
		{"10:20", 9, false},
		{"10:20", 10, true},
		{"10:20", 11, true},
		{"10:20", 19, true},
		{"10:20", 20, true},
		{"10:20", 21, false},

		{"@10:20", -1, true},
		{"@10:20", 9, true},
		{"@10:20", 10, false},
		{"@10:20", 11, false},
		{"@10:20", 19, false},
		{"@10:20", 20, false},
		{"@10:20", 21, true},
	}

	for _, data := range rangeBorders {
		r, err := NewRange(data.rangeSpec)
		assert.NoErrorf(t, err, "no error expected for %q", data.rangeSpec)

		result := r.CheckValue(data.value)
		assert.Equalf(t, data.expected, result, "range %q value %v", data.rangeSpec, data.value)
	}
}

func TestRange_Bounds(t *testing.T) {
	t.Parallel()

	renderings := []struct {
		input  string
		str    string
		bounds string
	}{
		{"0", "0", "0:0"},
		{" 0 ", "0", "0:0"},
		{"3", "3", "0:3"},
		{"~:", "~:", "~:"},
		{"10:", "10:", "10:"},
		{"~:10", "~:10", "~:10"},
		{"10:20", "10:20", "10:20"},
		{"@10:20", "@10:20", "@10:20"},
		{"1.5:2.5", "1.5:2.5", "1.5:2.5"},
		{":10", ":10", "0:10"},
	}

	for _, data := range renderings {
		r, err := NewRange(data.input)
		assert.NoErrorf(t, err, "no error expected for %q", data.input)
		assert.Equalf(t, data.str, r.String(), "String of %q", data.input)
		assert.Equalf(t, data.bounds, r.Bounds(), "Bounds of %q", data.input)
	}
}
