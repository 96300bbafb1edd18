package perfdata

import (
	"regexp"
	"strings"

	"github.com/theias/check-soa-serials/threshold"
)

type UnitOfMeasurement int

const (
	UOM_NONE UnitOfMeasurement = iota
	UOM_SECONDS
	UOM_PERCENT
	UOM_BYTES
	UOM_KILOBYTES
	UOM_MEGABYTES
	UOM_GIGABYTES
	UOM_TERABYTES
	UOM_COUNTER
)

func (u UnitOfMeasurement) String() string {
	return [...]string{"", "s", "%", "B", "KB", "MB", "GB", "TB", "c"}[u]
}

type PerfDataBits int

const (
	PDAT_WARN PerfDataBits = 1 << iota
	PDAT_CRIT
	PDAT_MIN
	PDAT_MAX
)

var valueCheck = regexp.MustCompile(`^-?(0(\.\d*)?|[1-9]\d*(\.\d*)?|\.\d+)$`)

type PerfData struct {
	Label      string
	units      UnitOfMeasurement
	bits       PerfDataBits
	value      string
	warn, crit threshold.Range
	min, max   string
}

func New(label string, units UnitOfMeasurement, value string) PerfData {
	if value != "" && !valueCheck.MatchString(value) {
		panic("invalid value")
	}
	r := PerfData{}
	r.Label = label
	r.units = units
	if value == "" {
		r.value = "U"
	} else {
		r.value = value
	}
	return r
}

func (d *PerfData) SetWarn(r *threshold.Range) {
	d.warn = *r
	d.bits = d.bits | PDAT_WARN
}

func (d *PerfData) SetCrit(r *threshold.Range) {
	d.crit = *r
	d.bits = d.bits | PDAT_CRIT
}

func (d *PerfData) SetMin(min string) {
	if !valueCheck.MatchString(min) {
		panic("invalid value")
	}
	d.min = min
	d.bits = d.bits | PDAT_MIN
}

func (d *PerfData) SetMax(max string) {
	if !valueCheck.MatchString(max) {
		panic("invalid value")
	}
	d.max = max
	d.bits = d.bits | PDAT_MAX
}

func (d PerfData) String() string {
	var sb strings.Builder
	needsQuotes := strings.ContainsAny(d.Label, " '=\"")
	if needsQuotes {
		sb.WriteString("'")
	}
	sb.WriteString(strings.ReplaceAll(d.Label, "'", "''"))
	if needsQuotes {
		sb.WriteString("'")
	}
	sb.WriteString("=")
	sb.WriteString(d.value)
	sb.WriteString(d.units.String())
	fields := make([]string, 4)
	if d.bits&PDAT_WARN != 0 {
		fields[0] = d.warn.String()
	}
	if d.bits&PDAT_CRIT != 0 {
		fields[1] = d.crit.String()
	}
	if d.bits&PDAT_MIN != 0 {
		fields[2] = d.min
	}
	if d.bits&PDAT_MAX != 0 {
		fields[3] = d.max
	}
	n := len(fields)
	for n > 0 && fields[n-1] == "" {
		n--
	}
	for _, field := range fields[:n] {
		sb.WriteString(";")
		sb.WriteString(field)
	}
	return sb.String()
}
