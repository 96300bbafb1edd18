package perfdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theias/check-soa-serials/threshold"
)

func mustRange(t *testing.T, spec string) *threshold.Range {
	t.Helper()
	r, err := threshold.NewRange(spec)
	require.NoErrorf(t, err, "range %q parses", spec)
	return r
}

func TestPerfData_String(t *testing.T) {
	t.Parallel()

	t.Run("value only", func(t *testing.T) {
		pd := New("zones_not_ok", UOM_NONE, "5")
		assert.Equal(t, "zones_not_ok=5", pd.String())
	})

	t.Run("unknown value", func(t *testing.T) {
		pd := New("zones_not_ok", UOM_NONE, "")
		assert.Equal(t, "zones_not_ok=U", pd.String())
	})

	t.Run("unit suffix", func(t *testing.T) {
		pd := New("rtt", UOM_SECONDS, "0.004")
		assert.Equal(t, "rtt=0.004s", pd.String())
	})

	t.Run("warn and crit ranges", func(t *testing.T) {
		pd := New("zones_not_ok", UOM_NONE, "0")
		pd.SetWarn(mustRange(t, "0"))
		pd.SetCrit(mustRange(t, "0"))
		assert.Equal(t, "zones_not_ok=0;0;0", pd.String())
	})

	t.Run("crit range kept verbatim", func(t *testing.T) {
		pd := New("zones_not_ok", UOM_NONE, "1")
		pd.SetWarn(mustRange(t, "0"))
		pd.SetCrit(mustRange(t, "~:"))
		assert.Equal(t, "zones_not_ok=1;0;~:", pd.String())
	})

	t.Run("warn only", func(t *testing.T) {
		pd := New("load", UOM_NONE, "3")
		pd.SetWarn(mustRange(t, "0:5"))
		assert.Equal(t, "load=3;0:5", pd.String())
	})

	t.Run("empty fields kept before set ones", func(t *testing.T) {
		pd := New("load", UOM_NONE, "3")
		pd.SetCrit(mustRange(t, "10"))
		pd.SetMax("100")
		assert.Equal(t, "load=3;;10;;100", pd.String())
	})

	t.Run("min and max", func(t *testing.T) {
		pd := New("used", UOM_PERCENT, "42")
		pd.SetMin("0")
		pd.SetMax("100")
		assert.Equal(t, "used=42%;;;0;100", pd.String())
	})
}

func TestPerfData_LabelQuoting(t *testing.T) {
	t.Parallel()

	pd := New("zones not ok", UOM_NONE, "1")
	assert.Equal(t, "'zones not ok'=1", pd.String())

	pd = New("it's=weird", UOM_NONE, "1")
	assert.Equal(t, "'it''s=weird'=1", pd.String())
}

func TestPerfData_InvalidValues(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { New("x", UOM_NONE, "nope") })
	assert.Panics(t, func() {
		pd := New("x", UOM_NONE, "1")
		pd.SetMin("lots")
	})
	assert.Panics(t, func() {
		pd := New("x", UOM_NONE, "1")
		pd.SetMax("-")
	})
}
