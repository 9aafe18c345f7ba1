package pods

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/syrm/podboard/dto"
)

var now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) string {
	return now.Add(-d).Format(time.RFC3339)
}

func TestRelativeAgeBoundaries(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, "0s"},
		{59 * time.Second, "59s"},
		{60 * time.Second, "1m"},
		{3599 * time.Second, "59m"},
		{3600 * time.Second, "1h"},
		{86399 * time.Second, "23h"},
		{86400 * time.Second, "1d"},
		{10*24*time.Hour + 23*time.Hour, "10d"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RelativeAge(ago(tc.elapsed), now), "elapsed %s", tc.elapsed)
	}
}

func TestRelativeAgeTruncatesFractions(t *testing.T) {
	age := now.Add(-(59*time.Second + 900*time.Millisecond)).Format(time.RFC3339Nano)

	assert.Equal(t, "59s", RelativeAge(age, now))
}

func TestRelativeAgeLayouts(t *testing.T) {
	assert.Equal(t, "2h", RelativeAge("2026-01-01T10:00:00Z", now))
	assert.Equal(t, "2h", RelativeAge("2026-01-01T10:00:00.123Z", now))
	assert.Equal(t, "2h", RelativeAge("2026-01-01T11:00:00+01:00", now))
	assert.Equal(t, "2h", RelativeAge("2026-01-01T10:00:00", now))
}

func TestRelativeAgeUnparsable(t *testing.T) {
	assert.Equal(t, "-", RelativeAge("", now))
	assert.Equal(t, "-", RelativeAge("3d", now))
}

func TestSaturationClassification(t *testing.T) {
	cases := []struct {
		raw  string
		want Saturation
	}{
		{"100m (80.0%)", Nominal},
		{"100m (80.1%)", Critical},
		{"100m (0%)", Nominal},
		{"100m", Nominal},
		{"", Nominal},
		{"512Mi (95%)", Critical},
		{"80%", Nominal},
		{"1Gi (81.%)", Critical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifySaturation(tc.raw), tc.raw)
	}
}

func TestSaturationPercentFirstToken(t *testing.T) {
	assert.InDelta(t, 12.5, SaturationPercent("12.5% of 99%"), 0.0001)
	assert.InDelta(t, 0, SaturationPercent("N/A"), 0.0001)
}

func TestStatusTone(t *testing.T) {
	assert.Equal(t, ToneOK, StatusTone("Running"))
	assert.Equal(t, ToneAlert, StatusTone("Pending"))
	assert.Equal(t, ToneAlert, StatusTone("Succeeded"))
	assert.Equal(t, ToneAlert, StatusTone("running"))
}

func TestFormatRow(t *testing.T) {
	p := dto.Pod{
		Name:      "api-0",
		Namespace: "default",
		Status:    "CrashLoopBackOff",
		Restarts:  "7",
		Node:      "node-a",
		IP:        "10.1.2.3",
		Age:       dto.Text(ago(3 * time.Hour)),
		Ready:     "0/1",
		CPU:       "900m (90.0%)",
		Memory:    "64Mi (12.5%)",
	}

	row := FormatRow(p, now)

	assert.Len(t, row.Cells, len(Columns))
	assert.Equal(t, "3h", row.Cells[CellAge])
	assert.Equal(t, "900m (90.0%)", row.Cells[CellCPU])
	assert.Equal(t, "api-0", row.Cells[CellName])
	assert.Equal(t, ToneAlert, row.Status)
	assert.Equal(t, Critical, row.CPU)
	assert.Equal(t, Nominal, row.Memory)
	assert.Equal(t, "critical", row.CPU.String())
}
