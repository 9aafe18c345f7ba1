package pods

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/syrm/podboard/dto"
)

// Saturation classifies a resource usage percentage.
type Saturation int

const (
	Nominal Saturation = iota
	Critical
)

// CriticalThreshold is the usage percentage above which saturation is critical.
const CriticalThreshold = 80.0

func (s Saturation) String() string {
	if s == Critical {
		return "critical"
	}
	return "nominal"
}

// Tone is the color family of a status tag.
type Tone int

const (
	ToneOK Tone = iota
	ToneAlert
)

var percentPattern = regexp.MustCompile(`(\d+\.?\d*)%`)

var ageLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// RelativeAge renders the time elapsed between age and now with the largest
// unit that fits, truncated: 59s, 1m, 23h, 1d. An unparsable timestamp gives "-".
func RelativeAge(age string, now time.Time) string {
	created, ok := parseAge(age)
	if !ok {
		return "-"
	}

	seconds := int64(math.Floor(now.Sub(created).Seconds()))

	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh", seconds/3600)
	default:
		return fmt.Sprintf("%dd", seconds/86400)
	}
}

func parseAge(age string) (time.Time, bool) {
	for _, layout := range ageLayouts {
		// zone-less layouts are read as UTC
		if t, err := time.Parse(layout, age); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SaturationPercent extracts the first percentage token of a free-text usage
// field such as "120m (60.0%)". Missing or unreadable tokens count as 0.
func SaturationPercent(raw string) float64 {
	m := percentPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

func ClassifySaturation(raw string) Saturation {
	if SaturationPercent(raw) > CriticalThreshold {
		return Critical
	}
	return Nominal
}

func StatusTone(status string) Tone {
	if status == "Running" {
		return ToneOK
	}
	return ToneAlert
}

// Columns are the table headers, in Row.Cells order.
var Columns = []string{"Name", "Namespace", "Status", "Restarts", "Node", "IP", "Age", "Ready", "CPU Usage", "Memory Usage"}

// Cell indexes into Row.Cells.
const (
	CellName = iota
	CellNamespace
	CellStatus
	CellRestarts
	CellNode
	CellIP
	CellAge
	CellReady
	CellCPU
	CellMemory
)

// Row is a pod ready for display.
type Row struct {
	Cells  []string
	Status Tone
	CPU    Saturation
	Memory Saturation
}

func FormatRow(p dto.Pod, now time.Time) Row {
	return Row{
		Cells: []string{
			string(p.Name),
			string(p.Namespace),
			string(p.Status),
			string(p.Restarts),
			string(p.Node),
			string(p.IP),
			RelativeAge(string(p.Age), now),
			string(p.Ready),
			string(p.CPU),
			string(p.Memory),
		},
		Status: StatusTone(string(p.Status)),
		CPU:    ClassifySaturation(string(p.CPU)),
		Memory: ClassifySaturation(string(p.Memory)),
	}
}

// FormatRows formats every pod against the same instant.
func FormatRows(pods []dto.Pod, now time.Time) []Row {
	rows := make([]Row, 0, len(pods))
	for _, p := range pods {
		rows = append(rows, FormatRow(p, now))
	}
	return rows
}
