package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/syrm/podboard/dto"
)

type fakeClusterSource struct {
	stats    dto.Stats
	nodes    []dto.Node
	statsErr error
	nodesErr error
}

func (f fakeClusterSource) FetchStats(context.Context) (dto.Stats, error) {
	return f.stats, f.statsErr
}

func (f fakeClusterSource) FetchNodes(context.Context) ([]dto.Node, error) {
	return f.nodes, f.nodesErr
}

func makeStats(n int) dto.Stats {
	out := make(dto.Stats, n)
	for i := range out {
		out[i] = dto.StatEntry{Name: fmt.Sprintf("stat%d", i), Value: dto.Text(fmt.Sprintf("%d", i))}
	}
	return out
}

func TestOSDistribution(t *testing.T) {
	nodes := []dto.Node{
		{Name: "a", OSImage: "Windows Server 2022 Datacenter"},
		{Name: "b", OSImage: "Ubuntu 22.04.4 LTS"},
		{Name: "c", OSImage: "WINDOWS"},
		{Name: "d", OSImage: ""},
	}

	windows, linux := OSDistribution(nodes)
	assert.Equal(t, 2, windows)
	assert.Equal(t, 2, linux)

	windows, linux = OSDistribution(nil)
	assert.Zero(t, windows)
	assert.Zero(t, linux)
}

func TestVisibleStats(t *testing.T) {
	stats := makeStats(13)

	if diff := cmp.Diff(stats[:8], VisibleStats(stats, false)); diff != "" {
		t.Errorf("VisibleStats() mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, VisibleStats(stats, true), 13)
	assert.Len(t, VisibleStats(makeStats(3), false), 3)
}

func TestDashboardRender(t *testing.T) {
	source := fakeClusterSource{
		stats: dto.Stats{{Name: "clusters", Value: "1"}, {Name: "pods", Value: "42"}},
		nodes: []dto.Node{{Name: "n1", OSImage: "Windows"}, {Name: "n2", OSImage: "Debian"}},
	}

	d := NewDashboard(source, false, testLogger())
	d.Load(context.Background())
	d.Render()

	assert.Equal(t, 2, d.tableStats.GetRowCount())
	assert.Contains(t, d.tableStats.GetCell(0, 0).Text, "CLUSTERS")
	assert.Equal(t, "42", d.tableStats.GetCell(1, 1).Text)

	assert.Equal(t, "1", d.tableNodes.GetCell(0, 1).Text)
	assert.Equal(t, "1", d.tableNodes.GetCell(1, 1).Text)
}

func TestDashboardToggleAllStats(t *testing.T) {
	d := NewDashboard(fakeClusterSource{stats: makeStats(13)}, false, testLogger())
	d.Load(context.Background())

	d.Render()
	assert.Equal(t, 8, d.tableStats.GetRowCount())

	d.ToggleAllStats()
	d.Render()
	assert.Equal(t, 13, d.tableStats.GetRowCount())
}

func TestDashboardWidgetFailuresAreIndependent(t *testing.T) {
	source := fakeClusterSource{
		statsErr: errors.New("boom"),
		nodes:    []dto.Node{{Name: "n1", OSImage: "Debian"}},
	}

	d := NewDashboard(source, false, testLogger())
	d.Load(context.Background())
	d.Render()

	assert.Equal(t, "unavailable", d.tableStats.GetCell(0, 0).Text)
	assert.Equal(t, "1", d.tableNodes.GetCell(1, 1).Text)

	d = NewDashboard(fakeClusterSource{nodesErr: errors.New("boom"), stats: makeStats(1)}, false, testLogger())
	d.Load(context.Background())
	d.Render()

	assert.Equal(t, "unavailable", d.tableNodes.GetCell(0, 0).Text)
	assert.Contains(t, d.tableStats.GetCell(0, 0).Text, "STAT0")
}
