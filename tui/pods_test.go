package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syrm/podboard/dto"
	"github.com/syrm/podboard/pods"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type fakePodSource struct {
	pods  []dto.Pod
	err   error
	calls int
}

func (f *fakePodSource) FetchPods(context.Context) ([]dto.Pod, error) {
	f.calls++
	return f.pods, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func makePods(namespace string, n int) []dto.Pod {
	out := make([]dto.Pod, n)
	for i := range out {
		out[i] = dto.Pod{
			Name:      dto.Text(fmt.Sprintf("%s-pod-%02d", namespace, i+1)),
			Namespace: dto.Text(namespace),
			Status:    "Running",
			Restarts:  "0",
			Ready:     "1/1",
			Age:       dto.Text(fixedNow.Add(-2 * time.Hour).Format(time.RFC3339)),
			CPU:       "12m (6%)",
			Memory:    "64Mi (90%)",
		}
	}
	return out
}

func newTestModel(source PodSource) *PodsModel {
	m := NewPodsModel(context.Background(), source, NewTheme(false), testLogger())
	m.now = func() time.Time { return fixedNow }
	return m
}

// loaded runs the initial fetch synchronously.
func loaded(t *testing.T, source *fakePodSource) *PodsModel {
	t.Helper()

	m := newTestModel(source)
	require.NotNil(t, m.Init())
	m.Update(m.load()())

	return m
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestInitFetchesOnce(t *testing.T) {
	source := &fakePodSource{pods: makePods("default", 2)}
	m := newTestModel(source)

	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	msg, ok := m.load()().(podsLoadedMsg)
	require.True(t, ok)
	assert.Len(t, msg.pods, 2)
	assert.Equal(t, 1, source.calls)
}

func TestFetchWhileLoadingIsIgnored(t *testing.T) {
	m := newTestModel(&fakePodSource{})
	require.NotNil(t, m.Init())

	_, cmd := m.Update(keyRune('r'))
	assert.Nil(t, cmd)
	assert.True(t, m.loading)
}

func TestRefreshAfterLoad(t *testing.T) {
	m := loaded(t, &fakePodSource{pods: makePods("default", 2)})
	assert.False(t, m.loading)

	_, cmd := m.Update(keyRune('r'))
	assert.NotNil(t, cmd)
	assert.True(t, m.loading)
}

func TestNamespaceSelection(t *testing.T) {
	list := append(makePods("default", 7), makePods("kube-system", 3)...)
	m := loaded(t, &fakePodSource{pods: list})

	assert.Equal(t, []string{pods.AllNamespaces, "default", "kube-system"}, m.namespaces)
	assert.Equal(t, pods.AllNamespaces, m.selector)
	assert.Equal(t, 2, m.pageCount())

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "kube-system", m.selector)
	assert.Equal(t, 1, m.pageCount())

	view := m.View()
	assert.Contains(t, view, "kube-system-pod-03")
	assert.NotContains(t, view, "default-pod-01")
	assert.Contains(t, view, "page 1 of 1")

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "default", m.selector)
}

func TestNamespaceCycleWraps(t *testing.T) {
	m := loaded(t, &fakePodSource{pods: makePods("default", 1)})

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "default", m.selector)

	m.Update(keyRune('n'))
	assert.Equal(t, pods.AllNamespaces, m.selector)
}

func TestPagingIsClamped(t *testing.T) {
	m := loaded(t, &fakePodSource{pods: makePods("default", 20)})
	assert.Equal(t, 3, m.pageCount())

	for i := 0; i < 5; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyRight})
	}
	assert.Equal(t, 3, m.pageIndex)

	view := m.View()
	assert.Contains(t, view, "default-pod-19")
	assert.Contains(t, view, "default-pod-20")
	assert.NotContains(t, view, "default-pod-18")
	assert.Contains(t, view, "page 3 of 3")

	for i := 0; i < 5; i++ {
		m.Update(keyRune('h'))
	}
	assert.Equal(t, 1, m.pageIndex)
}

func TestSelectorChangeResetsPage(t *testing.T) {
	list := append(makePods("default", 20), makePods("kube-system", 10)...)
	m := loaded(t, &fakePodSource{pods: list})

	m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	require.Equal(t, 3, m.pageIndex)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "default", m.selector)
	assert.Equal(t, 1, m.pageIndex)
}

func TestFetchFailureShowsMessageInsteadOfTable(t *testing.T) {
	m := loaded(t, &fakePodSource{err: errors.New("connection refused")})

	assert.False(t, m.loading)
	assert.Equal(t, fetchFailedMessage, m.errMessage)
	assert.Empty(t, m.allPods)

	view := m.View()
	assert.Contains(t, view, fetchFailedMessage)
	assert.NotContains(t, view, "Memory Usage")
	assert.NotContains(t, view, "connection refused")
}

func TestFetchFailureKeepsPreviousPods(t *testing.T) {
	source := &fakePodSource{pods: makePods("default", 4)}
	m := loaded(t, source)

	source.err = errors.New("boom")
	m.Update(keyRune('r'))
	m.Update(m.load()())

	assert.Len(t, m.allPods, 4)
	assert.Equal(t, fetchFailedMessage, m.errMessage)
	assert.NotContains(t, m.View(), "default-pod-01")

	source.err = nil
	m.Update(keyRune('r'))
	m.Update(m.load()())
	assert.Empty(t, m.errMessage)
	assert.Contains(t, m.View(), "default-pod-01")
}

func TestVanishedSelectorFallsBackToAll(t *testing.T) {
	source := &fakePodSource{pods: append(makePods("default", 2), makePods("batch", 12)...)}
	m := loaded(t, source)

	m.SelectNamespace("batch")
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, 2, m.pageIndex)

	source.pods = makePods("default", 2)
	m.Update(keyRune('r'))
	m.Update(m.load()())

	assert.Equal(t, pods.AllNamespaces, m.selector)
	assert.Equal(t, 1, m.pageIndex)
}

func TestShrinkingListClampsPage(t *testing.T) {
	source := &fakePodSource{pods: makePods("default", 20)}
	m := loaded(t, source)

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, 3, m.pageIndex)

	source.pods = makePods("default", 10)
	m.Update(keyRune('r'))
	m.Update(m.load()())

	assert.Equal(t, 2, m.pageIndex)
}

func TestEmptyListStillShowsFirstPage(t *testing.T) {
	m := loaded(t, &fakePodSource{pods: []dto.Pod{}})

	view := m.View()
	assert.Contains(t, view, "Memory Usage")
	assert.Contains(t, view, "page 1 of 1")
}

func TestQuit(t *testing.T) {
	m := newTestModel(&fakePodSource{})

	_, cmd := m.Update(keyRune('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
