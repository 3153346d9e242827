package tui

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fentz26/tasklist/internal/models"
	"github.com/fentz26/tasklist/internal/seed"
	"github.com/fentz26/tasklist/internal/store"
	"github.com/fentz26/tasklist/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestApp(t *testing.T, loader *seed.Loader) (*App, *tasks.Store) {
	t.Helper()
	clock := time.Date(2030, 6, 15, 9, 0, 0, 0, time.Local)
	st := tasks.New(store.NewFileSlot(filepath.Join(t.TempDir(), "tasks.json")),
		tasks.WithClock(func() time.Time {
			clock = clock.Add(time.Millisecond)
			return clock
		}))
	a := New(st, loader)
	t.Cleanup(a.view.Close)
	return a, st
}

func send(a *App, msgs ...tea.Msg) {
	for _, m := range msgs {
		a.Update(m)
	}
}

func TestAddFlow(t *testing.T) {
	a, st := newTestApp(t, nil)

	send(a, keys("a"), keys("Buy milk"), enter)
	assert.Equal(t, modeAddDate, a.mode)

	send(a, keys("31/01/2099"), enter)
	require.Len(t, st.Tasks(), 1)
	task := st.Tasks()[0]
	assert.Equal(t, "Buy milk", task.Text)
	assert.Equal(t, "2099-01-31", task.Date)
	assert.False(t, task.Completed)

	assert.Equal(t, modeList, a.mode)
	assert.False(t, a.isErr)
	assert.Contains(t, a.View(), "31/01/99")
}

func TestAdd_PastDateKeepsText(t *testing.T) {
	a, st := newTestApp(t, nil)

	send(a, keys("a"), keys("Pay rent"), enter, keys("01/01/2000"), enter)

	assert.Empty(t, st.Tasks())
	assert.Equal(t, modeAddDate, a.mode)
	assert.Equal(t, "", a.input.Value(), "date input is cleared")
	assert.Equal(t, "Pay rent", a.pendingText, "text is kept")
	assert.True(t, a.isErr)
	assert.Contains(t, a.message, "past")

	send(a, keys("today"), enter)
	require.Len(t, st.Tasks(), 1)
	assert.Equal(t, "2030-06-15", st.Tasks()[0].Date)
}

func TestAdd_EmptyTextAndBadDate(t *testing.T) {
	a, st := newTestApp(t, nil)

	send(a, keys("a"), keys("   "), enter)
	assert.Equal(t, modeAddText, a.mode)
	assert.True(t, a.isErr)

	send(a, keys("x"), enter, keys("someday"), enter)
	assert.Empty(t, st.Tasks())
	assert.Contains(t, a.message, "not a valid date")
	assert.Equal(t, "someday", a.input.Value())

	send(a, esc)
	assert.Equal(t, modeList, a.mode)
	assert.False(t, a.input.Focused())
}

func TestToggleDeleteAndFilters(t *testing.T) {
	a, st := newTestApp(t, nil)
	first, _ := st.Add("first", "2099-01-01")
	second, _ := st.Add("second", "2099-01-02")

	send(a, space)
	got, _ := st.Get(first.ID)
	assert.True(t, got.Completed)
	assert.Equal(t, second.ID, a.view.Rows()[0].Task.ID, "completed task sinks to the bottom")

	send(a, keys("2"))
	assert.Equal(t, models.FilterActive, st.Filter())
	require.Len(t, a.view.Rows(), 1)

	send(a, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, models.FilterCompleted, st.Filter())
	assert.Contains(t, a.View(), "Completed (1)")

	send(a, keys("d"))
	_, err := st.Get(first.ID)
	assert.ErrorIs(t, err, tasks.ErrNotFound)
	assert.Empty(t, a.view.Rows())

	send(a, keys("1"))
	assert.Equal(t, models.FilterAll, st.Filter())
	assert.Len(t, a.view.Rows(), 1)
}

func TestNavigationClamps(t *testing.T) {
	a, st := newTestApp(t, nil)
	_, _ = st.Add("one", "2099-01-01")
	_, _ = st.Add("two", "2099-01-01")

	send(a, keys("k"))
	assert.Equal(t, 0, a.selectedIdx)
	send(a, keys("j"), keys("j"), keys("j"))
	assert.Equal(t, 1, a.selectedIdx)

	send(a, keys("d"))
	assert.Equal(t, 0, a.selectedIdx)
}

func TestEditText(t *testing.T) {
	a, st := newTestApp(t, nil)
	task, _ := st.Add("draft", "2099-01-01")

	send(a, keys("e"))
	require.Equal(t, modeEdit, a.mode)
	assert.Equal(t, "draft", a.input.Value())

	send(a, keys(" v2"), enter)
	got, _ := st.Get(task.ID)
	assert.Equal(t, "draft v2", got.Text)
	assert.Equal(t, modeList, a.mode)

	send(a, keys("e"), keys("zzz"), esc)
	got, _ = st.Get(task.ID)
	assert.Equal(t, "draft v2", got.Text, "esc discards the edit")
	_, editing := a.view.Editing()
	assert.False(t, editing)
}

func TestEditText_EmptyIsRejected(t *testing.T) {
	a, st := newTestApp(t, nil)
	task, _ := st.Add("keep", "2099-01-01")

	send(a, keys("e"))
	a.input.Reset()
	send(a, enter)

	assert.Equal(t, modeEdit, a.mode)
	assert.True(t, a.isErr)
	got, _ := st.Get(task.ID)
	assert.Equal(t, "keep", got.Text)
}

func TestEditDate(t *testing.T) {
	a, st := newTestApp(t, nil)
	task, _ := st.Add("dated", "2099-01-01")

	send(a, keys("D"))
	assert.Equal(t, "01/01/2099", a.input.Value())
	send(a, enter)
	assert.Equal(t, modeList, a.mode)
	assert.Empty(t, a.message, "unchanged date is not an update")

	send(a, keys("D"))
	a.input.Reset()
	send(a, keys("tomorrow"), enter)
	got, _ := st.Get(task.ID)
	assert.Equal(t, "2030-06-16", got.Date)
}

func TestSortKey(t *testing.T) {
	a, st := newTestApp(t, nil)
	late, _ := st.Add("late", "2099-12-01")
	early, _ := st.Add("early", "2099-01-01")

	send(a, keys("s"))
	ts := st.Tasks()
	assert.Equal(t, []int64{early.ID, late.ID}, []int64{ts[0].ID, ts[1].ID})
}

func TestQuit(t *testing.T) {
	a, _ := newTestApp(t, nil)
	_, cmd := a.Update(keys("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestEmptyStateMessage(t *testing.T) {
	a, st := newTestApp(t, nil)
	assert.Contains(t, a.View(), emptyMessages[models.FilterAll])

	_, _ = st.Add("todo", "2099-01-01")
	assert.NotContains(t, a.View(), emptyMessages[models.FilterAll])
}

func seedServer(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestSeed_Success(t *testing.T) {
	url := seedServer(t, http.StatusOK, `[{"id":1,"title":"alpha"},{"id":2,"title":"beta"}]`)
	a, st := newTestApp(t, seed.New(url, 5, time.Second))

	cmd := a.startSeed()
	require.NotNil(t, cmd)
	assert.True(t, a.seeding)
	assert.Contains(t, a.View(), "Loading sample tasks")

	send(a, cmd())
	assert.False(t, a.seeding)
	assert.Empty(t, a.banner)
	require.Len(t, st.Tasks(), 2)
	assert.Equal(t, "2030-06-15", st.Tasks()[0].Date)
}

func TestSeed_ResultDroppedWhenUserAddedTask(t *testing.T) {
	url := seedServer(t, http.StatusOK, `[{"id":1,"title":"alpha"},{"id":2,"title":"beta"}]`)
	a, st := newTestApp(t, seed.New(url, 5, time.Second))

	cmd := a.startSeed()
	require.NotNil(t, cmd)

	send(a, keys("a"), keys("Mine"), enter, keys("31/01/2099"), enter)
	require.Len(t, st.Tasks(), 1)

	send(a, cmd())
	assert.False(t, a.seeding)
	assert.Empty(t, a.banner)
	require.Len(t, st.Tasks(), 1, "seed items must not replace a task added during the fetch")
	assert.Equal(t, "Mine", st.Tasks()[0].Text)
}

func TestSeed_FailureShowsBanner(t *testing.T) {
	url := seedServer(t, http.StatusInternalServerError, `boom`)
	a, st := newTestApp(t, seed.New(url, 5, time.Second))

	send(a, a.startSeed()())
	assert.Empty(t, st.Tasks())
	assert.Contains(t, a.View(), "Could not load sample tasks")

	// The banner persists across interaction.
	send(a, keys("j"))
	assert.Contains(t, a.View(), "Could not load sample tasks")
}

func TestSeed_SkippedWithActiveTasks(t *testing.T) {
	a, st := newTestApp(t, seed.New("http://127.0.0.1:0", 5, time.Second))
	_, _ = st.Add("mine", "2099-01-01")

	assert.Nil(t, a.startSeed())
	assert.Len(t, st.Tasks(), 1)
}
