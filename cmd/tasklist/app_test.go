package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fentz26/tasklist/internal/config"
	"github.com/fentz26/tasklist/internal/models"
	"github.com/fentz26/tasklist/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	c := config.DefaultConfig()
	c.Storage.Driver = driver
	c.Storage.Path = filepath.Join(t.TempDir(), "data", "tasks.store")
	c.Seed.Enabled = false
	return c
}

func TestOpenApp_SQLitePersistsAndJournals(t *testing.T) {
	c := testConfig(t, config.DriverSQLite)

	a, err := openApp(c)
	require.NoError(t, err)
	task, err := a.tasks.Add("write tests", "2099-01-01")
	require.NoError(t, err)
	a.Close()

	a, err = openApp(c)
	require.NoError(t, err)
	defer a.Close()

	got, err := a.tasks.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "write tests", got.Text)

	entries, err := a.db.ListJournal(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, tasks.ActionAdd, entries[0].Action)
	assert.Equal(t, task.ID, entries[0].TaskID)
}

func TestOpenApp_RedisFollowsAuditSwitch(t *testing.T) {
	c := testConfig(t, config.DriverSQLite)
	c.Audit.Redis.Addr = "127.0.0.1:1"
	c.Audit.Enabled = false

	a, err := openApp(c)
	require.NoError(t, err)
	assert.Nil(t, a.redis, "disabled audit must not attach redis")
	a.Close()

	c.Audit.Enabled = true
	a, err = openApp(c)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.redis)

	// An unreachable server is logged and skipped.
	_, err = a.tasks.Add("still saved", "2099-01-01")
	require.NoError(t, err)
	entries, err := a.db.ListJournal(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpenApp_FileDriver(t *testing.T) {
	c := testConfig(t, config.DriverFile)

	a, err := openApp(c)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.db)
	_, err = a.tasks.Add("file backed", "2099-01-01")
	require.NoError(t, err)

	data, err := os.ReadFile(c.StoragePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "file backed")
}

func TestOpenApp_CorruptStartsEmpty(t *testing.T) {
	c := testConfig(t, config.DriverFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(c.StoragePath()), 0o700))
	require.NoError(t, os.WriteFile(c.StoragePath(), []byte("{not json"), 0o600))

	a, err := openApp(c)
	require.NoError(t, err)
	defer a.Close()
	assert.Empty(t, a.tasks.Tasks())
}

func TestPrintTasks(t *testing.T) {
	var buf bytes.Buffer
	printTasks(&buf, nil)
	assert.Equal(t, "No tasks found\n", buf.String())

	buf.Reset()
	printTasks(&buf, []models.Task{
		{ID: 7, Text: "ship it", Date: "2099-01-31", Completed: true},
	})
	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "31/01/99")
	assert.Contains(t, out, "ship it")
}

func TestTaskList_AppliesFilter(t *testing.T) {
	c := testConfig(t, config.DriverFile)
	a, err := openApp(c)
	require.NoError(t, err)
	active, err := a.tasks.Add("still open", "2099-01-01")
	require.NoError(t, err)
	done, err := a.tasks.Add("already done", "2099-01-02")
	require.NoError(t, err)
	require.NoError(t, a.tasks.ToggleComplete(done.ID))
	a.Close()

	prevCfg, prevFilter := cfg, taskFilter
	t.Cleanup(func() { cfg, taskFilter = prevCfg, prevFilter })
	cfg = c

	var buf bytes.Buffer
	taskListCmd.SetOut(&buf)
	t.Cleanup(func() { taskListCmd.SetOut(nil) })

	taskFilter = "active"
	require.NoError(t, runTaskList(taskListCmd, nil))
	assert.Contains(t, buf.String(), active.Text)
	assert.NotContains(t, buf.String(), done.Text)

	buf.Reset()
	taskFilter = "completed"
	require.NoError(t, runTaskList(taskListCmd, nil))
	assert.Contains(t, buf.String(), done.Text)
	assert.NotContains(t, buf.String(), active.Text)
}

func TestParseID(t *testing.T) {
	id, err := parseID("1718000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1718000000000), id)

	_, err = parseID("abc")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
