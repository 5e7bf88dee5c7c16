package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/toaster/internal/app"
	"github.com/colonyops/toaster/internal/core/config"
	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/internal/core/toast/toasttest"
	"github.com/colonyops/toaster/internal/data/db"
	"github.com/colonyops/toaster/internal/toaster"
	"github.com/colonyops/toaster/internal/web"
)

var t0 = time.Date(2026, 8, 11, 16, 30, 0, 0, time.UTC)

func newRoot(out *bytes.Buffer) *cli.Command {
	return &cli.Command{Name: "toaster", Writer: out, ErrWriter: out}
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *app.App {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	if mutate != nil {
		mutate(&cfg)
	}

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)

	a := app.New(&cfg, database, app.Options{
		Metrics:   prometheus.NewRegistry(),
		Scheduler: toasttest.NewScheduler(t0),
	})
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// newTestServer serves the API on a fake clock with ids "t1", "t2", ...
func newTestServer(t *testing.T) (string, *toaster.Registry) {
	t.Helper()

	reg := toaster.NewRegistry(toaster.WithScheduler(toasttest.NewScheduler(t0)))
	t.Cleanup(reg.Close)

	n := 0
	tt := toaster.New(reg, toaster.Config{IDFunc: func() string {
		n++
		return "t" + strconv.Itoa(n)
	}})

	srv := httptest.NewServer(web.New(tt, nil, web.Config{Gatherer: prometheus.NewRegistry()}, zerolog.Nop()).Routes())
	t.Cleanup(srv.Close)
	return srv.URL, reg
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")

	assert.Equal(t, filepath.Join("/cfg", "toaster", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "toaster"), DefaultDataDir())
}

func TestSendCmd_Request(t *testing.T) {
	ms := func(v int64) *int64 { return &v }

	tests := []struct {
		name    string
		setup   func(*SendCmd)
		args    []string
		want    web.ShowRequest
		wantErr string
	}{
		{
			name: "message from args",
			args: []string{"build", "passed"},
			want: web.ShowRequest{Kind: toast.KindBlank, Message: "build passed"},
		},
		{
			name: "flags",
			setup: func(c *SendCmd) {
				c.kind = "success"
				c.id = "deploy"
				c.position = "bottom-center"
				c.icon = "🚀"
				c.duration = 1500 * time.Millisecond
			},
			args: []string{"shipped"},
			want: web.ShowRequest{
				Kind:       toast.KindSuccess,
				Message:    "shipped",
				ID:         "deploy",
				Position:   toast.PositionBottomCenter,
				Icon:       "🚀",
				DurationMS: ms(1500),
			},
		},
		{
			name:  "forever",
			setup: func(c *SendCmd) { c.kind = "loading"; c.forever = true },
			args:  []string{"uploading"},
			want:  web.ShowRequest{Kind: toast.KindLoading, Message: "uploading", DurationMS: ms(-1)},
		},
		{
			name:    "unknown kind",
			setup:   func(c *SendCmd) { c.kind = "toast" },
			args:    []string{"hi"},
			wantErr: "unknown kind",
		},
		{
			name:    "unknown position",
			setup:   func(c *SendCmd) { c.position = "middle" },
			args:    []string{"hi"},
			wantErr: "unknown position",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewSendCmd(&Flags{})
			if tt.setup != nil {
				tt.setup(cmd)
			}

			got, err := cmd.request(tt.args)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSendCmd_RequestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toast.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"kind":"error","message":"disk full","icon":"!"}`), 0o600))

	cmd := NewSendCmd(&Flags{})
	*cmd.input.Flag().Destination = path
	cmd.id = "disk"

	got, err := cmd.request(nil)
	require.NoError(t, err)
	assert.Equal(t, web.ShowRequest{Kind: toast.KindError, Message: "disk full", Icon: "!", ID: "disk"}, got)
}

func TestSendCmd_RequestWithoutMessage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toast.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"kind":"error"}`), 0o600))

	cmd := NewSendCmd(&Flags{})
	*cmd.input.Flag().Destination = path
	cmd.prompt = func(*web.ShowRequest) error {
		t.Fatal("prompt must not run without a terminal")
		return nil
	}

	_, err := cmd.request(nil)
	require.ErrorContains(t, err, "no message provided")
}

func TestSendAndDismiss(t *testing.T) {
	url, reg := newTestServer(t)
	ctx := context.Background()

	var out bytes.Buffer
	run := func(args ...string) error {
		out.Reset()
		root := newRoot(&out)
		root = NewSendCmd(&Flags{}).Register(root)
		root = NewDismissCmd(&Flags{}).Register(root)
		return root.Run(ctx, append([]string{"toaster"}, args...))
	}

	require.NoError(t, run("send", "--server", url, "-s", "modal/login", "-k", "error", "wrong", "password"))
	assert.Equal(t, "t1\n", out.String())

	n, ok := reg.State("modal/login").Find("t1")
	require.True(t, ok)
	assert.Equal(t, toast.KindError, n.Kind)
	assert.Equal(t, "wrong password", n.Text())

	require.NoError(t, run("dismiss", "--server", url, "-s", "modal/login", "t1"))
	n, _ = reg.State("modal/login").Find("t1")
	assert.False(t, n.Visible)

	require.NoError(t, run("dismiss", "--server", url, "-s", "modal/login", "--remove"))
	assert.Empty(t, reg.State("modal/login").Toasts)
}

func TestHistoryCmd(t *testing.T) {
	a := newTestApp(t, nil)
	ctx := context.Background()

	a.Toaster.Success(toast.Static("saved"), toaster.WithID("a"))
	a.Toaster.Error(toast.Static("failed"), toaster.WithID("b"), toaster.WithKey("jobs"))

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		root := NewHistoryCmd(&Flags{}, a).Register(newRoot(&out))
		err := root.Run(ctx, append([]string{"toaster"}, args...))
		return out.String(), err
	}

	t.Run("json", func(t *testing.T) {
		out, err := run("history", "--json")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)

		var first historyEntry
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		assert.Equal(t, "b", first.ToastID)
		assert.Equal(t, "jobs", first.Surface)
		assert.Equal(t, "error", first.Kind)
		assert.Equal(t, "failed", first.Message)
	})

	t.Run("table", func(t *testing.T) {
		out, err := run("history", "--limit", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "SURFACE")
		assert.Contains(t, out, "failed")
		assert.NotContains(t, out, "saved")
	})

	t.Run("show", func(t *testing.T) {
		records, err := a.History.List(ctx, 0)
		require.NoError(t, err)

		out, err := run("history", "show", strconv.FormatInt(records[1].ID, 10))
		require.NoError(t, err)
		assert.Contains(t, out, `"message": "saved"`)

		_, err = run("history", "show", "9999")
		require.ErrorContains(t, err, "not found")

		_, err = run("history", "show", "nope")
		require.ErrorContains(t, err, "invalid history id")
	})

	t.Run("clear", func(t *testing.T) {
		out, err := run("history", "clear")
		require.NoError(t, err)
		assert.Equal(t, "Deleted 2 notification(s)\n", out)

		n, err := a.History.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestHistoryCmd_Disabled(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.History.Enabled = false })

	var out bytes.Buffer
	root := NewHistoryCmd(&Flags{}, a).Register(newRoot(&out))

	err := root.Run(context.Background(), []string{"toaster", "history"})
	require.ErrorIs(t, err, errHistoryDisabled)
}

func TestValidationReport(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.DataDir = t.TempDir()

		r := newValidationReport(&cfg, "")
		assert.True(t, r.Valid)
		assert.Empty(t, r.Errors)

		var out bytes.Buffer
		writeReport(&out, r)
		assert.Contains(t, out.String(), "Configuration is valid")
	})

	t.Run("field errors and warnings", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.DataDir = t.TempDir()
		cfg.Surfaces = []config.Surface{{Pattern: "modal/[oops", Limit: 1}, {Pattern: "jobs/*"}}

		r := newValidationReport(&cfg, "")
		assert.False(t, r.Valid)
		require.Len(t, r.Errors, 1)
		assert.Contains(t, r.Errors[0].Field, "surfaces[0].pattern")
		require.NotEmpty(t, r.Warnings)

		var out bytes.Buffer
		writeReport(&out, r)
		assert.Contains(t, out.String(), "surfaces[0].pattern")
		assert.Contains(t, out.String(), "surface sets neither limit nor position")
		assert.Contains(t, out.String(), "1 error(s) found")
	})
}
