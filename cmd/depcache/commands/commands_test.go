package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/depcache/cmd/depcache/commands"
	"go.trai.ch/depcache/internal/app"
	"go.trai.ch/depcache/internal/build"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/depcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type mockApp struct {
	passFunc       func(ctx context.Context, opts app.PassOptions) (*domain.PassResult, error)
	dependentsFunc func(ctx context.Context, class string) ([]string, error)
	showFunc       func(ctx context.Context, class string) (domain.ClassView, error)
	supertypeFunc  func(ctx context.Context, first, second string) (string, error)
	watchFunc      func(ctx context.Context, opts app.WatchOptions, reporter ports.Reporter) error
	cleanFunc      func(ctx context.Context) error
	shutdowns      int
}

func (m *mockApp) Pass(ctx context.Context, opts app.PassOptions) (*domain.PassResult, error) {
	if m.passFunc != nil {
		return m.passFunc(ctx, opts)
	}
	return &domain.PassResult{}, nil
}

func (m *mockApp) Dependents(ctx context.Context, class string) ([]string, error) {
	if m.dependentsFunc != nil {
		return m.dependentsFunc(ctx, class)
	}
	return nil, nil
}

func (m *mockApp) Show(ctx context.Context, class string) (domain.ClassView, error) {
	if m.showFunc != nil {
		return m.showFunc(ctx, class)
	}
	return domain.ClassView{}, nil
}

func (m *mockApp) Supertype(ctx context.Context, first, second string) (string, error) {
	if m.supertypeFunc != nil {
		return m.supertypeFunc(ctx, first, second)
	}
	return domain.ObjectClassName, nil
}

func (m *mockApp) Watch(ctx context.Context, opts app.WatchOptions, reporter ports.Reporter) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, opts, reporter)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx)
	}
	return nil
}

func (m *mockApp) StartTelemetry(context.Context) (func(context.Context) error, error) {
	return func(context.Context) error {
		m.shutdowns++
		return nil
	}, nil
}

func newCLI(t *testing.T, m *mockApp, args ...string) (*commands.CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	log := mocks.NewMockLogger(gomock.NewController(t))
	cli := commands.New(m, log)
	out := new(bytes.Buffer)
	cli.SetOutput(out, out)
	cli.SetArgs(args)
	return cli, out
}

func TestCommands_Pass(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.PassOptions
		mock := &mockApp{
			passFunc: func(_ context.Context, opts app.PassOptions) (*domain.PassResult, error) {
				captured = opts
				return &domain.PassResult{Pass: 7, Affected: []string{}}, nil
			},
		}

		cli, _ := newCLI(t, mock, "pass", "build/classes",
			"--pass", "7", "--refs", "refs.yaml",
			"--removed", "com.acme.Gone", "--removed", "com/acme/Old",
			"--dry-run", "--format", "text")

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, app.PassOptions{
			Dir:     "build/classes",
			ID:      7,
			Refs:    "refs.yaml",
			Removed: []string{"com.acme.Gone", "com/acme/Old"},
			DryRun:  true,
		}, captured)
		assert.Equal(t, 1, mock.shutdowns)
	})

	t.Run("renders json", func(t *testing.T) {
		mock := &mockApp{
			passFunc: func(context.Context, app.PassOptions) (*domain.PassResult, error) {
				return &domain.PassResult{
					Pass:      2,
					Affected:  []string{"com/acme/A"},
					Reasons:   map[string]domain.Reason{"com/acme/A": {Kind: domain.ReasonStructural}},
					Committed: true,
				}, nil
			},
		}

		cli, out := newCLI(t, mock, "pass", "classes", "--format", "json")
		require.NoError(t, cli.Execute(context.Background()))

		var got domain.PassResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, uint64(2), got.Pass)
		assert.Equal(t, []string{"com/acme/A"}, got.Affected)
		assert.True(t, got.Committed)
	})

	t.Run("returns error on pass failure", func(t *testing.T) {
		mock := &mockApp{
			passFunc: func(context.Context, app.PassOptions) (*domain.PassResult, error) {
				return nil, errors.New("simulated error")
			},
		}

		cli, _ := newCLI(t, mock, "pass", "classes")
		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		mock := &mockApp{
			passFunc: func(context.Context, app.PassOptions) (*domain.PassResult, error) {
				panic("should not be called")
			},
		}

		cli, _ := newCLI(t, mock, "pass", "classes", "--format", "yaml")
		assert.ErrorIs(t, cli.Execute(context.Background()), domain.ErrInvalidFormat)
	})

	t.Run("requires a classes directory", func(t *testing.T) {
		cli, _ := newCLI(t, &mockApp{}, "pass")
		assert.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Dependents(t *testing.T) {
	mock := &mockApp{
		dependentsFunc: func(_ context.Context, class string) ([]string, error) {
			assert.Equal(t, "com.acme.Owner", class)
			return []string{"com/acme/Consumer"}, nil
		},
	}

	cli, out := newCLI(t, mock, "dependents", "com.acme.Owner", "--format", "text")
	require.NoError(t, cli.Execute(context.Background()))

	assert.Contains(t, out.String(), "com/acme/Owner has 1 dependent")
	assert.Contains(t, out.String(), "com/acme/Consumer")
}

func TestCommands_DependentsUnknownClass(t *testing.T) {
	mock := &mockApp{
		dependentsFunc: func(context.Context, string) ([]string, error) {
			return nil, domain.ErrClassNotFound
		},
	}

	cli, _ := newCLI(t, mock, "dependents", "com/acme/Missing")
	assert.ErrorIs(t, cli.Execute(context.Background()), domain.ErrClassNotFound)
}

func TestCommands_Show(t *testing.T) {
	mock := &mockApp{
		showFunc: func(_ context.Context, class string) (domain.ClassView, error) {
			return domain.ClassView{Name: domain.InternalName(class), Super: domain.ObjectClassName}, nil
		},
	}

	cli, out := newCLI(t, mock, "show", "com.acme.Owner", "--format", "json")
	require.NoError(t, cli.Execute(context.Background()))

	var view domain.ClassView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.Equal(t, "com/acme/Owner", view.Name)
	assert.Equal(t, domain.ObjectClassName, view.Super)
}

func TestCommands_Supertype(t *testing.T) {
	mock := &mockApp{
		supertypeFunc: func(_ context.Context, first, second string) (string, error) {
			assert.Equal(t, "com.acme.User", first)
			assert.Equal(t, "com/acme/Admin", second)
			return "com/acme/Person", nil
		},
	}

	cli, out := newCLI(t, mock, "supertype", "com.acme.User", "com/acme/Admin", "--format", "text")
	require.NoError(t, cli.Execute(context.Background()))

	assert.Contains(t, out.String(), "com/acme/User + com/acme/Admin → com/acme/Person")
}

func TestCommands_Watch(t *testing.T) {
	var captured app.WatchOptions
	mock := &mockApp{
		watchFunc: func(_ context.Context, opts app.WatchOptions, reporter ports.Reporter) error {
			captured = opts
			return reporter.Pass(&domain.PassResult{Pass: 1, Committed: true})
		},
	}

	cli, out := newCLI(t, mock, "watch", "classes", "--refs", "refs.yaml", "--format", "text")
	require.NoError(t, cli.Execute(context.Background()))

	assert.Equal(t, app.WatchOptions{Dir: "classes", Refs: "refs.yaml"}, captured)
	assert.Contains(t, out.String(), "pass 1 committed")
}

func TestCommands_Clean(t *testing.T) {
	called := false
	mock := &mockApp{
		cleanFunc: func(context.Context) error {
			called = true
			return nil
		},
	}

	cli, _ := newCLI(t, mock, "clean")
	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, called)
}

func TestCommands_Version(t *testing.T) {
	cli, out := newCLI(t, &mockApp{}, "version")

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, out.String(), build.Version)
}
