package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/depcache/internal/adapters/logger"
)

func TestPrettyHandler(t *testing.T) {
	tests := []struct {
		name string
		log  func(*slog.Logger)
		want string
	}{
		{
			name: "debug is filtered",
			log:  func(l *slog.Logger) { l.Debug("hidden") },
			want: "",
		},
		{
			name: "record attrs",
			log:  func(l *slog.Logger) { l.Info("parsed", "classes", 3) },
			want: "parsed classes=3\n",
		},
		{
			name: "handler attrs come first",
			log:  func(l *slog.Logger) { l.With("workers", 4).Warn("slow", "ms", 120) },
			want: "! slow workers=4 ms=120\n",
		},
		{
			name: "pass and class become a tag",
			log: func(l *slog.Logger) {
				l.With("class", "com/acme/Foo").Warn("malformed descriptor", "pass", 7, "member", "run")
			},
			want: "! [pass 7 com/acme/Foo] malformed descriptor member=run\n",
		},
		{
			name: "group prefixes keys",
			log:  func(l *slog.Logger) { l.WithGroup("cache").Error("corrupt", "gen", 2) },
			want: "✗ corrupt cache.gen=2\n",
		},
		{
			name: "grouped class is not a tag",
			log:  func(l *slog.Logger) { l.WithGroup("store").Info("saved", "class", "com/acme/Foo") },
			want: "saved store.class=com/acme/Foo\n",
		},
		{
			name: "nested groups and group values",
			log: func(l *slog.Logger) {
				l.WithGroup("store").WithGroup("gen").Info("saved", slog.Group("size", "classes", 3))
			},
			want: "saved store.gen.size.classes=3\n",
		},
		{
			name: "attrs keep the group open when added",
			log:  func(l *slog.Logger) { l.WithGroup("store").With("root", ".depcache").WithGroup("gen").Info("saved", "n", 1) },
			want: "saved store.root=.depcache store.gen.n=1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			tt.log(slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

			assert.Equal(t, tt.want, buf.String())
		})
	}
}
