package i18n_test

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrymomot/fieldrules/pkg/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher(t *testing.T) {
	t.Parallel()

	t.Run("reloads on file change", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "en.yaml", enYAML)

		dict := i18n.NewDictionary("en")
		t.Cleanup(func() { _ = dict.Close() })
		require.NoError(t, dict.Load(context.Background(), i18n.NewDirectoryAdapter(i18n.NewYAMLParser(), dir)))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := dict.Subscribe(ctx)

		w := i18n.NewWatcher(dict, i18n.NewYAMLParser(), dir, 20*time.Millisecond, nil)
		done := make(chan error, 1)
		go func() { done <- w.Watch(ctx) }()

		// Give fsnotify a moment to register the directory.
		time.Sleep(50 * time.Millisecond)
		writeFile(t, dir, "en.yaml", `
en:
  messages:
    required: "Please fill in {_field_}"
`)

		assert.Eventually(t, func() bool {
			return dict.Resolve("name", "required", nil) == "Please fill in name"
		}, 3*time.Second, 20*time.Millisecond)

		select {
		case change := <-sub.Changes():
			assert.Equal(t, "en", change.Locale)
		case <-time.After(time.Second):
			t.Fatal("expected reload notification")
		}

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("watcher did not stop")
		}
	})

	t.Run("fails for missing directory", func(t *testing.T) {
		dict := i18n.NewDictionary("en")
		w := i18n.NewWatcher(dict, i18n.NewYAMLParser(), "/does/not/exist/fieldrules", 0, nil)

		err := w.Watch(context.Background())
		assert.ErrorIs(t, err, i18n.ErrFailedToStartWatcher)
	})
}
