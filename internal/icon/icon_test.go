package icon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"per-app-volume/internal/platform/logger"
)

type staticRegistry struct {
	apps []App
	err  error
}

func (s staticRegistry) Applications() ([]App, error) { return s.apps, s.err }

func writeAsset(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name+".png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG"), 0o644))
	return path
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "firefox", Normalize("Firefox.desktop"))
	assert.Equal(t, "code-oss", Normalize("Code  OSS"))
	assert.Equal(t, "code---oss", Normalize("Code - OSS"))
	assert.Equal(t, "org.gnome.epiphany", Normalize("org.gnome.Epiphany"))
}

func TestAliases_keys_are_normalized(t *testing.T) {
	a := NewAliases(DefaultAliases, map[string]string{"Spotify Launcher": "spotify"})

	assert.Equal(t, "code", a.Canonical(Normalize("Code - OSS")))
	assert.Equal(t, "google-chrome", a.Canonical("google-chrome-stable"))
	assert.Equal(t, "spotify", a.Canonical(Normalize("Spotify Launcher")))
	assert.Equal(t, "mpv", a.Canonical("mpv"))
}

func TestResolver_Candidates_order_and_aliases(t *testing.T) {
	r := NewResolver("", nil, nil)
	props := map[string]string{
		"application.process.binary": "/opt/google/chrome/google-chrome-stable",
		"application.name":           "Google Chrome",
		"window.icon_name":           "",
		"media.icon_name":            "audio-card",
	}

	assert.Equal(t, []string{"audio-card", "google-chrome", "google-chrome"}, r.Candidates(props))
}

func TestResolver_prefers_asset_over_index_over_theme(t *testing.T) {
	dir := t.TempDir()
	assetPath := writeAsset(t, dir, "music")

	idx := NewIndex(staticRegistry{apps: []App{{ID: "music.desktop", Icon: "music-from-desktop"}}})
	require.NoError(t, idx.Rebuild())

	r := NewResolver(dir, nil, idx)
	got := r.Resolve(map[string]string{"application.name": "Music"})

	assert.Equal(t, Descriptor{Kind: KindFile, Value: assetPath, Source: SourceAsset}, got)
}

func TestResolver_asset_for_later_candidate_beats_index_for_earlier(t *testing.T) {
	dir := t.TempDir()
	assetPath := writeAsset(t, dir, "player")

	idx := NewIndex(staticRegistry{apps: []App{{ID: "fancy-icon.desktop", Icon: "fancy"}}})
	require.NoError(t, idx.Rebuild())

	r := NewResolver(dir, nil, idx)
	got := r.Resolve(map[string]string{
		"application.icon_name":      "fancy-icon",
		"application.process.binary": "/usr/bin/player",
	})

	assert.Equal(t, SourceAsset, got.Source)
	assert.Equal(t, assetPath, got.Value)
}

func TestResolver_index_match(t *testing.T) {
	idx := NewIndex(staticRegistry{apps: []App{
		{ID: "org.mozilla.firefox.desktop", Exec: "/usr/lib/firefox/firefox", Icon: "/usr/share/pixmaps/firefox.png"},
	}})
	require.NoError(t, idx.Rebuild())

	r := NewResolver(t.TempDir(), nil, idx)
	got := r.Resolve(map[string]string{
		"application.name":           "Firefox Web Browser",
		"application.process.binary": "firefox",
	})

	assert.Equal(t, Descriptor{Kind: KindFile, Value: "/usr/share/pixmaps/firefox.png", Source: SourceDesktop}, got)
}

func TestResolver_theme_name_fallback(t *testing.T) {
	r := NewResolver(t.TempDir(), nil, NewIndex(staticRegistry{}))
	got := r.Resolve(map[string]string{"application.name": "Some Game"})

	assert.Equal(t, Descriptor{Kind: KindName, Value: "some-game", Source: SourceTheme}, got)
}

func TestResolver_generic_fallback(t *testing.T) {
	r := NewResolver(t.TempDir(), nil, nil)
	assert.Equal(t, Fallback(), r.Resolve(map[string]string{"media.name": "Playback"}))
	assert.Equal(t, Fallback(), r.Resolve(nil))
}

func TestResolver_asset_lookup_stays_in_dir(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "icons")
	require.NoError(t, os.Mkdir(inner, 0o755))
	writeAsset(t, dir, "escape")

	r := NewResolver(inner, nil, nil)
	got := r.Resolve(map[string]string{"application.icon_name": "../escape"})
	assert.NotEqual(t, SourceAsset, got.Source)
}

func TestIndex_Rebuild_error_keeps_previous(t *testing.T) {
	reg := &staticRegistry{apps: []App{{ID: "vlc.desktop", Exec: "vlc", Icon: "vlc"}}}
	idx := NewIndex(reg)
	require.NoError(t, idx.Rebuild())
	assert.Equal(t, 1, idx.Len(), "id and exec basename collapse to one key")

	reg.err = errors.New("registry down")
	assert.Error(t, idx.Rebuild())
	_, ok := idx.Lookup("vlc")
	assert.True(t, ok)
}

func TestIndex_first_entry_wins(t *testing.T) {
	idx := NewIndex(staticRegistry{apps: []App{
		{ID: "mpv.desktop", Icon: "mpv-user"},
		{ID: "mpv.desktop", Icon: "mpv-system"},
		{ID: "noicon.desktop", Exec: "/usr/bin/noicon"},
	}})
	require.NoError(t, idx.Rebuild())

	d, ok := idx.Lookup("mpv")
	require.True(t, ok)
	assert.Equal(t, "mpv-user", d.Value)
	_, ok = idx.Lookup("noicon")
	assert.False(t, ok)
}

func TestDesktopRegistry_Applications(t *testing.T) {
	user := t.TempDir()
	system := t.TempDir()
	for _, d := range []string{user, system} {
		require.NoError(t, os.MkdirAll(filepath.Join(d, "applications", "kde"), 0o755))
	}

	write := func(path, body string) {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write(filepath.Join(user, "applications", "firefox.desktop"), "[Desktop Entry]\nName=Firefox\nName[de]=Feuerfuchs\nExec=firefox %u\nIcon=firefox-user\n")
	write(filepath.Join(system, "applications", "firefox.desktop"), "[Desktop Entry]\nName=Firefox\nExec=/usr/bin/firefox %u\nIcon=firefox\n")
	write(filepath.Join(system, "applications", "kde", "dragon.desktop"), "[Desktop Entry]\nExec=\"/usr/bin/dragon\" --play\nIcon=dragonplayer\n\n[Desktop Action new]\nExec=dragon --new\n")
	write(filepath.Join(system, "applications", "ghost.desktop"), "[Desktop Entry]\nExec=ghost\nIcon=ghost\nHidden=true\n")
	write(filepath.Join(system, "applications", "notes.txt"), "not an entry")

	reg := NewDesktopRegistry(logger.Discard(), user, system)
	apps, err := reg.Applications()
	require.NoError(t, err)

	byID := map[string]App{}
	for _, a := range apps {
		byID[a.ID] = a
	}
	assert.Len(t, byID, 2)
	assert.Equal(t, App{ID: "firefox.desktop", Exec: "firefox", Icon: "firefox-user"}, byID["firefox.desktop"])
	assert.Equal(t, App{ID: "kde-dragon.desktop", Exec: "/usr/bin/dragon", Icon: "dragonplayer"}, byID["kde-dragon.desktop"])
}

func TestDesktopRegistry_missing_dirs(t *testing.T) {
	reg := NewDesktopRegistry(logger.Discard(), filepath.Join(t.TempDir(), "absent"))
	apps, err := reg.Applications()
	require.NoError(t, err)
	assert.Empty(t, apps)
}
