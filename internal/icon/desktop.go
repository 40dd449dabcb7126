package icon

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const desktopEntrySection = "Desktop Entry"

// DesktopRegistry lists applications from XDG desktop entry files.
type DesktopRegistry struct {
	dirs []string
	log  *slog.Logger
}

// NewDesktopRegistry scans the "applications" directory of each data dir, in
// order. With no dirs, the XDG base directories are used.
func NewDesktopRegistry(log *slog.Logger, dataDirs ...string) *DesktopRegistry {
	if len(dataDirs) == 0 {
		dataDirs = XDGDataDirs()
	}
	dirs := make([]string, 0, len(dataDirs))
	for _, d := range dataDirs {
		dirs = append(dirs, filepath.Join(d, "applications"))
	}
	return &DesktopRegistry{dirs: dirs, log: log}
}

// XDGDataDirs returns $XDG_DATA_HOME followed by $XDG_DATA_DIRS, with the
// defaults from the base directory specification.
func XDGDataDirs() []string {
	var dirs []string
	if home := os.Getenv("XDG_DATA_HOME"); home != "" {
		dirs = append(dirs, home)
	} else if h, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(h, ".local", "share"))
	}

	system := os.Getenv("XDG_DATA_DIRS")
	if system == "" {
		system = "/usr/local/share:/usr/share"
	}
	for _, d := range strings.Split(system, ":") {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Applications implements Registry. Unreadable directories and malformed
// entries are skipped; a desktop id seen in an earlier directory shadows later
// ones.
func (r *DesktopRegistry) Applications() ([]App, error) {
	seen := make(map[string]bool)
	var apps []App

	for _, dir := range r.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".desktop") {
				return nil
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return nil
			}
			id := strings.ReplaceAll(rel, string(filepath.Separator), "-")
			if seen[id] {
				return nil
			}
			seen[id] = true

			app, ok := r.parse(path, id)
			if ok {
				apps = append(apps, app)
			}
			return nil
		})
		if err != nil {
			r.log.Debug("icon: scanning applications dir failed", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}
	return apps, nil
}

func (r *DesktopRegistry) parse(path, id string) (App, bool) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
		KeyValueDelimiters:      "=",
	}, path)
	if err != nil {
		r.log.Debug("icon: skipping malformed desktop entry", slog.String("path", path), slog.String("error", err.Error()))
		return App{}, false
	}
	sec, err := f.GetSection(desktopEntrySection)
	if err != nil {
		return App{}, false
	}
	if sec.Key("Hidden").MustBool(false) {
		return App{}, false
	}

	return App{
		ID:   id,
		Exec: execProgram(sec.Key("Exec").String()),
		Icon: strings.TrimSpace(sec.Key("Icon").String()),
	}, true
}

// execProgram returns the program of an Exec line: its first field with
// surrounding quotes removed.
func execProgram(exec string) string {
	fields := strings.Fields(exec)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], `"'`)
}
