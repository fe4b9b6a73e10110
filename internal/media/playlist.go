package media

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var playlistExts = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".pls":  true,
}

// IsPlaylistExt returns true if the extension is a supported playlist format.
func IsPlaylistExt(ext string) bool {
	return playlistExts[strings.ToLower(ext)]
}

// ExpandArgs turns command line arguments into an ordered list of audio files.
// Playlists are replaced by their entries; entries that do not exist or are
// not decodable are skipped. Plain audio paths are kept as given so a missing
// file is reported when it is loaded.
func ExpandArgs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if !IsPlaylistExt(filepath.Ext(arg)) {
			out = append(out, arg)
			continue
		}
		entries, err := ReadPlaylist(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, playable(entries)...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no playable files (supported: %s)", SupportedExtsList())
	}
	return out, nil
}

// ReadPlaylist parses a local .m3u/.m3u8/.pls file. Relative entries are
// resolved against the playlist's directory; URLs are dropped.
func ReadPlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))

	dir := filepath.Dir(abs)
	var entries []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if ext == ".pls" {
			line = plsFileValue(line)
		} else if strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.Trim(line, "\"")
		if line == "" || strings.Contains(line, "://") {
			continue
		}
		entries = append(entries, resolveEntry(line, dir))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	return entries, nil
}

// plsFileValue returns the value of a FileN=... line, or "".
func plsFileValue(line string) string {
	key, val, ok := strings.Cut(line, "=")
	if !ok {
		return ""
	}
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(strings.ToLower(key), "file") || len(key) == len("file") {
		return ""
	}
	for _, r := range key[len("file"):] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return strings.TrimSpace(val)
}

func resolveEntry(raw, dir string) string {
	p := filepath.Clean(raw)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func playable(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || !IsSupportedExt(filepath.Ext(p)) {
			continue
		}
		out = append(out, p)
	}
	return out
}
