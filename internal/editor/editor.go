// Package editor shells out to $VISUAL/$EDITOR for note editing and parses
// the round-tripped buffer back into title, tags, and body.
package editor

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	TitlePrefix = "Title: "
	TagsPrefix  = "Tags: "
)

// ComposeContent builds the buffer presented to the editor.
func ComposeContent(title string, tags []string, body string) string {
	var b bytes.Buffer
	b.WriteString("# Notedown Note\n")
	b.WriteString("# Lines starting with '#' above the '---' are ignored.\n")
	b.WriteString("# Set Title and Tags (comma-separated). After '---', write Markdown body.\n")
	b.WriteString(TitlePrefix)
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(TagsPrefix)
	if len(tags) > 0 {
		b.WriteString(strings.Join(tags, ", "))
	}
	b.WriteString("\n---\n")
	if body != "" {
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		b.WriteString(body)
	}
	return b.String()
}

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// PathForID returns the scratch file path used while editing a note.
func PathForID(id int64) (string, error) {
	name := strconv.FormatInt(id, 10) + ".notedown.md"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "notedown", name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "notedown", "edit", name), nil
}

func writeFile0600(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// OpenAt opens the editor at path with initial content and returns the final
// bytes plus whether anything changed.
func OpenAt(path string, initial []byte) (final []byte, changed bool, err error) {
	if err := writeFile0600(path, initial); err != nil {
		return nil, false, err
	}
	// Honor VISUAL/EDITOR including flags by running via a shell wrapper.
	ed := os.Getenv("VISUAL")
	if ed == "" {
		ed = os.Getenv("EDITOR")
	}
	var cmd *exec.Cmd
	if strings.TrimSpace(ed) != "" {
		cmd = exec.Command("sh", "-c", "$EDITORCMD \"$FILEPATH\"")
		cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
	} else {
		prog, err := PreferredEditor()
		if err != nil {
			return nil, false, err
		}
		cmd = exec.Command(prog, path)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false, err
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return out, !bytes.Equal(out, initial), nil
}

// ParseEditedNote extracts title, tags and body from the editor output.
func ParseEditedNote(s string) (title string, tags []string, body string) {
	lines := strings.Split(s, "\n")
	inBody := false
	var bodyLines []string
	for _, line := range lines {
		if !inBody {
			if strings.HasPrefix(line, TitlePrefix) {
				title = strings.TrimSpace(strings.TrimPrefix(line, TitlePrefix))
				continue
			}
			if strings.HasPrefix(line, TagsPrefix) {
				raw := strings.TrimSpace(strings.TrimPrefix(line, TagsPrefix))
				if raw != "" {
					for _, t := range strings.Split(raw, ",") {
						if tt := strings.TrimSpace(t); tt != "" {
							tags = append(tags, tt)
						}
					}
				}
				continue
			}
			if strings.TrimSpace(line) == "---" {
				inBody = true
			}
			// Everything else above the separator is header chrome.
			continue
		}
		bodyLines = append(bodyLines, line)
	}
	body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	return title, tags, body
}

// FirstLine returns the first trimmed line, squashed and truncated. Used to
// derive a title when the editor buffer left it blank.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
