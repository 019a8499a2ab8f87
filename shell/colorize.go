package shell

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
)

// colorize writes text with terminal syntax highlighting chosen from the
// file name. MPSH_THEME overrides the chroma style.
func colorize(name string, text []byte, out io.Writer) error {
	lexer := lexers.Match(filepath.Base(name))
	if lexer == nil {
		return errors.New("lexer not found")
	}
	styleName := os.Getenv("MPSH_THEME")
	if styleName == "" {
		styleName = "monokai"
	}
	style := styles.Get(styleName)
	if style == nil {
		return errors.New("style not found")
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return errors.New("formatter not found")
	}
	iterator, err := lexer.Tokenise(nil, string(text))
	if err != nil {
		return err
	}
	return formatter.Format(out, style, iterator)
}
