package app

import (
	"strings"
	"unicode/utf8"

	"memclock/internal/gfx"
)

// halt reports a fatal init error and blocks forever.
func (a *App) halt(err error) {
	a.logf("memclock: fatal: %v", err)
	a.drawFatal(err)
	select {}
}

// drawFatal shows err on the panel if the drawing context came up.
func (a *App) drawFatal(err error) bool {
	g := a.gctx
	if g == nil {
		return false
	}

	g.Background = gfx.White
	g.Foreground = gfx.Black
	g.Clear()

	cols := 1
	if cw := g.TextWidth("0"); cw > 0 && g.Width()/cw > 1 {
		cols = g.Width() / cw
	}

	line := 0
	for _, s := range []string{"fatal:", err.Error()} {
		for len(s) > 0 {
			if line >= g.Lines() {
				_ = g.Flush()
				return true
			}
			chunk, rest := takeRunes(s, cols)
			_ = g.DrawStringOnLine(chunk, line, gfx.AlignLeft, 0, 0, true)
			line++
			s = strings.TrimLeft(rest, " ")
		}
	}
	_ = g.Flush()
	return true
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
