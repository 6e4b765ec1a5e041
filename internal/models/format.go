package models

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"fjacquet/beancount-import/internal/dateutils"
)

// Format renders the entry as a Beancount transaction block. The
// description is quoted but not escaped.
func (e Entry) Format(currency string) string {
	flag := e.Flag
	if flag == "" {
		flag = FlagCleared
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s \"%s\"\n", dateutils.ToISODate(e.Date), flag, e.Description)
	for _, l := range e.Lines {
		b.WriteString(" ")
		b.WriteString(l.Account)
		if l.HasAmount() {
			fmt.Fprintf(&b, " %s %s", l.Amount.Decimal.StringFixed(2), currency)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderEntries writes entries in order, blocks separated by an empty
// line, the stream terminated by a newline.
func RenderEntries(w io.Writer, entries []Entry, currency string) error {
	bw := bufio.NewWriter(w)
	for i, e := range entries {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(e.Format(currency)); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}
	return bw.Flush()
}
