package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nlstn/go-rql"
)

var (
	errorLabel    = color.New(color.FgRed, color.Bold)
	fragmentColor = color.New(color.FgRed, color.Underline)
	caretColor    = color.New(color.FgYellow, color.Bold)
)

func isQueryError(err error) bool {
	return rql.IsInputError(err)
}

func errorBody(err error) *ErrorBody {
	body := &ErrorBody{Message: err.Error()}
	var rerr *rql.Error
	if errors.As(err, &rerr) {
		body.Kind = rerr.Kind.String()
		body.Fragment = rerr.Fragment
		if rerr.Pos >= 0 && rerr.Query != "" {
			pos := rerr.Pos
			body.Position = &pos
		}
	}
	return body
}

// PrintDiagnostic writes err to w. Positioned query errors show the query
// with the offending fragment highlighted and a caret under it:
//
//	error: grammar error at position 1: unknown operator "like"
//	  (like(Name,J))
//	   ^^^^
func PrintDiagnostic(w io.Writer, err error) {
	var rerr *rql.Error
	if !errors.As(err, &rerr) || rerr.Query == "" || rerr.Pos < 0 || rerr.Pos > len(rerr.Query) {
		errorLabel.Fprint(w, "error:")
		fmt.Fprintf(w, " %v\n", err)
		return
	}

	msg := rerr.Message
	if rerr.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += rerr.Err.Error()
	}
	errorLabel.Fprint(w, "error:")
	fmt.Fprintf(w, " %s error at position %d: %s\n", rerr.Kind, rerr.Pos, msg)

	q := rerr.Query
	end := rerr.Pos + len(rerr.Fragment)
	if end > len(q) || q[rerr.Pos:end] != rerr.Fragment {
		end = rerr.Pos
	}
	width := end - rerr.Pos
	if width == 0 {
		width = 1
	}

	fmt.Fprintf(w, "  %s", q[:rerr.Pos])
	fragmentColor.Fprint(w, q[rerr.Pos:end])
	fmt.Fprintf(w, "%s\n", q[end:])
	fmt.Fprintf(w, "  %s", strings.Repeat(" ", rerr.Pos))
	caretColor.Fprintln(w, strings.Repeat("^", width))
}
