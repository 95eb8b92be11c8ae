package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/jxsl13/attr-state/model"
)

var (
	changedColor = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
	failedColor  = color.New(color.FgRed, color.Bold)
	pathColor    = color.New(color.FgCyan)
)

func writeResult(w io.Writer, format string, res model.Result) {
	if format == "text" {
		writeText(w, res)
		return
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "{\"failed\": true, \"msg\": %q}\n", err.Error())
		return
	}
	fmt.Fprintln(w, string(data))
}

func writeText(w io.Writer, res model.Result) {
	switch {
	case res.Failed:
		failedColor.Fprintf(w, "failed: %s\n", res.Msg)
		return
	case res.Changed:
		changedColor.Fprint(w, "changed")
	default:
		okColor.Fprint(w, "ok")
	}
	if res.Msg != "" {
		fmt.Fprintf(w, ": %s", res.Msg)
	}
	fmt.Fprintln(w)

	switch attrs := res.Attr.(type) {
	case model.PathAttributes:
		max := longestValue(attrs)
		for _, k := range attrs.Paths() {
			fmt.Fprintf(w, "%-"+strconv.Itoa(max+1)+"s ", attrs[k].String())
			pathColor.Fprintln(w, k)
		}
	case model.ChangeBatch:
		for _, a := range attrs.Groups() {
			fmt.Fprintf(w, "=%s\n", a)
			for _, p := range attrs[a] {
				pathColor.Fprintf(w, "  %s\n", p)
			}
		}
	}
}
