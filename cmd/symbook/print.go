package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reusee/symbook/engine"
	"github.com/reusee/symbook/outputs"
)

// printResponse writes the outputs of resp for a terminal, and reports whether any of them is an error.
func printResponse(w io.Writer, resp *engine.Response) (hasError bool) {
	if resp == nil {
		return false
	}
	if doc := resp.Documentation; doc != nil {
		if !doc.Found {
			fmt.Fprintf(w, "no documentation for %s\n", doc.Name)
			return false
		}
		if doc.Signature != "" {
			fmt.Fprintln(w, doc.Signature)
		} else {
			fmt.Fprintln(w, doc.Name)
		}
		if doc.Body != "" {
			fmt.Fprintln(w, doc.Body)
		} else if doc.Summary != "" {
			fmt.Fprintln(w, doc.Summary)
		}
		return false
	}
	for _, output := range resp.Results {
		switch output.Type {
		case outputs.TypeText:
			fmt.Fprint(w, output.Value)
			if !strings.HasSuffix(output.Value, "\n") {
				fmt.Fprintln(w)
			}
		case outputs.TypeMath:
			// markup is for rich front-ends
			fmt.Fprintln(w, output.Raw)
		case outputs.TypeImage:
			path, err := saveImage(output.Value)
			if err != nil {
				fmt.Fprintf(w, "<image: %v>\n", err)
				continue
			}
			fmt.Fprintf(w, "<image: %s>\n", path)
		case outputs.TypeError:
			hasError = true
			if output.Line > 0 {
				fmt.Fprintf(w, "%s (line %d): %s\n", output.ErrorName, output.Line, output.Value)
			} else {
				fmt.Fprintf(w, "%s: %s\n", output.ErrorName, output.Value)
			}
			if output.Traceback != "" {
				fmt.Fprintln(w, strings.TrimRight(output.Traceback, "\n"))
			}
		}
	}
	return
}

func saveImage(data string) (string, error) {
	bs, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp("", "symbook-*.png")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(bs); err != nil {
		return "", err
	}
	return f.Name(), nil
}
