package outputs

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/reusee/symbook/interp"
	"github.com/samber/lo"
)

// Classify turns a raw evaluation result into ordered outputs:
// printed text, then the error or the primary result, then the image.
func Classify(result *interp.Result, now time.Time) []Output {
	ret := []Output{}

	if strings.TrimSpace(result.Stdout) != "" {
		ret = append(ret, Output{
			Type:      TypeText,
			Value:     result.Stdout,
			Timestamp: now,
		})
	}

	if result.Error != nil {
		ret = append(ret, Output{
			Type:         TypeError,
			Value:        result.Error.Message,
			Timestamp:    now,
			ErrorName:    result.Error.Kind,
			Line:         result.Error.Line,
			Traceback:    result.Error.Trace,
			MissingNames: MissingNames(result.Error.Message),
		})

	} else if result.HasValue && !isTrivial(result.ResultText) {
		if result.MathMarkup != "" {
			ret = append(ret, Output{
				Type:      TypeMath,
				Value:     result.MathMarkup,
				Timestamp: now,
				Raw:       result.ResultText,
				Tabular:   result.Tabular,
				IsResult:  true,
			})
		} else {
			ret = append(ret, Output{
				Type:      TypeText,
				Value:     result.ResultText,
				Timestamp: now,
				Raw:       result.ResultText,
				Tabular:   result.Tabular,
				IsResult:  true,
			})
		}
	}

	if result.ImageBase64 != "" {
		ret = append(ret, Output{
			Type:      TypeImage,
			Value:     result.ImageBase64,
			Timestamp: now,
		})
	}

	return ret
}

func isTrivial(text string) bool {
	text = strings.TrimSpace(text)
	return text == "" || text == "None"
}

var missingNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`undefined: (\w+)`),
	regexp.MustCompile(`name '(\w+)' is not defined`),
	regexp.MustCompile(`global variable (\w+) referenced before assignment`),
}

// MissingNames extracts the undefined names mentioned in an error message, in order of appearance.
func MissingNames(message string) []string {
	type hit struct {
		pos  int
		name string
	}
	var hits []hit
	for _, re := range missingNamePatterns {
		for _, m := range re.FindAllStringSubmatchIndex(message, -1) {
			hits = append(hits, hit{
				pos:  m[2],
				name: message[m[2]:m[3]],
			})
		}
	}
	if len(hits) == 0 {
		return nil
	}
	slices.SortStableFunc(hits, func(a, b hit) int {
		return cmp.Compare(a.pos, b.pos)
	})
	return lo.Uniq(lo.Map(hits, func(h hit, _ int) string {
		return h.name
	}))
}
