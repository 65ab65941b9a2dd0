package questiongen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/abhisek/quizgenius/internal/llm"
	"github.com/abhisek/quizgenius/internal/question"
)

const defaultConfidence = 0.5

var errNoJSONObject = errors.New("no JSON object found in completion")

// DroppedItem is an entry of the questions array that could not be mapped
// to a draft.
type DroppedItem struct {
	Index  int
	Reason string
}

// Parse turns a raw completion into drafts of type t. A completion without
// a usable envelope returns a *ResponseParseError and no drafts. Items
// missing their text or answer are dropped individually.
func Parse(raw string, chunkID int, t question.Type) ([]question.Draft, []DroppedItem, error) {
	obj, src, err := extractJSONObject(raw)
	if err != nil {
		return nil, nil, &ResponseParseError{ChunkID: chunkID, Type: t, Err: err}
	}
	if err := llm.ValidateValue(envelopeSchema, obj, json.RawMessage(src)); err != nil {
		return nil, nil, &ResponseParseError{ChunkID: chunkID, Type: t, Err: err}
	}

	items := obj.(map[string]any)["questions"].([]any)
	var (
		drafts  []question.Draft
		dropped []DroppedItem
	)
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			dropped = append(dropped, DroppedItem{Index: i, Reason: "item is not an object"})
			continue
		}
		d, reason := mapItem(m, t)
		if reason != "" {
			dropped = append(dropped, DroppedItem{Index: i, Reason: reason})
			continue
		}
		d.ChunkID = chunkID
		drafts = append(drafts, d)
	}
	return drafts, dropped, nil
}

// extractJSONObject finds the first well-formed JSON object in s. Fenced
// code blocks are tried before the surrounding text.
func extractJSONObject(s string) (any, string, error) {
	for _, candidate := range append(fencedBlocks(s), s) {
		if v, src, ok := firstObject(candidate); ok {
			return v, src, nil
		}
	}
	return nil, "", errNoJSONObject
}

func fencedBlocks(s string) []string {
	src := []byte(s)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			var b bytes.Buffer
			lines := fcb.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			blocks = append(blocks, b.String())
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return blocks
}

// firstObject decodes from each '{' left to right and returns the first
// value that decodes cleanly as an object.
func firstObject(s string) (any, string, bool) {
	for i := strings.IndexByte(s, '{'); i >= 0; {
		dec := json.NewDecoder(strings.NewReader(s[i:]))
		var v any
		if err := dec.Decode(&v); err == nil {
			if _, isObj := v.(map[string]any); isObj {
				return v, s[i : i+int(dec.InputOffset())], true
			}
		}
		next := strings.IndexByte(s[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, "", false
}

var (
	textKeys        = []string{"question", "question_text", "statement", "text", "prompt"}
	answerKeys      = []string{"correct_answer", "answer", "correct", "correct_option", "correct_key", "is_true"}
	optionKeys      = []string{"options", "choices", "answers"}
	explanationKeys = []string{"explanation", "rationale", "reason"}
	topicKeys       = []string{"topic", "subject"}

	optionPrefix = regexp.MustCompile(`^\s*\(?([A-Za-z])[\).:\-]\s+`)
	answerLetter = regexp.MustCompile(`^(?i:option\s+)?\(?([A-Za-z])\)?[.:]?$`)
)

func mapItem(m map[string]any, t question.Type) (question.Draft, string) {
	d := question.Draft{Type: t}

	txt, ok := firstString(m, textKeys...)
	if !ok {
		return d, "missing question text"
	}
	d.Text = txt

	answer, ok := firstValue(m, answerKeys...)
	if !ok {
		return d, "missing correct answer"
	}

	switch t {
	case question.TypeTrueFalse:
		d.RawAnswer = answerString(answer)
		if b, ok := toBool(answer); ok {
			d.CorrectBool = &b
		}
	default:
		d.Options = parseOptions(m)
		d.RawAnswer = answerString(answer)
		d.CorrectKey = resolveAnswerKey(answer, d.Options)
	}

	d.Explanation, _ = firstString(m, explanationKeys...)
	d.Topic, _ = firstString(m, topicKeys...)
	if s, ok := firstString(m, "difficulty"); ok {
		d.Difficulty, _ = question.ParseDifficulty(s)
	}
	d.Confidence = confidence(m["confidence"])
	return d, ""
}

func parseOptions(m map[string]any) []question.Option {
	v, ok := firstValue(m, optionKeys...)
	if !ok {
		return nil
	}
	var opts []question.Option
	switch vv := v.(type) {
	case map[string]any:
		for k, raw := range vv {
			if s, ok := raw.(string); ok {
				opts = append(opts, question.Option{Key: strings.ToUpper(strings.TrimSpace(k)), Text: strings.TrimSpace(s)})
			}
		}
		sort.Slice(opts, func(i, j int) bool { return opts[i].Key < opts[j].Key })
	case []any:
		for i, raw := range vv {
			key := string(rune('A' + i))
			switch o := raw.(type) {
			case string:
				if sm := optionPrefix.FindStringSubmatch(o); sm != nil && strings.EqualFold(sm[1], key) {
					o = o[len(sm[0]):]
				}
				opts = append(opts, question.Option{Key: key, Text: strings.TrimSpace(o)})
			case map[string]any:
				if k, ok := firstString(o, "key", "label", "letter", "id"); ok {
					key = strings.ToUpper(k)
				}
				s, _ := firstString(o, "text", "value", "option", "content")
				opts = append(opts, question.Option{Key: key, Text: s})
			}
		}
	}
	return opts
}

// resolveAnswerKey maps a letter, zero-based index or option text onto an
// option key. Unresolvable answers return "".
func resolveAnswerKey(answer any, opts []question.Option) string {
	has := func(key string) bool {
		for _, o := range opts {
			if o.Key == key {
				return true
			}
		}
		return false
	}

	switch a := answer.(type) {
	case float64:
		if i := int(a); float64(i) == a && i >= 0 && i < len(opts) {
			return opts[i].Key
		}
	case string:
		s := strings.TrimSpace(a)
		if sm := answerLetter.FindStringSubmatch(s); sm != nil {
			if key := strings.ToUpper(sm[1]); has(key) {
				return key
			}
		}
		if sm := optionPrefix.FindStringSubmatch(s); sm != nil {
			if key := strings.ToUpper(sm[1]); has(key) {
				return key
			}
		}
		norm := question.NormalizeText(s)
		for _, o := range opts {
			if question.NormalizeText(o.Text) == norm {
				return o.Key
			}
		}
	}
	return ""
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.Trim(strings.TrimSpace(b), ".!")) {
		case "true", "t", "yes", "correct":
			return true, true
		case "false", "f", "no", "incorrect":
			return false, true
		}
	case float64:
		switch b {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return false, false
}

func confidence(v any) float64 {
	var c float64
	switch x := v.(type) {
	case float64:
		c = x
	case string:
		x = strings.TrimSpace(x)
		pct := strings.HasSuffix(x, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(x, "%"), 64)
		if err != nil {
			return defaultConfidence
		}
		if pct {
			f /= 100
		}
		c = f
	default:
		return defaultConfidence
	}
	if math.IsNaN(c) {
		return defaultConfidence
	}
	return math.Max(0, math.Min(1, c))
}

func firstValue(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func firstString(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s, true
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
	}
	return "", false
}

func answerString(v any) string {
	switch a := v.(type) {
	case string:
		return strings.TrimSpace(a)
	default:
		return fmt.Sprint(a)
	}
}
