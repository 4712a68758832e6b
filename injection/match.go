// ABOUTME: Selector matching shared by node, port, and link expansion.
// ABOUTME: Supports shell-style name globs and attr=value regex pairs with prefix-match semantics.
package injection

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/HPENetworking/topology-sub000/szn"
)

// Match reports whether a selector matches an element. A selector containing
// an unescaped '=' is split into an (attribute, value) regex pair matched
// against the element's attribute set; any other selector is a shell-style
// glob matched against the element's display string. Escape '=' as '\=' to
// use it literally in a glob.
func Match(selector, display string, attrs *szn.AttributeSet) (bool, error) {
	attrPattern, valuePattern, isAttr := splitSelector(selector)
	if isAttr {
		return matchByAttr(attrPattern, valuePattern, attrs)
	}
	ok, err := path.Match(attrPattern, display)
	if err != nil {
		return false, fmt.Errorf("invalid glob %q: %w", selector, err)
	}
	return ok, nil
}

// splitSelector splits an attr=value selector at its first unescaped '='.
// When there is none, the unescaped selector is returned as a glob.
func splitSelector(selector string) (string, string, bool) {
	var sb strings.Builder
	for i := 0; i < len(selector); i++ {
		ch := selector[i]
		if ch == '\\' && i+1 < len(selector) && selector[i+1] == '=' {
			sb.WriteByte('=')
			i++
			continue
		}
		if ch == '=' {
			return selector[:i], selector[i+1:], true
		}
		sb.WriteByte(ch)
	}
	return sb.String(), "", false
}

// matchByAttr reports whether any attribute key matches the key pattern and
// its stringified value matches the value pattern. Both patterns are matched
// with prefix semantics: anchored at the start, not required to consume the
// whole string.
func matchByAttr(keyPattern, valuePattern string, attrs *szn.AttributeSet) (bool, error) {
	keyRe, err := compilePrefix(keyPattern)
	if err != nil {
		return false, err
	}
	valueRe, err := compilePrefix(valuePattern)
	if err != nil {
		return false, err
	}

	for _, key := range attrs.Keys() {
		if !keyRe.MatchString(key) {
			continue
		}
		value, _ := attrs.Get(key)
		if valueRe.MatchString(Stringify(value)) {
			return true, nil
		}
	}
	return false, nil
}

// compilePrefix compiles a pattern anchored at the start of the subject.
func compilePrefix(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid selector pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Stringify renders an attribute value the way selector value patterns see
// it: bare strings stay as-is, numbers and booleans use their literal forms.
func Stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
