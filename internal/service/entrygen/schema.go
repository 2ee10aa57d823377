package entrygen

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/heartmarshall/lexicon/internal/domain"
)

// checkShape verifies that body is a JSON object carrying every key of the
// dictionary entry schema with an acceptable type. metadata may be omitted
// since it is always rebuilt from the request languages. The returned error
// names the offending JSON path.
func checkShape(body, raw string) error {
	if !gjson.Valid(body) {
		return domain.NewResponseError(domain.ErrSchemaViolation, raw, "invalid json")
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		return domain.NewResponseError(domain.ErrSchemaViolation, raw, "top level is not an object")
	}

	c := shapeChecker{raw: raw}
	c.optional(root, "", "metadata", isObject)
	c.require(root, "", "headword", isString)
	c.require(root, "", "part_of_speech", isPartOfSpeech)
	meanings := c.require(root, "", "meanings", isArray)
	if c.err != nil {
		return c.err
	}

	items := meanings.Array()
	if len(items) == 0 {
		return domain.NewResponseError(domain.ErrSchemaViolation, raw, "meanings: empty")
	}
	for i, m := range items {
		mp := fmt.Sprintf("meanings.%d", i)
		if !m.IsObject() {
			return domain.NewResponseError(domain.ErrSchemaViolation, raw, "%s: not an object", mp)
		}
		c.require(m, mp, "definition", isString)
		grammar := c.require(m, mp, "grammar", isObject)
		examples := c.require(m, mp, "examples", isArray)
		if c.err != nil {
			return c.err
		}

		gp := mp + ".grammar"
		c.require(grammar, gp, "noun_type", isStringOrNull)
		c.require(grammar, gp, "verb_type", isStringOrNull)
		c.require(grammar, gp, "comparison", isStringOrNull)

		for j, ex := range examples.Array() {
			ep := fmt.Sprintf("%s.examples.%d", mp, j)
			if !ex.IsObject() {
				return domain.NewResponseError(domain.ErrSchemaViolation, raw, "%s: not an object", ep)
			}
			c.require(ex, ep, "sentence", isString)
			c.require(ex, ep, "translation", isStringOrNull)
		}
		if c.err != nil {
			return c.err
		}
	}
	return nil
}

type shapeChecker struct {
	raw string
	err error
}

// require records the first missing or mistyped key and returns its value.
func (c *shapeChecker) require(obj gjson.Result, prefix, key string, ok func(gjson.Result) bool) gjson.Result {
	if c.err != nil {
		return gjson.Result{}
	}
	path := key
	if prefix != "" {
		path = prefix + "." + key
	}

	v := obj.Get(key)
	if !v.Exists() {
		c.err = domain.NewResponseError(domain.ErrSchemaViolation, c.raw, "%s: missing", path)
		return v
	}
	if !ok(v) {
		c.err = domain.NewResponseError(domain.ErrSchemaViolation, c.raw, "%s: unexpected type %s", path, v.Type)
	}
	return v
}

// optional is require for keys that may be absent or null.
func (c *shapeChecker) optional(obj gjson.Result, prefix, key string, ok func(gjson.Result) bool) gjson.Result {
	v := obj.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return v
	}
	return c.require(obj, prefix, key, ok)
}

func isObject(r gjson.Result) bool       { return r.IsObject() }
func isArray(r gjson.Result) bool        { return r.IsArray() }
func isString(r gjson.Result) bool       { return r.Type == gjson.String }
func isStringOrNull(r gjson.Result) bool { return r.Type == gjson.String || r.Type == gjson.Null }

func isPartOfSpeech(r gjson.Result) bool {
	if isStringOrNull(r) {
		return true
	}
	if !r.IsArray() {
		return false
	}
	for _, v := range r.Array() {
		if v.Type != gjson.String {
			return false
		}
	}
	return true
}
