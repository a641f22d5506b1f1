package ai

import "github.com/tidwall/gjson"

// ExtractText walks path (gjson dot syntax, numeric segments index arrays) through a JSON
// document and returns the string found there. Any missing step, non-string leaf, or
// unparseable document yields "".
func ExtractText(body []byte, path string) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	res := gjson.GetBytes(body, path)
	if res.Type != gjson.String {
		return ""
	}
	return res.Str
}
