package extractor

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
)

const textFileExtension = ".txt"

var errNotUTF8 = errors.New("content is not valid UTF-8 text")

type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (te *TextExtractor) Extract(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(content) {
		return "", errNotUTF8
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return "", errNotUTF8
	}
	return strings.ReplaceAll(string(content), "\r\n", "\n"), nil
}

func (te *TextExtractor) FileExtension() string {
	return textFileExtension
}
