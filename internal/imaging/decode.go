/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package imaging decodes layer image sources off the event loop and
// delivers the results as typed notifications.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptySource is returned for an empty image source.
var ErrEmptySource = errors.New("empty image source")

// Decode loads src, which is either a data: URL or a file path (file:// is
// accepted), and returns the image with its format name.
func Decode(src string) (image.Image, string, error) {
	data, err := Read(src)
	if err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", describe(src), err)
	}
	return img, format, nil
}

// Read returns the raw bytes behind src.
func Read(src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return nil, ErrEmptySource
	case strings.HasPrefix(src, "data:"):
		data, _, err := ParseDataURL(src)
		return data, err
	default:
		path := strings.TrimPrefix(src, "file://")
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", path, err)
		}
		return b, nil
	}
}

// ParseDataURL splits a data: URL into its payload and media type.
func ParseDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("data URL without payload separator")
	}
	isBase64 := false
	mediaType := meta
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		isBase64 = true
		mediaType = m
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some encoders drop the padding
			if b2, err2 := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err2 == nil {
				return b2, mediaType, nil
			}
			return nil, "", fmt.Errorf("data URL base64: %w", err)
		}
		return b, mediaType, nil
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("data URL escape: %w", err)
	}
	return []byte(unescaped), mediaType, nil
}

// EncodeDataURL builds a base64 data: URL.
func EncodeDataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func describe(src string) string {
	if strings.HasPrefix(src, "data:") {
		if i := strings.IndexByte(src, ','); i > 0 {
			return src[:i]
		}
		return "data URL"
	}
	return src
}
