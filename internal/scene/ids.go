/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixProject = "proj"
	PrefixPage    = "page"
	PrefixLayer   = "layer"
)

// NewID returns a fresh typeid string with the given prefix.
func NewID(prefix string) string {
	return typeid.MustGenerate(prefix).String()
}

func NewProjectID() string { return NewID(PrefixProject) }
func NewPageID() string    { return NewID(PrefixPage) }
func NewLayerID() string   { return NewID(PrefixLayer) }

// ValidateID checks that id parses as a typeid carrying expectedPrefix.
func ValidateID(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
