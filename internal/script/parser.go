/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"pagecomposer/internal/scene"
)

type document struct {
	Title string      `yaml:"title"`
	Page  PageSize    `yaml:"page"`
	Steps []yaml.Node `yaml:"steps"`
}

// Parse parses a YAML event script. Every step is validated; all problems are
// returned together, each with the line of the offending step.
//
//	title: Demo
//	page: {width: 900, height: 1600}
//	steps:
//	  - op: image
//	    src: photo.png
//	  - op: drag
//	    from: [250, 300]
//	    to: [400, 300]
//	    mods: [shift]
func Parse(input []byte) (Script, []Error) {
	var doc document
	if err := yaml.Unmarshal(input, &doc); err != nil {
		return Script{}, []Error{{Message: err.Error()}}
	}
	s := Script{Title: doc.Title, Page: doc.Page, Steps: make([]Step, 0, len(doc.Steps))}
	var errs []Error
	if s.Page.Width < 0 || s.Page.Height < 0 {
		errs = append(errs, Error{Message: "page size must not be negative"})
	}
	for i := range doc.Steps {
		n := &doc.Steps[i]
		var st Step
		if err := n.Decode(&st); err != nil {
			errs = append(errs, Error{Line: n.Line, Column: n.Column, Message: err.Error()})
			continue
		}
		st.Line = n.Line
		st.Op = Op(strings.ToLower(strings.TrimSpace(string(st.Op))))
		if err := validate(st); err != nil {
			errs = append(errs, Error{Line: n.Line, Column: n.Column, Message: err.Error()})
			continue
		}
		s.Steps = append(s.Steps, st)
	}
	return s, errs
}

// ParseFile reads and parses path; relative image sources resolve against
// the script's directory.
func ParseFile(path string) (Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	s, errs := Parse(b)
	if len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return Script{}, fmt.Errorf("parse %s: %w", path, errors.Join(joined...))
	}
	s.BaseDir = filepath.Dir(path)
	return s, nil
}

func validate(st Step) error {
	if _, err := modifiers(st.Mods); err != nil {
		return err
	}
	switch st.Op {
	case OpText, OpDown, OpMove, OpUp, OpClick, OpDblClick, OpCommit, OpCancel,
		OpUndo, OpRedo, OpDelete, OpForward, OpBack, OpBold, OpItalic, OpPageAdd, OpWait:
		return nil
	case OpImage, OpBackground:
		if strings.TrimSpace(st.Src) == "" {
			return fmt.Errorf("%s requires src", st.Op)
		}
	case OpDrag:
		if len(st.From) != 2 || len(st.To) != 2 {
			return errors.New("drag requires from: [x, y] and to: [x, y]")
		}
		if st.Steps < 0 {
			return errors.New("drag steps must not be negative")
		}
	case OpType:
		if st.Text == nil {
			return errors.New("type requires text")
		}
	case OpKey:
		if st.Key == "" {
			return errors.New("key requires key")
		}
	case OpSelect, OpPageDelete, OpPageSelect:
		if st.Index == nil {
			return fmt.Errorf("%s requires index", st.Op)
		}
	case OpAlign:
		switch st.Value {
		case string(scene.AlignLeft), string(scene.AlignCenter), string(scene.AlignRight):
		default:
			return fmt.Errorf("align value %q is not left, center or right", st.Value)
		}
	case OpSet:
		return validateSet(st.Prop, st.Value)
	case "":
		return errors.New("step has no op")
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

func validateSet(prop, value string) error {
	switch prop {
	case "color":
		if _, err := scene.ParseHexColor(value); err != nil {
			return err
		}
	case "fontFamily":
		if strings.TrimSpace(value) == "" {
			return errors.New("fontFamily must not be empty")
		}
	case "fontSize", "opacity", "angle":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%s: %w", prop, err)
		}
	case "visible":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("visible: %w", err)
		}
	default:
		return fmt.Errorf("unknown property %q", prop)
	}
	return nil
}
