// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package render

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"reflect"
	"slices"

	utilyaml "k8s.io/apimachinery/pkg/util/yaml"

	"github.com/NVIDIA/observability-stack/pkg/errors"
	"github.com/NVIDIA/observability-stack/pkg/header"
)

const redacted = "<redacted>"

// FieldChange is a single differing field of an object present on both sides.
type FieldChange struct {
	Path string `json:"path" yaml:"path"`
	Old  any    `json:"old,omitempty" yaml:"old,omitempty"`
	New  any    `json:"new,omitempty" yaml:"new,omitempty"`
}

// ObjectChange lists the differing fields of one object.
type ObjectChange struct {
	Ref    string        `json:"ref" yaml:"ref"`
	Fields []FieldChange `json:"fields" yaml:"fields"`
}

// DiffReport is the structural comparison of two rendered streams.
type DiffReport struct {
	header.Header `json:",inline" yaml:",inline"`

	// Identical is true when both streams are byte-identical.
	Identical bool `json:"identical" yaml:"identical"`

	Added   []string       `json:"added,omitempty" yaml:"added,omitempty"`
	Removed []string       `json:"removed,omitempty" yaml:"removed,omitempty"`
	Changed []ObjectChange `json:"changed,omitempty" yaml:"changed,omitempty"`

	// Reordered is true when both sides hold the same objects in a different order.
	Reordered bool `json:"reordered,omitempty" yaml:"reordered,omitempty"`
}

// Equal reports whether both sides hold the same objects with the same content.
func (d *DiffReport) Equal() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffResults compares two render results.
func DiffResults(oldRes, newRes *Result) (*DiffReport, error) {
	if oldRes == nil || newRes == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "both results are required for diff")
	}
	return Diff(oldRes.Bytes(), newRes.Bytes())
}

// Diff compares two multi-document YAML or JSON streams object by object.
// Objects are matched by apiVersion, kind, namespace and name. Secret data
// values are never included in the report.
func Diff(oldData, newData []byte) (*DiffReport, error) {
	report := &DiffReport{
		Header:    header.Header{Kind: header.KindDiffReport, APIVersion: header.APIVersion},
		Identical: bytes.Equal(oldData, newData),
	}

	oldDocs, oldOrder, err := decodeStream(oldData)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to decode old stream", err)
	}
	newDocs, newOrder, err := decodeStream(newData)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to decode new stream", err)
	}

	for _, ref := range oldOrder {
		if _, ok := newDocs[ref]; !ok {
			report.Removed = append(report.Removed, ref)
		}
	}
	for _, ref := range newOrder {
		oldDoc, ok := oldDocs[ref]
		if !ok {
			report.Added = append(report.Added, ref)
			continue
		}
		var fields []FieldChange
		compareValues("", oldDoc, newDocs[ref], &fields)
		if len(fields) == 0 {
			continue
		}
		if kindOf(oldDoc) == "Secret" {
			for i := range fields {
				fields[i].Old, fields[i].New = redactValue(fields[i].Old), redactValue(fields[i].New)
			}
		}
		report.Changed = append(report.Changed, ObjectChange{Ref: ref, Fields: fields})
	}

	report.Reordered = report.Equal() && !report.Identical && !slices.Equal(oldOrder, newOrder)
	return report, nil
}

func decodeStream(data []byte) (map[string]map[string]any, []string, error) {
	docs := make(map[string]map[string]any)
	var order []string
	dec := utilyaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), 4096)
	for {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, err
		}
		if len(doc) == 0 {
			continue
		}
		ref := docRef(doc)
		if _, dup := docs[ref]; dup {
			return nil, nil, fmt.Errorf("duplicate object %s", ref)
		}
		docs[ref] = doc
		order = append(order, ref)
	}
	return docs, order, nil
}

func docRef(doc map[string]any) string {
	var ns, name string
	if meta, ok := doc["metadata"].(map[string]any); ok {
		ns, _ = meta["namespace"].(string)
		name, _ = meta["name"].(string)
	}
	apiVersion, _ := doc["apiVersion"].(string)
	if ns == "" {
		return fmt.Sprintf("%s/%s/%s", apiVersion, kindOf(doc), name)
	}
	return fmt.Sprintf("%s/%s/%s/%s", apiVersion, kindOf(doc), ns, name)
}

func kindOf(doc map[string]any) string {
	k, _ := doc["kind"].(string)
	return k
}

func compareValues(path string, a, b any, out *[]FieldChange) {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok {
			break
		}
		keys := slices.Sorted(maps.Keys(av))
		for k := range bv {
			if _, ok := av[k]; !ok {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		keys = slices.Compact(keys)
		for _, k := range keys {
			compareValues(joinField(path, k), av[k], bv[k], out)
		}
		return
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			break
		}
		for i := range av {
			compareValues(fmt.Sprintf("%s[%d]", path, i), av[i], bv[i], out)
		}
		return
	}
	if !reflect.DeepEqual(a, b) {
		*out = append(*out, FieldChange{Path: path, Old: a, New: b})
	}
}

func joinField(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func redactValue(v any) any {
	if v == nil {
		return nil
	}
	return redacted
}
