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

package params

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// ExpandAll walks v, which must be a non-nil pointer, and expands every
// string field, slice element and map value in place. Map keys are left
// untouched and visited in sorted order so the first reported error is
// stable across runs.
//
// Field paths are built from json tag names. Struct fields tagged
// `expand:"-"` are skipped.
func (r *Resolver) ExpandAll(v any, root string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("expand target must be a non-nil pointer, got %T", v)
	}
	return r.walk(rv.Elem(), root)
}

func (r *Resolver) walk(v reflect.Value, path string) error {
	//nolint:exhaustive // only containers and strings carry placeholders
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		if v.Kind() == reflect.Interface {
			return r.walkInterface(v, path)
		}
		return r.walk(v.Elem(), path)

	case reflect.String:
		out, err := r.Expand(path, v.String())
		if err != nil {
			return err
		}
		if v.CanSet() {
			v.SetString(out)
		}
		return nil

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("expand") == "-" {
				continue
			}
			name := fieldName(f)
			if f.Anonymous && name == f.Name {
				name = ""
			}
			if err := r.walk(v.Field(i), joinPath(path, name)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := r.walk(v.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		keys := v.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		for _, k := range keys {
			// map values are not addressable: expand a copy and store it back
			cp := reflect.New(v.Type().Elem()).Elem()
			cp.Set(v.MapIndex(k))
			if err := r.walk(cp, joinPath(path, fmt.Sprint(k.Interface()))); err != nil {
				return err
			}
			v.SetMapIndex(k, cp)
		}
		return nil

	default:
		return nil
	}
}

// walkInterface handles values held in interface slots (e.g. decoded
// map[string]any trees) by expanding a settable copy.
func (r *Resolver) walkInterface(v reflect.Value, path string) error {
	inner := v.Elem()
	cp := reflect.New(inner.Type()).Elem()
	cp.Set(inner)
	if err := r.walk(cp, path); err != nil {
		return err
	}
	if v.CanSet() {
		v.Set(cp)
	}
	return nil
}

func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		tag = f.Tag.Get("yaml")
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func joinPath(prefix, name string) string {
	if name == "" {
		return prefix
	}
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
