package mapper

import (
	"reflect"
	"strings"
	"sync"
)

// Field represents a cached struct field.
type Field struct {
	Name      string
	Index     []int
	Tagged    bool
	OmitEmpty bool
	// Doc is the field's doc:"..." tag, written as a doc comment when
	// marshaling.
	Doc string
}

type structInfo struct {
	fields []Field
	byName map[string]int
}

// fieldCache caches the fields of each struct type.
var fieldCache sync.Map // map[reflect.Type]*structInfo

// Fields returns the encodable fields of struct type t in declaration order.
// Fields of embedded structs are promoted unless a shallower field has the
// same name. Unexported fields and fields tagged gunny:"-" are skipped.
func Fields(t reflect.Type) []Field {
	return cachedFields(t).fields
}

// lookup finds the field for a property name: an exact match first, then a
// case-insensitive one.
func lookup(t reflect.Type, name string) (Field, bool) {
	info := cachedFields(t)
	if i, ok := info.byName[name]; ok {
		return info.fields[i], true
	}
	if i, ok := info.byName[strings.ToLower(name)]; ok {
		return info.fields[i], true
	}
	return Field{}, false
}

func cachedFields(t reflect.Type) *structInfo {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*structInfo)
	}

	info := &structInfo{byName: map[string]int{}}
	depthOf := map[string]int{}
	var walk func(t reflect.Type, idx []int)
	walk = func(t reflect.Type, idx []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			tag := sf.Tag.Get("gunny")
			if tag == "-" {
				continue
			}
			index := append(append([]int(nil), idx...), i)
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct && tag == "" {
				walk(sf.Type, index)
				continue
			}
			if !sf.IsExported() {
				continue
			}

			f := Field{Index: index, Doc: sf.Tag.Get("doc")}
			name, opts, _ := strings.Cut(tag, ",")
			if name != "" {
				f.Name = name
				f.Tagged = true
			} else {
				f.Name = sf.Name
			}
			for opts != "" {
				var opt string
				opt, opts, _ = strings.Cut(opts, ",")
				if strings.TrimSpace(opt) == "omitempty" {
					f.OmitEmpty = true
				}
			}

			if d, ok := depthOf[f.Name]; ok {
				if d <= len(idx) {
					continue
				}
				// A shallower field hides the promoted one.
				info.fields[info.byName[f.Name]] = f
				depthOf[f.Name] = len(idx)
				continue
			}
			depthOf[f.Name] = len(idx)
			info.byName[f.Name] = len(info.fields)
			info.fields = append(info.fields, f)
		}
	}
	walk(t, nil)

	for i, f := range info.fields {
		lower := strings.ToLower(f.Name)
		if _, ok := info.byName[lower]; !ok {
			info.byName[lower] = i
		}
	}

	fieldCache.Store(t, info)
	return info
}
