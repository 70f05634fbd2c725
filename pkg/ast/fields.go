package ast

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sync"
)

type fieldKind int

const (
	fieldOther fieldKind = iota
	fieldNode
	fieldNodeList
)

type fieldInfo struct {
	index int
	key   string
	kind  fieldKind
}

var (
	fieldsOnce sync.Once
	nodeFields []fieldInfo
)

func fields() []fieldInfo {
	fieldsOnce.Do(func() {
		nodePtr := reflect.TypeOf((*Node)(nil))
		nodeList := reflect.TypeOf([]*Node(nil))
		t := nodePtr.Elem()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			key := f.Tag.Get("ast")
			if key == "" {
				continue
			}
			info := fieldInfo{index: i, key: key}
			switch f.Type {
			case nodePtr:
				info.kind = fieldNode
			case nodeList:
				info.kind = fieldNodeList
			}
			nodeFields = append(nodeFields, info)
		}
	})
	return nodeFields
}

func forEachSliceField(n *Node, fn func(*[]*Node)) {
	v := reflect.ValueOf(n).Elem()
	for _, f := range fields() {
		if f.kind == fieldNodeList {
			fn(v.Field(f.index).Addr().Interface().(*[]*Node))
		}
	}
}

// ChildNodes returns the direct child nodes of n in field order. Nil entries
// (array holes) are skipped.
func (n *Node) ChildNodes() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	v := reflect.ValueOf(n).Elem()
	for _, f := range fields() {
		switch f.kind {
		case fieldNode:
			if c := v.Field(f.index).Interface().(*Node); c != nil {
				out = append(out, c)
			}
		case fieldNodeList:
			for _, c := range v.Field(f.index).Interface().([]*Node) {
				if c != nil {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// Walk calls fn for n and every descendant, depth first. Returning false
// from fn skips the children of that node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.ChildNodes() {
		Walk(c, fn)
	}
}

// MarshalJSON writes type, start, end and loc first, then every non-empty
// field under its ESTree/babel key.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, value any) error {
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteByte('"')
		buf.WriteString(key)
		buf.WriteString(`":`)
		buf.Write(b)
		return nil
	}

	v := reflect.ValueOf(n).Elem()
	for _, f := range fields() {
		fv := v.Field(f.index)
		switch f.key {
		case "type", "start", "end", "loc":
		default:
			if fv.IsZero() {
				continue
			}
		}
		if err := write(f.key, fv.Interface()); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
